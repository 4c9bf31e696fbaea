package classify

import (
	"errors"
	"math/rand"
	"time"

	"github.com/avolkov/threadsieve/internal/feature"
	"github.com/avolkov/threadsieve/internal/model"
)

// ErrInsufficientTrainingData is returned when the labeled set is empty
// or contains only one class. No model is produced.
var ErrInsufficientTrainingData = errors.New("labeled set is empty or single-class")

// Example is one labeled training input, already normalized to tokens.
type Example struct {
	Tokens []string
	Label  model.Label
}

// Train fits a logistic-regression model on the labeled examples.
//
// The training corpus is split into a train and held-out part per class
// using the configured seed; the vocabulary is fitted on the training
// part only. Optimization is full-batch gradient descent on
// L2-regularized log-loss with class-balanced example weights, which is
// deterministic given the seed and independent of example order.
func Train(examples []Example, featCfg model.FeatureConfig, cfg model.ClassifierConfig) (*Model, error) {
	var relevant, irrelevant []int
	for i, ex := range examples {
		switch ex.Label {
		case model.LabelRelevant:
			relevant = append(relevant, i)
		case model.LabelIrrelevant:
			irrelevant = append(irrelevant, i)
		}
	}
	if len(relevant) == 0 || len(irrelevant) == 0 {
		return nil, ErrInsufficientTrainingData
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainIdx, holdIdx := split(relevant, irrelevant, cfg.HoldoutFraction, rng)

	ext := feature.NewExtractor(featCfg.MaxVocabulary, featCfg.NgramMax)
	docs := make([][]string, len(trainIdx))
	for i, idx := range trainIdx {
		docs[i] = examples[idx].Tokens
	}
	if err := ext.Fit(docs); err != nil {
		return nil, err
	}

	vectors := make([]feature.Vector, len(trainIdx))
	targets := make([]float64, len(trainIdx))
	var positives int
	for i, idx := range trainIdx {
		vectors[i] = ext.Transform(examples[idx].Tokens)
		if examples[idx].Label == model.LabelRelevant {
			targets[i] = 1
			positives++
		}
	}

	weights, bias := descend(vectors, targets, positives, ext.VocabularySize(), cfg)

	snapshot := &Model{
		Vocabulary:        ext.Vocabulary(),
		IDF:               ext.IDF(),
		NgramMax:          featCfg.NgramMax,
		Weights:           weights,
		Bias:              bias,
		DecisionThreshold: cfg.DecisionThreshold,
		TrainedAt:         time.Now().UTC(),
		TrainExamples:     len(trainIdx),
		HoldoutExamples:   len(holdIdx),
	}

	// Quality metric only; callers decide what to do with low accuracy.
	eval := holdIdx
	if len(eval) == 0 {
		eval = trainIdx
	}
	var correct int
	for _, idx := range eval {
		v := ext.Transform(examples[idx].Tokens)
		if snapshot.Predict(v) == examples[idx].Label {
			correct++
		}
	}
	snapshot.HoldoutAccuracy = float64(correct) / float64(len(eval))

	return snapshot, nil
}

// split draws a per-class held-out fraction. With very small classes the
// held-out side may be empty; training always keeps both classes.
func split(relevant, irrelevant []int, fraction float64, rng *rand.Rand) (train, hold []int) {
	for _, class := range [][]int{relevant, irrelevant} {
		idx := make([]int, len(class))
		copy(idx, class)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		n := int(fraction * float64(len(idx)))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		hold = append(hold, idx[:n]...)
		train = append(train, idx[n:]...)
	}
	return train, hold
}

// descend runs full-batch gradient descent and returns weights and bias.
func descend(vectors []feature.Vector, targets []float64, positives, dim int, cfg model.ClassifierConfig) ([]float64, float64) {
	n := len(vectors)
	negatives := n - positives

	// Balanced class weights, as in the original training recipe.
	wPos := float64(n) / (2 * float64(positives))
	wNeg := float64(n) / (2 * float64(negatives))

	weights := make([]float64, dim)
	grad := make([]float64, dim)
	var bias float64

	lr := cfg.LearningRate
	if lr <= 0 {
		lr = 0.5
	}
	iterations := cfg.MaxIterations
	if iterations <= 0 {
		iterations = 500
	}

	for iter := 0; iter < iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64

		for i, v := range vectors {
			z := bias
			for idx, x := range v {
				z += weights[idx] * x
			}
			cw := wNeg
			if targets[i] == 1 {
				cw = wPos
			}
			e := (sigmoid(z) - targets[i]) * cw
			for idx, x := range v {
				grad[idx] += e * x
			}
			gradBias += e
		}

		scale := lr / float64(n)
		var maxDelta float64
		for j := range weights {
			delta := scale*grad[j] + lr*cfg.Regularization*weights[j]
			weights[j] -= delta
			if d := abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		biasDelta := scale * gradBias
		bias -= biasDelta
		if d := abs(biasDelta); d > maxDelta {
			maxDelta = d
		}

		if maxDelta < cfg.Tolerance {
			break
		}
	}
	return weights, bias
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
