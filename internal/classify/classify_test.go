package classify

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/avolkov/threadsieve/internal/feature"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/textnorm"
)

func testFeatCfg() model.FeatureConfig {
	return model.FeatureConfig{MaxVocabulary: 2000, NgramMax: 2}
}

func testClassifierCfg() model.ClassifierConfig {
	return model.ClassifierConfig{
		DecisionThreshold: 0.5,
		Regularization:    1e-4,
		LearningRate:      0.5,
		MaxIterations:     500,
		Tolerance:         1e-6,
		HoldoutFraction:   0.2,
		Seed:              42,
	}
}

func normalized(texts []string, label model.Label) []Example {
	norm := textnorm.New(false)
	out := make([]Example, 0, len(texts))
	for _, t := range texts {
		out = append(out, Example{Tokens: norm.Normalize(t), Label: label})
	}
	return out
}

func laptopExamples() []Example {
	pos := []string{
		"best laptop for college under 800",
		"my laptop battery drains overnight",
		"laptop screen flickers on battery power",
		"recommend a lightweight laptop with good keyboard",
		"laptop hinge cracked after a year",
	}
	neg := []string{
		"new desktop tower build with custom loop",
		"which desktop psu for this gpu",
		"console exclusives coming this fall",
		"desk setup tour with triple monitors",
		"mechanical desk mat recommendations",
	}
	return append(normalized(pos, model.LabelRelevant), normalized(neg, model.LabelIrrelevant)...)
}

func TestTrain_SeparatesClasses(t *testing.T) {
	snapshot, err := Train(laptopExamples(), testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	norm := textnorm.New(false)
	ext := snapshot.Extractor()

	pos := ext.Transform(norm.Normalize("is this laptop battery replaceable"))
	if got := snapshot.Predict(pos); got != model.LabelRelevant {
		t.Errorf("laptop text predicted %s, want relevant (p=%.3f)",
			got, snapshot.PredictProba(pos))
	}

	neg := ext.Transform(norm.Normalize("desktop psu cable management"))
	if got := snapshot.Predict(neg); got != model.LabelIrrelevant {
		t.Errorf("desktop text predicted %s, want irrelevant (p=%.3f)",
			got, snapshot.PredictProba(neg))
	}
}

func TestTrain_UnseenTextNearThreshold(t *testing.T) {
	norm := textnorm.New(false)
	examples := []Example{
		{Tokens: norm.Normalize("great trackpad and display"), Label: model.LabelRelevant},
		{Tokens: norm.Normalize("need a new psu for my desktop"), Label: model.LabelIrrelevant},
	}

	snapshot, err := Train(examples, testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	ext := snapshot.Extractor()

	// No shared terms: the vector is empty and the probability collapses
	// to the bias, which balanced training keeps at one half.
	unseen := ext.Transform(norm.Normalize("screen quality is excellent"))
	if len(unseen) != 0 {
		t.Fatalf("expected empty vector for out-of-vocabulary text, got %v", unseen)
	}
	if p := snapshot.PredictProba(unseen); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("out-of-vocabulary probability = %v, want 0.5", p)
	}

	// One shared positive term tips the decision.
	partial := ext.Transform(norm.Normalize("the display is sharp"))
	if p := snapshot.PredictProba(partial); p <= 0.5 {
		t.Errorf("shared-term probability = %v, want > 0.5", p)
	}
	if got := snapshot.Predict(partial); got != model.LabelRelevant {
		t.Errorf("shared-term text predicted %s, want relevant", got)
	}
}

func TestPredict_ThresholdTieBreak(t *testing.T) {
	m := &Model{
		Vocabulary:        map[string]int{"laptop": 0},
		IDF:               []float64{1},
		NgramMax:          1,
		Weights:           []float64{0},
		Bias:              0,
		DecisionThreshold: 0.5,
	}
	v := feature.Vector{}
	if p := m.PredictProba(v); p != 0.5 {
		t.Fatalf("PredictProba = %v, want exactly 0.5", p)
	}
	if got := m.Predict(v); got != model.LabelRelevant {
		t.Errorf("probability at threshold predicted %s, want relevant", got)
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	if _, err := Train(nil, testFeatCfg(), testClassifierCfg()); err != ErrInsufficientTrainingData {
		t.Errorf("Train(nil) = %v, want ErrInsufficientTrainingData", err)
	}

	oneClass := normalized([]string{"laptop one", "laptop two"}, model.LabelRelevant)
	if _, err := Train(oneClass, testFeatCfg(), testClassifierCfg()); err != ErrInsufficientTrainingData {
		t.Errorf("Train(single class) = %v, want ErrInsufficientTrainingData", err)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	a, err := Train(laptopExamples(), testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train a: %v", err)
	}
	b, err := Train(laptopExamples(), testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train b: %v", err)
	}

	if !reflect.DeepEqual(a.Weights, b.Weights) || a.Bias != b.Bias {
		t.Error("identical inputs and seed produced different weights")
	}
	if !reflect.DeepEqual(a.Vocabulary, b.Vocabulary) {
		t.Error("identical inputs produced different vocabularies")
	}
}

func TestTrain_HoldoutSplit(t *testing.T) {
	snapshot, err := Train(laptopExamples(), testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if snapshot.HoldoutExamples != 2 {
		t.Errorf("HoldoutExamples = %d, want 2 (one per class)", snapshot.HoldoutExamples)
	}
	if snapshot.TrainExamples != 8 {
		t.Errorf("TrainExamples = %d, want 8", snapshot.TrainExamples)
	}
	if snapshot.HoldoutAccuracy < 0 || snapshot.HoldoutAccuracy > 1 {
		t.Errorf("HoldoutAccuracy = %v out of range", snapshot.HoldoutAccuracy)
	}
}

func TestModel_SaveLoadRoundTrip(t *testing.T) {
	snapshot, err := Train(laptopExamples(), testFeatCfg(), testClassifierCfg())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := snapshot.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !reflect.DeepEqual(loaded.Weights, snapshot.Weights) {
		t.Error("weights changed across save/load")
	}
	if !reflect.DeepEqual(loaded.Vocabulary, snapshot.Vocabulary) {
		t.Error("vocabulary changed across save/load")
	}

	norm := textnorm.New(false)
	for _, text := range []string{
		"laptop battery life question",
		"desktop gpu sag bracket",
		"completely unrelated topic",
	} {
		a := snapshot.Predict(snapshot.Extractor().Transform(norm.Normalize(text)))
		b := loaded.Predict(loaded.Extractor().Transform(norm.Normalize(text)))
		if a != b {
			t.Errorf("prediction for %q changed across save/load: %s vs %s", text, a, b)
		}
	}
}

func TestLoad_SizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	bad := `{"vocabulary":{"laptop":0,"screen":1},"idf":[1.0],"weights":[0.5],"bias":0}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for weight/vocabulary size mismatch")
	}
}
