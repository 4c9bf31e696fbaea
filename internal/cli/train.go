package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avolkov/threadsieve/internal/classify"
	"github.com/avolkov/threadsieve/internal/label"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/textnorm"
)

var (
	trainLedger    string
	trainOut       string
	trainThreshold float64
	trainSeed      int64
	trainMaxVocab  int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the relevance classifier from the label ledger",
	Long: `Train fits a logistic-regression relevance model on the human-confirmed
rows of the label ledger and writes an immutable model snapshot. The
held-out accuracy is reported for diagnostics; a low value does not stop
the snapshot from being written.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainLedger, "ledger", "data/labels.csv", "label ledger path")
	trainCmd.Flags().StringVar(&trainOut, "out", "data/model.json", "model snapshot output path")
	trainCmd.Flags().Float64Var(&trainThreshold, "threshold", -1, "decision threshold (overrides config)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "training seed (overrides config)")
	trainCmd.Flags().IntVar(&trainMaxVocab, "max-vocab", 0, "vocabulary size cap (overrides config)")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Classifier.DecisionThreshold = trainThreshold
	}
	if cmd.Flags().Changed("seed") {
		cfg.Classifier.Seed = trainSeed
	}
	if cmd.Flags().Changed("max-vocab") {
		cfg.Features.MaxVocabulary = trainMaxVocab
	}

	rows, err := label.NewLedger(trainLedger).HumanExamples()
	if err != nil {
		return err
	}

	norm := textnorm.New(cfg.Features.DropStopwords)
	examples := make([]classify.Example, 0, len(rows))
	balance := map[model.Label]int{}
	for _, row := range rows {
		examples = append(examples, classify.Example{
			Tokens: norm.Normalize(row.Text),
			Label:  row.Label,
		})
		balance[row.Label]++
	}

	fmt.Printf("Training on %d labeled examples (relevant=%d irrelevant=%d)\n",
		len(examples), balance[model.LabelRelevant], balance[model.LabelIrrelevant])

	snapshot, err := classify.Train(examples, cfg.Features, cfg.Classifier)
	if err != nil {
		return fmt.Errorf("train failed: %w", err)
	}
	if err := snapshot.Save(trainOut); err != nil {
		return err
	}

	fmt.Printf("Vocabulary: %d terms\n", len(snapshot.Vocabulary))
	fmt.Printf("Held-out accuracy: %.3f (%d examples)\n",
		snapshot.HoldoutAccuracy, snapshot.HoldoutExamples)
	fmt.Printf("Wrote model snapshot to %s\n", trainOut)
	return nil
}
