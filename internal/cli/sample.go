package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avolkov/threadsieve/internal/corpus"
	"github.com/avolkov/threadsieve/internal/label"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/sample"
)

var (
	sampleCorpus  string
	sampleLedger  string
	sampleOut     string
	sampleSize    int
	sampleSeed    int64
	samplePropose bool
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Draw an active-learning batch for manual labeling",
	Long: `Sample draws a uniform batch of records that are present in the raw
corpus but absent from the label ledger, and writes a labeling sheet.
Fill the label column with relevant/irrelevant (or 1/0) and import the
sheet with 'threadsieve label import'.

With --propose, an LLM pre-fills the proposed_label column; proposals
remain pending until a human confirms them in the label column.`,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVar(&sampleCorpus, "corpus", "data/raw.jsonl", "raw corpus path")
	sampleCmd.Flags().StringVar(&sampleLedger, "ledger", "data/labels.csv", "label ledger path")
	sampleCmd.Flags().StringVar(&sampleOut, "out", "data/batch.csv", "labeling sheet output path")
	sampleCmd.Flags().IntVar(&sampleSize, "batch-size", 0, "batch size (overrides config)")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "sampling seed (overrides config)")
	sampleCmd.Flags().BoolVar(&samplePropose, "propose", false, "pre-fill labels with LLM proposals")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.Sampler.BatchSize = sampleSize
	}
	if cmd.Flags().Changed("seed") {
		cfg.Sampler.Seed = sampleSeed
	}

	logger := newLogger()

	var pool []sample.Candidate
	reader := corpus.NewReader(sampleCorpus, logger)
	err = reader.Each(func(rec model.Record) error {
		if len(rec.RawText) <= cfg.Sampler.MinTextLength {
			return nil
		}
		pool = append(pool, sample.Candidate{RecordID: rec.ID, Text: rec.RawText})
		return nil
	})
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	exclude, err := label.NewLedger(sampleLedger).IDs()
	if err != nil {
		return err
	}

	sampler := sample.NewSampler(cfg.Sampler.Seed)
	batch := sampler.Batch(pool, exclude, cfg.Sampler.BatchSize)
	if len(batch) == 0 {
		return fmt.Errorf("no unlabeled records available in %s", sampleCorpus)
	}

	var proposals []model.Label
	if samplePropose {
		proposer, err := sample.NewOpenAIProposer(cfg.Proposer)
		if err != nil {
			return err
		}
		proposals, err = proposer.Propose(context.Background(), batch)
		if err != nil {
			// Proposals are a convenience; the batch is still usable.
			fmt.Fprintf(os.Stderr, "Warning: label proposals failed: %v\n", err)
			proposals = nil
		}
	}

	if err := sample.WriteBatch(sampleOut, batch, proposals); err != nil {
		return err
	}

	fmt.Printf("Sampled %d of %d candidates into %s\n", len(batch), len(pool), sampleOut)
	fmt.Println("Fill the label column and run: threadsieve label import " + sampleOut)
	return nil
}
