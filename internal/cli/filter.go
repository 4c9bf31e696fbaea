package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/avolkov/threadsieve/internal/classify"
	"github.com/avolkov/threadsieve/internal/corpus"
	"github.com/avolkov/threadsieve/internal/pipeline"
	"github.com/avolkov/threadsieve/internal/textnorm"
)

var (
	filterCorpus    string
	filterModel     string
	filterRelevant  string
	filterDiscarded string
	filterWorkers   int
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Split the raw corpus into relevant and discarded records",
	Long: `Filter classifies every record of the raw corpus with a trained model
snapshot and writes the relevant subset in the same JSONL shape as the
raw corpus. Discarded records are dropped unless --discarded names an
output file.`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringVar(&filterCorpus, "corpus", "data/raw.jsonl", "raw corpus path")
	filterCmd.Flags().StringVar(&filterModel, "model", "data/model.json", "model snapshot path")
	filterCmd.Flags().StringVar(&filterRelevant, "relevant", "data/relevant.jsonl", "relevant output path")
	filterCmd.Flags().StringVar(&filterDiscarded, "discarded", "", "discarded output path (optional)")
	filterCmd.Flags().IntVar(&filterWorkers, "workers", 4, "concurrent classification workers")
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	snapshot, err := classify.Load(filterModel)
	if err != nil {
		return err
	}

	logger := newLogger()
	norm := textnorm.New(cfg.Features.DropStopwords)
	pipe := pipeline.New(pipeline.NewHolder(snapshot), norm, filterWorkers, logger)
	reader := corpus.NewReader(filterCorpus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := pipe.Run(ctx, reader, filterRelevant, filterDiscarded)
	if err != nil {
		return fmt.Errorf("filter failed: %w", err)
	}

	fmt.Printf("Kept %d, discarded %d (of %d processed)\n",
		stats.Relevant, stats.Discarded, stats.Processed)
	if stats.Corrupt > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d corrupt records\n", stats.Corrupt)
	}
	fmt.Printf("Relevant records written to %s\n", filterRelevant)
	return nil
}
