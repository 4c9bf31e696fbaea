package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/threadsieve/internal/cache"
	"github.com/avolkov/threadsieve/internal/corpus"
	"github.com/avolkov/threadsieve/internal/crawl"
	"github.com/avolkov/threadsieve/internal/source"
)

var (
	crawlOut      string
	crawlSeeds    []string
	crawlDepth    int
	crawlItems    int
	crawlDuration time.Duration
	crawlWorkers  int
	crawlNoCache  bool
	crawlNoRobots bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl seed communities breadth-first into a raw JSONL corpus",
	Long: `Crawl starts from the configured seed communities and expands the
frontier breadth-first: every community passing the keyword prefilter is
harvested (threads plus top comments) and community links found in bodies
become next-level candidates. Records stream to the output file as they
are discovered.

Example:
  threadsieve crawl --out data/raw.jsonl --seeds GamingLaptops,laptops
  threadsieve crawl --max-items 5000 --max-duration 10m`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVar(&crawlOut, "out", "data/raw.jsonl", "output corpus path")
	crawlCmd.Flags().StringSliceVar(&crawlSeeds, "seeds", nil, "seed communities (overrides config)")
	crawlCmd.Flags().IntVar(&crawlDepth, "max-depth", -1, "BFS depth budget (overrides config)")
	crawlCmd.Flags().IntVar(&crawlItems, "max-items", -1, "record count budget (overrides config)")
	crawlCmd.Flags().DurationVar(&crawlDuration, "max-duration", 0, "wall-clock budget (overrides config)")
	crawlCmd.Flags().IntVar(&crawlWorkers, "workers", 0, "concurrent container fetches (overrides config)")
	crawlCmd.Flags().BoolVar(&crawlNoCache, "no-cache", false, "disable the listing response cache")
	crawlCmd.Flags().BoolVar(&crawlNoRobots, "no-robots", false, "skip robots.txt checks")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seeds") {
		cfg.Crawl.Seeds = crawlSeeds
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Crawl.MaxDepth = crawlDepth
	}
	if cmd.Flags().Changed("max-items") {
		cfg.Crawl.MaxItems = crawlItems
	}
	if cmd.Flags().Changed("max-duration") {
		cfg.Crawl.MaxDuration = crawlDuration
	}
	if cmd.Flags().Changed("workers") {
		cfg.Crawl.FetchWorkers = crawlWorkers
	}
	if crawlNoCache {
		cfg.Cache.Enabled = false
	}
	if crawlNoRobots {
		cfg.Source.RespectRobots = false
	}

	logger := newLogger()

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayered(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	client := source.NewClient(source.ClientOptions{
		Config:       cfg.Source,
		ThreadLimit:  cfg.Crawl.ThreadLimit,
		CommentLimit: cfg.Crawl.CommentLimit,
		Cache:        store,
		Logger:       logger,
	})

	sink, err := corpus.NewWriter(crawlOut)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	pre := crawl.NewPrefilter(cfg.Prefilter.PositiveTerms, cfg.Prefilter.NegativeTerms)
	crawler := crawl.New(client, sink, pre, cfg.Crawl, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if verbose {
		fmt.Fprintf(os.Stderr, "Seeds: %v\n", cfg.Crawl.Seeds)
		fmt.Fprintf(os.Stderr, "Budget: depth=%d items=%d duration=%v\n",
			cfg.Crawl.MaxDepth, cfg.Crawl.MaxItems, cfg.Crawl.MaxDuration)
		fmt.Fprintln(os.Stderr)
	}

	stats, err := crawler.Run(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("Harvested %d communities (%d pruned, %d failed)\n",
		stats.Containers, stats.Pruned, stats.Failed)
	fmt.Printf("Wrote %d records to %s (%d duplicates dropped)\n",
		stats.Records, crawlOut, stats.Duplicates)
	return nil
}
