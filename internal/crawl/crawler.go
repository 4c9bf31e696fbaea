// Package crawl implements the breadth-first, prefiltered traversal of
// the community/thread/comment graph.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/avolkov/threadsieve/internal/corpus"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/source"
	"github.com/avolkov/threadsieve/internal/worker"
)

// linkRe finds r/<name> style community references in bodies; they are
// the discovery edges of the crawl graph.
var linkRe = regexp.MustCompile(`\br/([A-Za-z0-9_]+)`)

// Stats summarizes one crawl run.
type Stats struct {
	Containers int // communities fully harvested
	Pruned     int // communities rejected by the prefilter or size floor
	Failed     int // nodes skipped after exhausting retries
	Duplicates int // records dropped by the visited set
	Records    int // records appended to the sink
}

// Crawler owns the frontier and the visited set for one run; multiple
// independent crawls can coexist in a process.
type Crawler struct {
	src      source.Source
	sink     *corpus.Writer
	pre      *Prefilter
	cfg      model.CrawlConfig
	frontier *Frontier
	skip     map[string]struct{}
	logger   *slog.Logger
}

// New creates a crawler writing to sink.
func New(src source.Source, sink *corpus.Writer, pre *Prefilter, cfg model.CrawlConfig, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(cfg.SkipAuthors))
	for _, a := range cfg.SkipAuthors {
		skip[strings.ToLower(a)] = struct{}{}
	}
	return &Crawler{
		src:      src,
		sink:     sink,
		pre:      pre,
		cfg:      cfg,
		frontier: NewFrontier(),
		skip:     skip,
		logger:   logger,
	}
}

// Run crawls from the configured seeds until the frontier is empty or a
// depth, item or time budget is reached. Budgets take effect between
// container dequeues; records of a dequeued container are always
// appended whole.
func (c *Crawler) Run(ctx context.Context) (*Stats, error) {
	if len(c.cfg.Seeds) == 0 {
		return nil, errors.New("no seed communities configured")
	}

	if c.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.MaxDuration)
		defer cancel()
	}

	stats := &Stats{}
	for _, seed := range c.cfg.Seeds {
		c.consider(ctx, seed, stats)
	}

	for {
		level, depth, ok := c.frontier.Advance()
		if !ok || depth > c.cfg.MaxDepth {
			break
		}
		c.logger.Info("crawling level", "depth", depth, "containers", len(level))

		results := c.expandLevel(ctx, level, depth)

		var discovered []string
		budgetHit := false
		for _, res := range results {
			if res.err != nil {
				stats.Failed++
				c.logger.Warn("container failed", "community", res.name, "error", res.err)
				continue
			}
			stats.Containers++
			for _, rec := range res.records {
				if !c.frontier.MarkVisited("rec/" + rec.ID) {
					stats.Duplicates++
					continue
				}
				if err := c.sink.Append(rec); err != nil {
					return stats, fmt.Errorf("append record: %w", err)
				}
				stats.Records++
			}
			discovered = append(discovered, res.links...)

			if c.cfg.MaxItems > 0 && stats.Records >= c.cfg.MaxItems {
				budgetHit = true
				break
			}
			if ctx.Err() != nil {
				break
			}
		}
		if budgetHit {
			c.logger.Info("item budget reached", "records", stats.Records)
			break
		}
		if stopped, err := c.stopped(ctx); stopped {
			return stats, err
		}
		if depth == c.cfg.MaxDepth {
			continue // nothing deeper will be dequeued
		}

		for _, name := range discovered {
			if stopped, err := c.stopped(ctx); stopped {
				return stats, err
			}
			c.consider(ctx, name, stats)
		}
	}

	c.logger.Info("crawl finished",
		"containers", stats.Containers,
		"pruned", stats.Pruned,
		"failed", stats.Failed,
		"records", stats.Records)
	return stats, nil
}

// stopped distinguishes the crawl's own time budget, which ends the run
// normally, from an external cancellation.
func (c *Crawler) stopped(ctx context.Context) (bool, error) {
	err := ctx.Err()
	if err == nil {
		return false, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Info("time budget reached")
		return true, nil
	}
	return true, err
}

// consider validates a discovered community and enqueues it for the
// next level. Prefilter decisions are final for the run: rejected names
// enter the visited set and are never reconsidered.
func (c *Crawler) consider(ctx context.Context, name string, stats *Stats) {
	key := "r/" + strings.ToLower(name)
	if !c.frontier.MarkVisited(key) {
		return
	}

	com, err := c.src.Community(ctx, name)
	if err != nil {
		stats.Failed++
		c.logger.Warn("community lookup failed", "community", name, "error", err)
		return
	}
	if com.Subscribers < c.cfg.MinSubscribers {
		stats.Pruned++
		c.logger.Debug("community too small", "community", name, "subscribers", com.Subscribers)
		return
	}
	if c.pre.Classify(com.Title+" "+com.Description) == Reject {
		stats.Pruned++
		c.logger.Debug("community rejected by prefilter", "community", name)
		return
	}
	c.frontier.Enqueue(name)
}

type expandResult struct {
	index   int
	name    string
	records []model.Record
	links   []string
	err     error
}

func (r *expandResult) Err() error { return r.err }

type expandJob struct {
	crawler *Crawler
	index   int
	name    string
	depth   int
}

func (j *expandJob) Execute(ctx context.Context) worker.Result {
	records, links, err := j.crawler.expand(ctx, j.name, j.depth)
	return &expandResult{index: j.index, name: j.name, records: records, links: links, err: err}
}

// expandLevel harvests all containers of one level through the fetch
// pool. Results are reordered to the level's dequeue order so the sink
// sees a deterministic sequence regardless of fetch completion order.
func (c *Crawler) expandLevel(ctx context.Context, level []string, depth int) []*expandResult {
	pool := worker.NewPool(c.cfg.FetchWorkers)
	pool.Start(ctx)

	go func() {
		for i, name := range level {
			if !pool.Submit(ctx, &expandJob{crawler: c, index: i, name: name, depth: depth}) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*expandResult, 0, len(level))
	for res := range pool.Results() {
		results = append(results, res.(*expandResult))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results
}

// expand harvests one community: its threads, their comments, and the
// community links referenced in any body.
func (c *Crawler) expand(ctx context.Context, name string, depth int) ([]model.Record, []string, error) {
	threads, err := c.src.Children(ctx, source.Container{Kind: source.ContainerCommunity, ID: name})
	if err != nil {
		return nil, nil, fmt.Errorf("list threads: %w", err)
	}

	var records []model.Record
	var links []string
	seenLinks := make(map[string]struct{})

	collectLinks := func(text string) {
		for _, m := range linkRe.FindAllStringSubmatch(text, -1) {
			l := m[1]
			lk := strings.ToLower(l)
			if _, ok := seenLinks[lk]; ok {
				continue
			}
			seenLinks[lk] = struct{}{}
			links = append(links, l)
		}
	}

	for _, thread := range threads {
		if c.skipAuthor(thread.Author) {
			continue
		}

		text := thread.Title
		if thread.Body != "" {
			text = strings.TrimSpace(thread.Title + "\n\n" + thread.Body)
		}
		records = append(records, model.Record{
			ID:          thread.ID,
			ContainerID: name,
			Kind:        model.KindThread,
			Author:      thread.Author,
			Score:       thread.Score,
			RawText:     text,
			CreatedAt:   thread.CreatedAt,
			Depth:       depth,
		})
		collectLinks(text)

		comments, err := c.src.Children(ctx, source.Container{Kind: source.ContainerThread, ID: thread.ID})
		if err != nil {
			// Node-local failure: keep the thread, skip its comments.
			c.logger.Warn("comment fetch failed", "thread", thread.ID, "error", err)
			continue
		}
		for _, comment := range comments {
			if c.skipAuthor(comment.Author) {
				continue
			}
			records = append(records, model.Record{
				ID:          comment.ID,
				ParentID:    thread.ID,
				ContainerID: name,
				Kind:        model.KindComment,
				Author:      comment.Author,
				Score:       comment.Score,
				RawText:     comment.Body,
				CreatedAt:   comment.CreatedAt,
				Depth:       depth,
			})
			collectLinks(comment.Body)
		}
	}
	return records, links, nil
}

func (c *Crawler) skipAuthor(author string) bool {
	_, ok := c.skip[strings.ToLower(author)]
	return ok
}
