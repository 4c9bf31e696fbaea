// Package pipeline routes corpus records through the current classifier
// snapshot, splitting them into relevant and discarded outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/avolkov/threadsieve/internal/classify"
	"github.com/avolkov/threadsieve/internal/corpus"
	"github.com/avolkov/threadsieve/internal/feature"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/textnorm"
	"github.com/avolkov/threadsieve/internal/worker"
)

// Holder provides the current classifier snapshot. A retrain swaps the
// snapshot atomically; weights of a published snapshot are never touched.
type Holder struct {
	current atomic.Pointer[classify.Model]
}

// NewHolder creates a holder, optionally seeded with a snapshot.
func NewHolder(m *classify.Model) *Holder {
	h := &Holder{}
	if m != nil {
		h.current.Store(m)
	}
	return h
}

// Current returns the active snapshot, or nil when none is loaded.
func (h *Holder) Current() *classify.Model { return h.current.Load() }

// Swap publishes a new snapshot.
func (h *Holder) Swap(m *classify.Model) { h.current.Store(m) }

// Stats summarizes one filter run.
type Stats struct {
	Processed int
	Relevant  int
	Discarded int
	Corrupt   int
}

// Pipeline classifies records independently of each other, so records
// are fanned out to a bounded worker pool and collected by one writer.
type Pipeline struct {
	holder  *Holder
	norm    *textnorm.Normalizer
	workers int
	logger  *slog.Logger
}

// New creates a filter pipeline.
func New(holder *Holder, norm *textnorm.Normalizer, workers int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{holder: holder, norm: norm, workers: workers, logger: logger}
}

// Run classifies every record the reader yields. Relevant records are
// appended to relevantPath; discardedPath may be empty to drop the rest.
func (p *Pipeline) Run(ctx context.Context, reader *corpus.Reader, relevantPath, discardedPath string) (*Stats, error) {
	snapshot := p.holder.Current()
	if snapshot == nil {
		return nil, errors.New("no classifier snapshot loaded")
	}
	extractor := snapshot.Extractor()

	// Cancelled on every return path, so an early exit from the result
	// loop releases blocked workers and the producer goroutine.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Outputs are derived from the corpus, not part of it: a re-run
	// replaces them rather than appending a second copy.
	relevant, err := corpus.NewTruncatingWriter(relevantPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = relevant.Close() }()

	var discarded *corpus.Writer
	if discardedPath != "" {
		discarded, err = corpus.NewTruncatingWriter(discardedPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = discarded.Close() }()
	}

	pool := worker.NewPool(p.workers)
	pool.Start(ctx)

	readErr := make(chan error, 1)
	go func() {
		err := reader.Each(func(rec model.Record) error {
			job := &classifyJob{rec: rec, snapshot: snapshot, extractor: extractor, norm: p.norm}
			if !pool.Submit(ctx, job) {
				return ctx.Err()
			}
			return nil
		})
		pool.Close()
		readErr <- err
	}()

	stats := &Stats{}
	for res := range pool.Results() {
		out := res.(*classifyResult)
		stats.Processed++
		if out.label == model.LabelRelevant {
			if err := relevant.Append(out.rec); err != nil {
				return stats, fmt.Errorf("append relevant: %w", err)
			}
			stats.Relevant++
			continue
		}
		stats.Discarded++
		if discarded != nil {
			if err := discarded.Append(out.rec); err != nil {
				return stats, fmt.Errorf("append discarded: %w", err)
			}
		}
	}

	if err := <-readErr; err != nil {
		return stats, err
	}
	stats.Corrupt = reader.Corrupt()

	p.logger.Info("filter finished",
		"processed", stats.Processed,
		"relevant", stats.Relevant,
		"discarded", stats.Discarded,
		"corrupt", stats.Corrupt)
	return stats, nil
}

type classifyJob struct {
	rec       model.Record
	snapshot  *classify.Model
	extractor *feature.Extractor
	norm      *textnorm.Normalizer
}

func (j *classifyJob) Execute(_ context.Context) worker.Result {
	tokens := j.norm.Normalize(j.rec.RawText)
	vec := j.extractor.Transform(tokens)
	return &classifyResult{rec: j.rec, label: j.snapshot.Predict(vec)}
}

type classifyResult struct {
	rec   model.Record
	label model.Label
}

func (r *classifyResult) Err() error { return nil }
