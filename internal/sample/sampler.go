// Package sample selects unlabeled records for manual labeling and
// optionally pre-fills proposed labels from an LLM.
package sample

import "math/rand"

// Candidate is one record offered for labeling.
type Candidate struct {
	RecordID string
	Text     string
}

// Sampler draws uniform batches without replacement. Ids already in the
// exclusion set or in a previously emitted batch are never proposed
// again, so no item is offered twice concurrently.
type Sampler struct {
	rng     *rand.Rand
	emitted map[string]struct{}
}

// NewSampler creates a sampler with a fixed seed for reproducible draws.
func NewSampler(seed int64) *Sampler {
	return &Sampler{
		rng:     rand.New(rand.NewSource(seed)),
		emitted: make(map[string]struct{}),
	}
}

// Batch returns min(size, available) distinct candidates from pool,
// excluding ledger ids and everything this sampler already emitted.
func (s *Sampler) Batch(pool []Candidate, exclude map[string]struct{}, size int) []Candidate {
	available := make([]Candidate, 0, len(pool))
	seen := make(map[string]struct{}, len(pool))
	for _, c := range pool {
		if c.RecordID == "" {
			continue
		}
		if _, ok := seen[c.RecordID]; ok {
			continue
		}
		seen[c.RecordID] = struct{}{}
		if _, ok := exclude[c.RecordID]; ok {
			continue
		}
		if _, ok := s.emitted[c.RecordID]; ok {
			continue
		}
		available = append(available, c)
	}

	s.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})

	if size > len(available) {
		size = len(available)
	}
	if size < 0 {
		size = 0
	}
	batch := available[:size]
	for _, c := range batch {
		s.emitted[c.RecordID] = struct{}{}
	}
	return batch
}
