package sample

import (
	"fmt"
	"testing"
)

func candidatePool(n int) []Candidate {
	pool := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, Candidate{
			RecordID: fmt.Sprintf("rec%03d", i),
			Text:     fmt.Sprintf("candidate text number %d about laptops", i),
		})
	}
	return pool
}

func TestSampler_ExcludesLabeled(t *testing.T) {
	pool := candidatePool(100)
	exclude := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		exclude[pool[i].RecordID] = struct{}{}
	}

	batch := NewSampler(42).Batch(pool, exclude, 20)
	if len(batch) != 20 {
		t.Fatalf("batch size = %d, want 20", len(batch))
	}

	seen := make(map[string]struct{})
	for _, c := range batch {
		if _, ok := exclude[c.RecordID]; ok {
			t.Errorf("excluded id %s was sampled", c.RecordID)
		}
		if _, ok := seen[c.RecordID]; ok {
			t.Errorf("id %s sampled twice in one batch", c.RecordID)
		}
		seen[c.RecordID] = struct{}{}
	}
}

func TestSampler_NoRepeatsAcrossBatches(t *testing.T) {
	pool := candidatePool(50)
	s := NewSampler(42)

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		for _, c := range s.Batch(pool, nil, 10) {
			if _, ok := seen[c.RecordID]; ok {
				t.Errorf("id %s emitted in more than one batch", c.RecordID)
			}
			seen[c.RecordID] = struct{}{}
		}
	}
	if len(seen) != 50 {
		t.Errorf("emitted %d distinct ids, want the whole pool of 50", len(seen))
	}

	// Pool exhausted: further batches are empty.
	if extra := s.Batch(pool, nil, 10); len(extra) != 0 {
		t.Errorf("exhausted pool produced %d candidates", len(extra))
	}
}

func TestSampler_ShortPool(t *testing.T) {
	batch := NewSampler(1).Batch(candidatePool(3), nil, 10)
	if len(batch) != 3 {
		t.Errorf("batch size = %d, want the 3 available", len(batch))
	}
}

func TestSampler_DeduplicatesPool(t *testing.T) {
	pool := append(candidatePool(5), candidatePool(5)...)
	batch := NewSampler(7).Batch(pool, nil, 10)
	if len(batch) != 5 {
		t.Errorf("batch size = %d, want 5 distinct", len(batch))
	}
}

func TestSampler_Reproducible(t *testing.T) {
	pool := candidatePool(30)
	a := NewSampler(42).Batch(pool, nil, 10)
	b := NewSampler(42).Batch(pool, nil, 10)

	if len(a) != len(b) {
		t.Fatalf("batch sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].RecordID != b[i].RecordID {
			t.Errorf("position %d differs: %s vs %s", i, a[i].RecordID, b[i].RecordID)
		}
	}
}
