package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_PerHostBudget(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("https://a.test/one") {
		t.Fatal("first request to host should be admitted")
	}
	if l.Allow("https://a.test/two") {
		t.Error("second immediate request to same host should be rejected")
	}
	// A different host has its own budget.
	if !l.Allow("https://b.test/one") {
		t.Error("first request to another host should be admitted")
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	if err := l.Wait(context.Background(), "https://a.test/one"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://a.test/two"); err == nil {
		t.Error("expected error when the budget cannot clear within the deadline")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	l := NewLimiter(1000, 1000)

	start := time.Now()
	if err := l.WaitWithDelay(context.Background(), "https://a.test/", 30*time.Millisecond); err != nil {
		t.Fatalf("WaitWithDelay: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("returned after %v, want at least the 30ms crawl delay", elapsed)
	}
}
