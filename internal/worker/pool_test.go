package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

type addJob struct {
	n int
}

type addResult struct {
	n   int
	err error
}

func (r *addResult) Err() error { return r.err }

func (j *addJob) Execute(ctx context.Context) Result {
	return &addResult{n: j.n * 2}
}

func TestPool_ProcessesAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start(context.Background())

	const jobs = 50
	go func() {
		for i := 0; i < jobs; i++ {
			pool.Submit(context.Background(), &addJob{n: i})
		}
		pool.Close()
	}()

	sum := 0
	count := 0
	for res := range pool.Results() {
		sum += res.(*addResult).n
		count++
	}
	if count != jobs {
		t.Errorf("got %d results, want %d", count, jobs)
	}
	// 2 * (0 + 1 + ... + 49)
	if want := jobs * (jobs - 1); sum != want {
		t.Errorf("sum = %d, want %d", sum, want)
	}
}

func TestPool_ResultErrors(t *testing.T) {
	pool := NewPool(1)
	pool.Start(context.Background())

	sentinel := errors.New("boom")
	go func() {
		pool.Submit(context.Background(), jobFunc(func(context.Context) Result {
			return &addResult{err: sentinel}
		}))
		pool.Close()
	}()

	for res := range pool.Results() {
		if !errors.Is(res.Err(), sentinel) {
			t.Errorf("Err = %v, want sentinel", res.Err())
		}
	}
}

type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }

func TestPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(1)
	pool.Start(ctx)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("Submit kept accepting work after cancellation")
		default:
		}
		if !pool.Submit(ctx, &addJob{n: 1}) {
			return
		}
	}
}

func TestPool_ZeroWorkersClamped(t *testing.T) {
	pool := NewPool(0)
	pool.Start(context.Background())

	go func() {
		pool.Submit(context.Background(), &addJob{n: 21})
		pool.Close()
	}()

	var got []int
	for res := range pool.Results() {
		got = append(got, res.(*addResult).n)
	}
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("results = %v, want [42]", got)
	}
}
