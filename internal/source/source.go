// Package source talks to the remote community listing API. It is the
// only package that performs network I/O during a crawl.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/threadsieve/internal/model"
)

// ContainerKind identifies what a crawl container refers to.
type ContainerKind string

const (
	ContainerCommunity ContainerKind = "community"
	ContainerThread    ContainerKind = "thread"
)

// Container addresses one node of the crawl graph.
type Container struct {
	Kind ContainerKind
	ID   string
}

// Community is the descriptive metadata used by the prefilter gate.
type Community struct {
	Name        string
	Title       string
	Description string
	Subscribers int
}

// Child is one discovered item below a container: a thread below a
// community, or a comment below a thread.
type Child struct {
	ID        string
	ParentID  string
	Kind      model.Kind
	Author    string
	Score     int
	Title     string
	Body      string
	CreatedAt time.Time
}

// Source fetches community metadata and container children. It is
// expected to fail transiently and to be rate limited by the remote end.
type Source interface {
	Community(ctx context.Context, name string) (*Community, error)
	Children(ctx context.Context, c Container) ([]Child, error)
}

// ErrRobotsDisallowed marks a path the remote host forbids; it is
// permanent and must not be retried.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// FetchError wraps a fetch failure after retries were exhausted.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
