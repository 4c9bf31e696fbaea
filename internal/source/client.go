package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avolkov/threadsieve/internal/cache"
	"github.com/avolkov/threadsieve/internal/model"
	"github.com/avolkov/threadsieve/internal/worker"
)

// ClientOptions configures the HTTP listing client.
type ClientOptions struct {
	Config       model.SourceConfig
	ThreadLimit  int
	CommentLimit int
	Cache        cache.Cache // nil disables response caching
	Logger       *slog.Logger
}

// Client fetches community metadata and container children over a
// reddit-style listing API. Transient failures are retried with backoff;
// a shared per-host limiter keeps all workers within the rate budget.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	maxBytes     int64
	retryCount   int
	retryBackoff time.Duration
	threadLimit  int
	commentLimit int
	limiter      *worker.Limiter
	robots       *RobotsGate
	cache        cache.Cache
	logger       *slog.Logger
}

// NewClient creates a listing client from configuration.
func NewClient(opts ClientOptions) *Client {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var robots *RobotsGate
	if cfg.RespectRobots {
		robots = NewRobotsGate(cfg.UserAgent, cfg.Timeout)
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		maxBytes:     cfg.MaxBodyBytes,
		retryCount:   cfg.RetryCount,
		retryBackoff: cfg.RetryBackoff,
		threadLimit:  opts.ThreadLimit,
		commentLimit: opts.CommentLimit,
		limiter:      worker.NewLimiter(cfg.RequestsPerSec, cfg.Burst),
		robots:       robots,
		cache:        opts.Cache,
		logger:       logger,
	}
}

// Community fetches the descriptive metadata of one community.
func (c *Client) Community(ctx context.Context, name string) (*Community, error) {
	endpoint := fmt.Sprintf("%s/r/%s/about.json", c.baseURL, url.PathEscape(name))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload aboutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode community %s: %w", name, err)
	}

	return &Community{
		Name:        payload.Data.DisplayName,
		Title:       payload.Data.Title,
		Description: payload.Data.PublicDescription,
		Subscribers: payload.Data.Subscribers,
	}, nil
}

// Children fetches the threads of a community or the comments of a thread.
func (c *Client) Children(ctx context.Context, container Container) ([]Child, error) {
	switch container.Kind {
	case ContainerCommunity:
		return c.threads(ctx, container.ID)
	case ContainerThread:
		return c.comments(ctx, container.ID)
	default:
		return nil, fmt.Errorf("unknown container kind %q", container.Kind)
	}
}

func (c *Client) threads(ctx context.Context, community string) ([]Child, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, url.PathEscape(community), c.threadLimit)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var page listing
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode threads of %s: %w", community, err)
	}

	children := make([]Child, 0, len(page.Data.Children))
	for _, item := range page.Data.Children {
		if item.Kind != "t3" || item.Data.ID == "" {
			continue
		}
		children = append(children, Child{
			ID:        item.Data.ID,
			Kind:      model.KindThread,
			Author:    item.Data.Author,
			Score:     item.Data.Score,
			Title:     item.Data.Title,
			Body:      item.Data.SelfText,
			CreatedAt: time.Unix(int64(item.Data.CreatedUTC), 0).UTC(),
		})
	}
	return children, nil
}

func (c *Client) comments(ctx context.Context, threadID string) ([]Child, error) {
	endpoint := fmt.Sprintf("%s/comments/%s.json?limit=%d", c.baseURL, url.PathEscape(threadID), c.commentLimit)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// The comments endpoint returns two listings: the thread itself and
	// its top-level comments.
	var pages []listing
	if err := json.Unmarshal(body, &pages); err != nil {
		return nil, fmt.Errorf("decode comments of %s: %w", threadID, err)
	}
	if len(pages) < 2 {
		return nil, nil
	}

	var children []Child
	for _, item := range pages[len(pages)-1].Data.Children {
		if item.Kind != "t1" || item.Data.ID == "" {
			continue
		}
		if len(children) >= c.commentLimit {
			break
		}
		children = append(children, Child{
			ID:        item.Data.ID,
			ParentID:  threadID,
			Kind:      model.KindComment,
			Author:    item.Data.Author,
			Score:     item.Data.Score,
			Body:      item.Data.Body,
			CreatedAt: time.Unix(int64(item.Data.CreatedUTC), 0).UTC(),
		})
	}
	return children, nil
}

// get fetches one URL through the cache, robots gate, rate limiter and
// bounded retry loop.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit", "url", rawURL)
			return body, nil
		}
	}

	var crawlDelay time.Duration
	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		crawlDelay = delay
	}

	attempts := c.retryCount
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, err
		}

		body, transient, err := c.doRequest(ctx, rawURL)
		if err == nil {
			if c.cache != nil {
				if cerr := c.cache.Set(key, body, 0); cerr != nil {
					c.logger.Warn("cache write failed", "url", rawURL, "error", cerr)
				}
			}
			return body, nil
		}
		if !transient {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("transient fetch failure", "url", rawURL, "attempt", attempt, "error", err)
		if attempt < attempts {
			backoff := time.Duration(attempt) * c.retryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, &FetchError{URL: rawURL, Attempts: attempts, Err: lastErr}
}

// doRequest performs a single HTTP GET. The second return value reports
// whether the failure is transient and worth retrying.
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}

type itemData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string   `json:"kind"`
			Data itemData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type aboutPayload struct {
	Data struct {
		DisplayName       string `json:"display_name"`
		Title             string `json:"title"`
		PublicDescription string `json:"public_description"`
		Subscribers       int    `json:"subscribers"`
	} `json:"data"`
}
