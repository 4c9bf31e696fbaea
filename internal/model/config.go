package model

import "time"

// Config holds the full runtime configuration for crawl, sampling,
// training and filtering.
type Config struct {
	Source     SourceConfig     `yaml:"source"`
	Crawl      CrawlConfig      `yaml:"crawl"`
	Prefilter  PrefilterConfig  `yaml:"prefilter"`
	Cache      CacheConfig      `yaml:"cache"`
	Features   FeatureConfig    `yaml:"features"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Sampler    SamplerConfig    `yaml:"sampler"`
	Proposer   ProposerConfig   `yaml:"proposer"`
}

// SourceConfig describes how to reach the listing API.
type SourceConfig struct {
	BaseURL        string        `yaml:"baseUrl"`
	UserAgent      string        `yaml:"userAgent"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodyBytes   int64         `yaml:"maxBodyBytes"`
	RetryCount     int           `yaml:"retryCount"`
	RetryBackoff   time.Duration `yaml:"retryBackoff"`
	RequestsPerSec float64       `yaml:"requestsPerSecond"`
	Burst          int           `yaml:"burst"`
	RespectRobots  bool          `yaml:"respectRobots"`
}

// CrawlConfig bounds the breadth-first traversal.
type CrawlConfig struct {
	Seeds          []string      `yaml:"seeds"`
	MaxDepth       int           `yaml:"maxDepth"`
	MaxItems       int           `yaml:"maxItems"`
	MaxDuration    time.Duration `yaml:"maxDuration"`
	FetchWorkers   int           `yaml:"fetchWorkers"`
	ThreadLimit    int           `yaml:"threadLimit"`
	CommentLimit   int           `yaml:"commentLimit"`
	MinSubscribers int           `yaml:"minSubscribers"`
	SkipAuthors    []string      `yaml:"skipAuthors"`
}

// PrefilterConfig holds the keyword gate applied before deep traversal.
type PrefilterConfig struct {
	PositiveTerms []string `yaml:"positiveTerms"`
	NegativeTerms []string `yaml:"negativeTerms"`
}

// CacheConfig controls the listing-API response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// FeatureConfig controls text normalization and TF-IDF extraction.
type FeatureConfig struct {
	MaxVocabulary int  `yaml:"maxVocabulary"`
	NgramMax      int  `yaml:"ngramMax"`
	DropStopwords bool `yaml:"dropStopwords"`
}

// ClassifierConfig controls logistic-regression training and the
// decision threshold applied at inference time.
type ClassifierConfig struct {
	DecisionThreshold float64 `yaml:"decisionThreshold"`
	Regularization    float64 `yaml:"regularization"`
	LearningRate      float64 `yaml:"learningRate"`
	MaxIterations     int     `yaml:"maxIterations"`
	Tolerance         float64 `yaml:"tolerance"`
	HoldoutFraction   float64 `yaml:"holdoutFraction"`
	Seed              int64   `yaml:"seed"`
}

// SamplerConfig controls active-learning batch selection.
type SamplerConfig struct {
	BatchSize     int   `yaml:"batchSize"`
	Seed          int64 `yaml:"seed"`
	MinTextLength int   `yaml:"minTextLength"`
}

// ProposerConfig wires the optional LLM label proposer.
type ProposerConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"-"`
	BaseURL  string        `yaml:"baseUrl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns sensible defaults for a laptop-community corpus.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:        "https://www.reddit.com",
			UserAgent:      "threadsieve/0.1 (+https://github.com/avolkov/threadsieve)",
			Timeout:        45 * time.Second,
			MaxBodyBytes:   4_000_000,
			RetryCount:     3,
			RetryBackoff:   5 * time.Second,
			RequestsPerSec: 1,
			Burst:          2,
			RespectRobots:  true,
		},
		Crawl: CrawlConfig{
			Seeds:          []string{"GamingLaptops", "laptops"},
			MaxDepth:       2,
			MaxItems:       20000,
			MaxDuration:    30 * time.Minute,
			FetchWorkers:   4,
			ThreadLimit:    100,
			CommentLimit:   20,
			MinSubscribers: 100,
			SkipAuthors:    []string{"AutoModerator"},
		},
		Prefilter: PrefilterConfig{
			PositiveTerms: []string{"laptop", "notebook", "gaming laptop"},
			NegativeTerms: []string{"handheld", "console", "desktop", "buildapc", "ally"},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".threadsieve-cache",
			TTL:     24 * time.Hour,
		},
		Features: FeatureConfig{
			MaxVocabulary: 2000,
			NgramMax:      2,
			DropStopwords: false,
		},
		Classifier: ClassifierConfig{
			DecisionThreshold: 0.5,
			Regularization:    1e-4,
			LearningRate:      0.5,
			MaxIterations:     500,
			Tolerance:         1e-6,
			HoldoutFraction:   0.2,
			Seed:              42,
		},
		Sampler: SamplerConfig{
			BatchSize:     100,
			Seed:          42,
			MinTextLength: 20,
		},
		Proposer: ProposerConfig{
			Provider: "",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
	}
}
