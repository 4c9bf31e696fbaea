// Package cache stores raw listing-API responses so interrupted crawls
// can resume without re-fetching every page.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from a request URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "threadsieve:v1:" + hex.EncodeToString(sum[:])
}
