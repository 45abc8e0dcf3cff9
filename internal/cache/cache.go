package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Common cache errors
var (
	ErrCacheMiss = errors.New("cache miss")
)

// Cache defines the interface for all cache implementations
type Cache interface {
	// Get retrieves a value from the cache
	Get(key string, value any) error

	// Set stores a value in the cache with an optional TTL
	Set(key string, value any, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error

	// Close cleans up the cache resources
	Close() error
}

// Entry represents a cached entry with metadata
type Entry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsExpired reports whether the entry has expired as of now.
func (e *Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return now.After(*e.ExpiresAt)
}

// CacheKeyBuilder helps build consistent cache keys
type CacheKeyBuilder struct {
	prefix string
}

func NewCacheKeyBuilder(prefix string) *CacheKeyBuilder {
	return &CacheKeyBuilder{prefix: prefix}
}

func (b *CacheKeyBuilder) PRReviewsKey(owner, repo string, prNumber int) string {
	return b.buildKey("pr_reviews", owner, repo, prNumber)
}

func (b *CacheKeyBuilder) PRKey(owner, repo string, prNumber int) string {
	return b.buildKey("pr", owner, repo, prNumber)
}

func (b *CacheKeyBuilder) SearchPageKey(query string, page int) string {
	return b.buildKey("search", query, page)
}

func (b *CacheKeyBuilder) buildKey(parts ...any) string {
	key := b.prefix
	for _, part := range parts {
		key += ":" + toString(part)
	}
	return key
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// NewDefaultCache returns the cache used for a single CLI run.
func NewDefaultCache() Cache {
	return NewMemoryCache()
}
