package wcc

import (
	"context"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/observability"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU whose entries expire
// after a TTL. Only successful bodies are cached.
type CachedFetcher struct {
	inner   domain.Fetcher
	cache   *expirable.LRU[string, string]
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.Fetcher, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   expirable.NewLRU[string, string](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if body, ok := c.cache.Get(url); ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	c.cache.Add(url, body)
	return body, nil
}

