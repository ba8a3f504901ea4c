package wcc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls map[string]int
	body  string
	err   error
}

func (m *countingFetcher) Fetch(_ context.Context, url string) (string, error) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[url]++
	if m.err != nil {
		return "", m.err
	}
	return m.body, nil
}

// --- CachedFetcher tests ---

func TestCachedFetcher_Hit(t *testing.T) {
	inner := &countingFetcher{body: directoryBody}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedFetcher(inner, 10, time.Hour, metrics)

	b1, err := cached.Fetch(context.Background(), domain.DirectoryURL)
	require.NoError(t, err)
	b2, err := cached.Fetch(context.Background(), domain.DirectoryURL)
	require.NoError(t, err)

	assert.Equal(t, directoryBody, b1)
	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls[domain.DirectoryURL], "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("miss")), 0)
}

func TestCachedFetcher_KeysByURL(t *testing.T) {
	inner := &countingFetcher{body: "x"}
	cached := NewCachedFetcher(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.Fetch(context.Background(), "https://a.test")
	_, _ = cached.Fetch(context.Background(), "https://b.test")

	assert.Equal(t, 1, inner.calls["https://a.test"])
	assert.Equal(t, 1, inner.calls["https://b.test"])
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("boom")}
	cached := NewCachedFetcher(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, err := cached.Fetch(context.Background(), domain.DirectoryURL)
	require.Error(t, err)
	_, err = cached.Fetch(context.Background(), domain.DirectoryURL)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls[domain.DirectoryURL], "errors should not be cached")
}

func TestCachedFetcher_Eviction(t *testing.T) {
	inner := &countingFetcher{body: "x"}
	cached := NewCachedFetcher(inner, 1, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.Fetch(context.Background(), "https://a.test")
	_, _ = cached.Fetch(context.Background(), "https://b.test") // evicts a
	_, _ = cached.Fetch(context.Background(), "https://a.test")

	assert.Equal(t, 2, inner.calls["https://a.test"])
}

func TestCachedFetcher_Expiry(t *testing.T) {
	inner := &countingFetcher{body: "x"}
	cached := NewCachedFetcher(inner, 10, 20*time.Millisecond, observability.NewMetricsForTesting())

	_, _ = cached.Fetch(context.Background(), "https://a.test")
	time.Sleep(60 * time.Millisecond)
	_, _ = cached.Fetch(context.Background(), "https://a.test")

	assert.Equal(t, 2, inner.calls["https://a.test"])
}
