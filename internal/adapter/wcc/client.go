package wcc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/snotel-etl/internal/domain"
	"github.com/couchcryptid/snotel-etl/internal/observability"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
)

const userAgent = "snotel-etl/1.0 (+https://github.com/couchcryptid/snotel-etl)"

// Client implements domain.Fetcher against the NRCS Water and Climate Center.
// Requests are retried on transport errors, 429 and 5xx, and guarded by a
// circuit breaker so a down upstream fails fast.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[string]
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRetryWait sets the wait bounds between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryWaitTime(minWait).SetRetryMaxWaitTime(maxWait)
	}
}

// WithBreakerSettings replaces the default circuit breaker.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker[string](st)
	}
}

// NewClient creates a WCC client. retries is the number of extra attempts
// after the first request.
func NewClient(timeout time.Duration, retries int, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{logger: logger}).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(retryable)

	c := &Client{
		http: httpClient,
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "wcc",
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
		metrics: metrics,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a GET and returns the response body. Any failure, including a
// non-2xx final status, wraps domain.ErrFetch.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	target := targetFor(url)
	start := time.Now()

	body, err := c.breaker.Execute(func() (string, error) {
		return c.get(ctx, url)
	})

	c.metrics.FetchDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(target, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %s upstream unavailable: %w", domain.ErrFetch, target, err)
		}
		c.logger.WarnContext(ctx, "fetch failed", "target", target, "url", url, "error", err)
		return "", err
	}

	c.metrics.FetchRequests.WithLabelValues(target, "success").Inc()
	c.logger.DebugContext(ctx, "fetch succeeded", "target", target, "url", url, "bytes", len(body))
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", domain.ErrFetch, url, err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("%w: GET %s: status %d", domain.ErrFetch, url, res.StatusCode())
	}
	return string(res.Body()), nil
}

func retryable(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if res == nil {
		return false
	}
	code := res.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// targetFor labels a URL for metrics and logs.
func targetFor(url string) string {
	if strings.Contains(url, "/reportGenerator/") {
		return "report"
	}
	return "directory"
}

// restyLogger routes resty's internal messages through slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
