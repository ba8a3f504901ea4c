package domain

import "context"

// Fetcher retrieves the body of a URL as text. Implementations own timeouts,
// retries and circuit breaking; failures wrap ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
