package fetcher

import (
	"context"
	"time"
)

// Fetcher retrieves a single page. Any failure (transport error, timeout,
// non-2xx status) is reported as an error; callers do not distinguish them.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}
