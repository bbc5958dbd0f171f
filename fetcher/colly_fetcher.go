package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector *colly.Collector
	logger    *zap.Logger
}

// NewCollyFetcher creates a fetcher sending userAgent on every request and
// waiting delay after each response before the next request may start
func NewCollyFetcher(userAgent string, delay time.Duration, logger *zap.Logger) (*CollyFetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)

	// One request at a time, delay applies between consecutive fetches
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", err)
	}

	return &CollyFetcher{
		collector: c,
		logger:    logger,
	}, nil
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	// Clones share the HTTP backend, so the rate limit holds across calls
	c := cf.collector.Clone()
	c.Context = ctx
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		cf.logger.Debug("fetch error",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Error(err))
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	c.Wait()

	if body == nil {
		return "", fmt.Errorf("failed to fetch %s: empty response", url)
	}

	cf.logger.Debug("fetched page", zap.String("url", url), zap.Int("bytes", len(body)))
	return string(body), nil
}
