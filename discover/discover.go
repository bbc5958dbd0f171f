// Package discover collects Michelin list sub-pages linked from seed pages.
package discover

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"michelin-scraper/fetcher"
	"michelin-scraper/filter"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
)

// Options configures a Discoverer
type Options struct {
	BaseURL string
	// Markers must all appear in an href for it to be a candidate
	Markers []string
	Timeout time.Duration
}

// Discoverer crawls seed pages for candidate links
type Discoverer struct {
	fetcher fetcher.Fetcher
	filter  *filter.Filter
	opts    Options
	logger  *zap.Logger
}

// New creates a Discoverer. The allow-list filter is applied after all
// seeds have been read.
func New(f fetcher.Fetcher, flt *filter.Filter, opts Options, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		fetcher: f,
		filter:  flt,
		opts:    opts,
		logger:  logger,
	}
}

// Discover fetches every seed in order and returns the deduplicated, sorted
// hrefs that carry all markers and pass the geography filter. A seed that
// cannot be fetched or parsed is logged and skipped.
func (d *Discoverer) Discover(ctx context.Context, seeds []string) []string {
	candidates := make(map[string]struct{})

	for _, seed := range seeds {
		if ctx.Err() != nil {
			break
		}

		seedURL, err := ResolveURL(d.opts.BaseURL, seed)
		if err != nil {
			d.logger.Warn("skipping seed", zap.String("seed", seed), zap.Error(err))
			continue
		}

		html, err := d.fetcher.Fetch(ctx, seedURL, d.opts.Timeout)
		if err != nil {
			d.logger.Warn("skipping seed", zap.String("url", seedURL), zap.Error(err))
			continue
		}

		hrefs, err := Anchors(html)
		if err != nil {
			d.logger.Warn("skipping seed", zap.String("url", seedURL), zap.Error(err))
			continue
		}

		found := 0
		for _, href := range hrefs {
			if d.isCandidate(href) {
				candidates[href] = struct{}{}
				found++
			}
		}
		d.logger.Info("seed scanned", zap.String("url", seedURL), zap.Int("candidates", found))
	}

	links := make([]string, 0, len(candidates))
	for href := range candidates {
		links = append(links, href)
	}
	sort.Strings(links)

	filtered := d.filter.ApplyFilters(links)
	d.logger.Info("discovery finished",
		zap.Int("candidates", len(links)),
		zap.Int("kept", len(filtered)))
	return filtered
}

func (d *Discoverer) isCandidate(href string) bool {
	for _, m := range d.opts.Markers {
		if !strings.Contains(href, m) {
			return false
		}
	}
	return true
}

// Anchors returns the href of every anchor that has one, in document order
func Anchors(html string) ([]string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, "//a[@href]")
	if err != nil {
		return nil, fmt.Errorf("failed to query anchors: %w", err)
	}

	hrefs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		hrefs = append(hrefs, htmlquery.SelectAttr(n, "href"))
	}
	return hrefs, nil
}

// ResolveURL joins a site-relative href onto base. Absolute hrefs are
// returned unchanged.
func ResolveURL(base, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	if ref.IsAbs() || base == "" {
		return ref.String(), nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	return b.ResolveReference(ref).String(), nil
}
