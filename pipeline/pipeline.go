// Package pipeline runs a full crawl: discovery, extraction and aggregation.
package pipeline

import (
	"context"
	"fmt"

	"michelin-scraper/aggregate"
	"michelin-scraper/config"
	"michelin-scraper/discover"
	"michelin-scraper/fetcher"
	"michelin-scraper/filter"
	"michelin-scraper/models"
	"michelin-scraper/parser"

	"go.uber.org/zap"
)

// Result describes one crawl
type Result struct {
	Links        []string
	PagesFetched int
	PagesFailed  int
	Dataset      models.Dataset
}

// Pipeline wires the crawl components around a single fetcher
type Pipeline struct {
	cfg        *config.Config
	fetcher    fetcher.Fetcher
	discoverer *discover.Discoverer
	parser     *parser.Parser
	logger     *zap.Logger
}

// New builds a Pipeline from cfg. The fetcher is shared by both crawl phases.
func New(cfg *config.Config, f fetcher.Fetcher, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	flt := filter.NewFilter(cfg.Crawl.Countries, cfg.Crawl.Cities)
	d := discover.New(f, flt, discover.Options{
		BaseURL: cfg.Crawl.BaseURL,
		Markers: cfg.Crawl.LinkMarkers,
		Timeout: cfg.Fetch.SeedTimeout,
	}, logger.Named("discover"))

	return &Pipeline{
		cfg:        cfg,
		fetcher:    f,
		discoverer: d,
		parser:     parser.NewParser(cfg.Crawl.TableClass, logger.Named("parser")),
		logger:     logger,
	}
}

// Run discovers candidate pages, extracts every page and aggregates the
// records. Pages that fail to fetch or parse are skipped. The returned
// Result is never nil; the error is aggregate.ErrNoData when nothing was
// extracted, or the context error when ctx ends first.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	res.Links = p.discoverer.Discover(ctx, p.cfg.Crawl.Seeds)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	p.logger.Info("candidate pages discovered", zap.Int("links", len(res.Links)))

	parts := make([][]models.Record, 0, len(res.Links))
	for i, link := range res.Links {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		records, err := p.extractPage(ctx, link)
		if err != nil {
			res.PagesFailed++
			p.logger.Warn("skipping page", zap.String("link", link), zap.Error(err))
			continue
		}
		res.PagesFetched++
		parts = append(parts, records)

		p.logger.Debug("page extracted",
			zap.Int("page", i+1),
			zap.Int("of", len(res.Links)),
			zap.String("link", link),
			zap.Int("records", len(records)))
	}

	ds, err := aggregate.Aggregate(parts)
	res.Dataset = ds
	if err != nil {
		return res, err
	}

	p.logger.Info("crawl finished",
		zap.Int("pages_fetched", res.PagesFetched),
		zap.Int("pages_failed", res.PagesFailed),
		zap.Int("records", ds.Len()))
	return res, nil
}

func (p *Pipeline) extractPage(ctx context.Context, link string) ([]models.Record, error) {
	pageURL, err := discover.ResolveURL(p.cfg.Crawl.BaseURL, link)
	if err != nil {
		return nil, err
	}

	html, err := p.fetcher.Fetch(ctx, pageURL, p.cfg.Fetch.PageTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	return p.parser.Extract(pageURL, html)
}
