package pipeline

import (
	"context"
	"fmt"
	"time"

	"michelin-scraper/notify"
	"michelin-scraper/sink"

	"go.uber.org/zap"
)

// Runner runs the pipeline, writes the dataset and reports the outcome
type Runner struct {
	pipeline  *Pipeline
	sink      sink.Sink
	notifier  notify.Notifier
	sheetName string
	output    string
	logger    *zap.Logger
}

// NewRunner creates a Runner. output is only used in the run report.
func NewRunner(p *Pipeline, s sink.Sink, n notify.Notifier, sheetName, output string, logger *zap.Logger) *Runner {
	if n == nil {
		n = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		pipeline:  p,
		sink:      s,
		notifier:  n,
		sheetName: sheetName,
		output:    output,
		logger:    logger,
	}
}

// RunOnce crawls once and writes the dataset to the sink. Nothing is
// written when the crawl fails, including when it found no data.
func (r *Runner) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()

	res, err := r.pipeline.Run(ctx)
	if err == nil {
		if werr := r.sink.Write(ctx, r.sheetName, res.Dataset); werr != nil {
			err = fmt.Errorf("failed to write dataset: %w", werr)
		}
	}

	summary := notify.Summary{
		Links:        len(res.Links),
		PagesFetched: res.PagesFetched,
		PagesFailed:  res.PagesFailed,
		Dataset:      res.Dataset,
		Duration:     time.Since(start),
		Output:       r.output,
		Err:          err,
	}
	if err != nil {
		summary.Output = ""
	}
	if nerr := r.notifier.Notify(ctx, notify.FormatSummary(summary)); nerr != nil {
		r.logger.Warn("failed to send run report", zap.Error(nerr))
	}

	return res, err
}
