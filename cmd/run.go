package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"michelin-scraper/aggregate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl once and write the dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.runner.RunOnce(ctx)
		if errors.Is(err, aggregate.ErrNoData) {
			fmt.Fprintln(cmd.OutOrStdout(), "No data collected, nothing was written.")
			return nil
		}
		if err != nil {
			return err
		}

		logger.Info("run complete",
			zap.Int("links", len(res.Links)),
			zap.Int("pages_failed", res.PagesFailed),
			zap.Int("records", res.Dataset.Len()))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d restaurants to %s\n", res.Dataset.Len(), cfg.Output.File)
		return nil
	},
}
