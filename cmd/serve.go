package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"michelin-scraper/scheduler"

	"github.com/spf13/cobra"
)

var interval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Crawl now and then again on every interval until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", interval)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		s := scheduler.NewScheduler(func(ctx context.Context) error {
			_, err := a.runner.RunOnce(ctx)
			return err
		}, interval, logger.Named("scheduler"))

		s.Start(ctx)
		<-ctx.Done()
		s.Stop()
		return nil
	},
}

func init() {
	serveCmd.Flags().DurationVar(&interval, "interval", 24*time.Hour, "time between crawls")
}
