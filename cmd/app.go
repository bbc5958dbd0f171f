package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"michelin-scraper/config"
	"michelin-scraper/db"
	"michelin-scraper/fetcher"
	"michelin-scraper/notify"
	"michelin-scraper/pipeline"
	"michelin-scraper/sheets"
	"michelin-scraper/sink"

	"go.uber.org/zap"
)

// app holds everything a run needs and the resources to release afterwards
type app struct {
	runner  *pipeline.Runner
	closers []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("failed to close resource", zap.Error(err))
		}
	}
}

// newApp builds the fetcher, sinks and notifier described by c
func newApp(ctx context.Context, c *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	f, err := newFetcher(c, logger)
	if err != nil {
		return nil, err
	}
	if closer, ok := f.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	sinks, err := a.newSinks(ctx, c, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	p := pipeline.New(c, f, logger.Named("pipeline"))
	a.runner = pipeline.NewRunner(p, sinks, newNotifier(c, logger), c.Output.SheetName, c.Output.File, logger)
	return a, nil
}

func newFetcher(c *config.Config, logger *zap.Logger) (fetcher.Fetcher, error) {
	switch c.Fetch.Backend {
	case "rod":
		return fetcher.NewRodFetcher(c.Fetch.UserAgent, c.Fetch.Delay, logger.Named("rod"))
	default:
		return fetcher.NewCollyFetcher(c.Fetch.UserAgent, c.Fetch.Delay, logger.Named("colly"))
	}
}

// newSinks always writes the xlsx file, then Google Sheets and Postgres
// when they are configured
func (a *app) newSinks(ctx context.Context, c *config.Config, logger *zap.Logger) (sink.Multi, error) {
	sinks := sink.Multi{sink.NewXLSXWriter(c.Output.File)}

	if c.Output.SpreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(c.Output.SpreadsheetURL)
		if spreadsheetID == "" {
			return nil, fmt.Errorf("could not extract spreadsheet ID from URL: %s", c.Output.SpreadsheetURL)
		}
		w, err := sheets.NewWriter(ctx, spreadsheetID, c.Output.Credentials, logger.Named("sheets"))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets writer: %w", err)
		}
		sinks = append(sinks, w)
	}

	dsn := c.Output.DatabaseURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn != "" {
		database, err := db.NewDB(ctx, dsn, logger.Named("db"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, database)
		sinks = append(sinks, database)
	}

	return sinks, nil
}

// newNotifier returns a Telegram notifier when TELEGRAM_BOT_TOKEN and a
// chat id are set. Bot errors only disable notifications.
func newNotifier(c *config.Config, logger *zap.Logger) notify.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := c.Output.TelegramChatID
	if chatID == 0 {
		chatID, _ = strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	}
	if token == "" || chatID == 0 {
		return notify.Nop{}
	}

	n, err := notify.NewTelegramNotifier(token, chatID, logger.Named("telegram"))
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return notify.Nop{}
	}
	return n
}
