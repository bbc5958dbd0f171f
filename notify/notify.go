package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"michelin-scraper/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLen stays under Telegram's 4096 character limit
const maxMessageLen = 4000

// Notifier delivers a short text report about a finished run
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop discards every notification
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(context.Context, string) error { return nil }

// TelegramNotifier sends run reports to a single Telegram chat
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier authorizes the bot and returns a notifier for chatID
func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, logger)
}

// NewTelegramNotifierWithEndpoint is NewTelegramNotifier against a custom
// Bot API endpoint, formatted like tgbotapi.APIEndpoint
func NewTelegramNotifierWithEndpoint(token, endpoint string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	logger.Info("authorized telegram bot", zap.String("account", bot.Self.UserName))

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Notify sends text, split into several messages when it is too long
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	for _, part := range splitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
	}
	n.logger.Debug("telegram notification sent", zap.Int64("chat_id", n.chatID))
	return nil
}

// Summary is what a run report is built from
type Summary struct {
	Links        int
	PagesFetched int
	PagesFailed  int
	Dataset      models.Dataset
	Duration     time.Duration
	Output       string
	Err          error
}

// FormatSummary renders a plain-text run report
func FormatSummary(s Summary) string {
	var sb strings.Builder

	if s.Err != nil {
		sb.WriteString("❌ Michelin crawl failed\n")
		sb.WriteString(fmt.Sprintf("Error: %v\n", s.Err))
	} else {
		sb.WriteString("✅ Michelin crawl finished\n")
	}

	sb.WriteString(fmt.Sprintf("Candidate pages: %d\n", s.Links))
	sb.WriteString(fmt.Sprintf("Pages fetched: %d, failed: %d\n", s.PagesFetched, s.PagesFailed))
	sb.WriteString(fmt.Sprintf("Restaurants: %d\n", s.Dataset.Len()))

	if counts := starCounts(s.Dataset); len(counts) > 0 {
		sb.WriteString("By stars:\n")
		for _, c := range counts {
			sb.WriteString(fmt.Sprintf("   %s: %d\n", c.label, c.n))
		}
	}

	if s.Duration > 0 {
		sb.WriteString(fmt.Sprintf("Took: %s\n", s.Duration.Round(time.Second)))
	}
	if s.Output != "" {
		sb.WriteString(fmt.Sprintf("Output: %s\n", s.Output))
	}

	return sb.String()
}

type starCount struct {
	stars int
	label string
	n     int
}

// starCounts groups records by star rating, highest first, unknown last
func starCounts(ds models.Dataset) []starCount {
	byStars := make(map[int]int)
	for _, r := range ds.Records {
		k := 0
		if r.Stars != nil {
			k = *r.Stars
		}
		byStars[k]++
	}

	counts := make([]starCount, 0, len(byStars))
	for k, n := range byStars {
		label := strings.Repeat("★", k)
		if k == 0 {
			label = "unknown"
		}
		counts = append(counts, starCount{stars: k, label: label, n: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].stars == 0 || counts[j].stars == 0 {
			return counts[j].stars == 0 && counts[i].stars != 0
		}
		return counts[i].stars > counts[j].stars
	})
	return counts
}

// splitMessage splits a message into chunks of specified size
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		// If a single line is too long, split it
		for len(line) > maxLen {
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
