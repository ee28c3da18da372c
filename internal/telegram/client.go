// Package telegram relays countrystats output to a Telegram chat: the error
// slot's messages as alerts and finished analyses as a short report.
//
// Delivery is best effort with a linear retry backoff. A failure to notify is
// logged and never changes the outcome of an analysis.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/logger"
	"github.com/rewired-gh/countrystats/internal/models"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	sleep          func(time.Duration)
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot sender, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		sleep:          time.Sleep,
	}, nil
}

// SendError sends a user-facing error message as an alert.
func (c *Client) SendError(message string) error {
	return c.send(formatError(message))
}

// SendAnalysis sends the headline of an analysis followed by its text report.
func (c *Client) SendAnalysis(state models.Reader, report string) error {
	return c.send(formatAnalysis(state, report))
}

// ErrorObserver adapts SendError to an error slot subscriber.
func (c *Client) ErrorObserver() func(string) {
	return func(message string) {
		if err := c.SendError(message); err != nil {
			logger.Warn("Failed to relay error to Telegram: %v", err)
		}
	}
}

func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Debug("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)
		c.sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

func formatError(message string) string {
	return "⚠️ *countrystats error*\n\n" + escapeMarkdownV2(message)
}

func formatAnalysis(state models.Reader, report string) string {
	country := catalog.CountryAt(state.Country())
	indicator := catalog.IndicatorAt(state.Indicator())

	var b strings.Builder
	b.WriteString("📊 *")
	b.WriteString(escapeMarkdownV2(indicator.Name))
	b.WriteString("*\n")
	fmt.Fprintf(&b, "🌍 %s \\(%s\\)\n", escapeMarkdownV2(country.Name), escapeMarkdownV2(country.Code))
	fmt.Fprintf(&b, "📅 %d \\- %d\n", state.StartYear(), state.EndYear())

	if !state.Valid() {
		b.WriteString("❌ Dataset incomplete\n")
		return b.String()
	}

	b.WriteString("\n```\n")
	b.WriteString(escapeCode(report))
	b.WriteString("\n```")
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// escapeCode escapes text placed inside a pre block.
func escapeCode(text string) string {
	var b strings.Builder
	for _, char := range text {
		if char == '`' || char == '\\' {
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
