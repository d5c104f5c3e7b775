package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/deusflow/adtrends/internal/logger"
	"github.com/deusflow/adtrends/internal/metrics"
	"github.com/deusflow/adtrends/internal/retry"
)

const (
	// MaxChunk stays under Telegram's 4096 character message limit.
	MaxChunk = 4000

	channel     = "telegram"
	maxAttempts = 3
)

var ErrNotConfigured = errors.New("telegram is not configured")

// Notifier posts reports to a Telegram chat.
type Notifier struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	RetryDelay time.Duration
	log        zerolog.Logger
}

func New(token string, chatID int64) (*Notifier, error) {
	return NewWithEndpoint(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: 30 * time.Second})
}

// NewWithEndpoint is New against a custom Bot API endpoint, in the
// "<base>/bot%s/%s" form used by tgbotapi.
func NewWithEndpoint(token string, chatID int64, endpoint string, client *http.Client) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{
		bot:        bot,
		chatID:     chatID,
		RetryDelay: 2 * time.Second,
		log:        logger.Component("telegram"),
	}, nil
}

// Deliver sends subject and body as one or more messages. Each chunk is
// retried with linear backoff.
func (n *Notifier) Deliver(ctx context.Context, subject, body string) error {
	chunks := Split(subject+"\n\n"+body, MaxChunk)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.DisableWebPagePreview = true

		attempt := 0
		err := retry.WithRetry(ctx, retry.RetryConfig{
			MaxAttempts: maxAttempts,
			Delay:       n.RetryDelay,
			Backoff:     true,
		}, func() error {
			attempt++
			_, err := n.bot.Send(msg)
			if err != nil {
				n.log.Warn().Err(err).Int("try", attempt).Int("chunk", i+1).Msg("error sending to Telegram")
			}
			return err
		})
		if err != nil {
			metrics.Deliveries.WithLabelValues(channel, "error").Inc()
			return fmt.Errorf("can't send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	metrics.Deliveries.WithLabelValues(channel, "ok").Inc()
	n.log.Info().Int("messages", len(chunks)).Msg("report sent to Telegram")
	return nil
}

// Split breaks text into pieces of at most limit runes, preferring
// paragraph boundaries. A paragraph longer than limit is cut hard.
func Split(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		paraLen := utf8.RuneCountInString(para)
		if paraLen > limit {
			flush()
			runes := []rune(para)
			for len(runes) > limit {
				chunks = append(chunks, string(runes[:limit]))
				runes = runes[limit:]
			}
			para = string(runes)
			paraLen = len(runes)
		}

		sep := 0
		if curLen > 0 {
			sep = 2
		}
		if curLen+sep+paraLen > limit {
			flush()
			sep = 0
		}
		if sep > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
		curLen += sep + paraLen
	}
	flush()
	return chunks
}
