package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
)

// TelegramNotifier sends messages to a single chat through a bot. The Bot
// API cannot list sent messages, so ListSent is always empty.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*telegramSettings)

type telegramSettings struct {
	endpoint string
	client   tgbotapi.HTTPClient
}

// WithTelegramEndpoint overrides the Bot API endpoint format (for testing).
// The format takes the token and method, like tgbotapi.APIEndpoint.
func WithTelegramEndpoint(endpoint string) TelegramOption {
	return func(s *telegramSettings) {
		s.endpoint = endpoint
	}
}

// WithTelegramHTTPClient sets a custom HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(s *telegramSettings) {
		s.client = c
	}
}

// NewTelegramNotifier authenticates the bot token and returns a notifier
// for chatID.
func NewTelegramNotifier(token string, chatID int64, opts ...TelegramOption) (*TelegramNotifier, error) {
	s := telegramSettings{
		endpoint: tgbotapi.APIEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&s)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, s.endpoint, s.client)
	if err != nil {
		return nil, transportError("telegram", "authenticating telegram bot", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Name implements Named.
func (*TelegramNotifier) Name() string { return "telegram" }

// ListSent returns an empty history.
func (*TelegramNotifier) ListSent(context.Context) (History, error) {
	return NewHistory(), nil
}

// Send posts "title (body)" as Markdown.
func (t *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	out := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("%s (%s)", msg.Title, msg.Body))
	out.ParseMode = tgbotapi.ModeMarkdown

	if _, err := t.bot.Send(out); err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("telegram returned %d: %s", apiErr.Code, apiErr.Message)
		}
		return transportError("telegram", "sending telegram message", err)
	}
	return nil
}
