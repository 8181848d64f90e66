package notify

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/discogs-alert/internal/config"
)

// New builds the notifier selected by cfg.Backend. client is shared by the
// HTTP based backends and may be nil.
func New(cfg *config.NotificationsConfig, client *http.Client, log *slog.Logger) (Notifier, error) {
	if client == nil {
		client = http.DefaultClient
	}

	switch cfg.Backend {
	case config.BackendPushbullet:
		opts := []PushbulletOption{
			WithPushbulletHTTPClient(client),
			WithPushbulletLogger(log),
		}
		if cfg.Pushbullet.URL != "" {
			opts = append(opts, WithPushbulletURL(cfg.Pushbullet.URL))
		}
		return NewPushbulletNotifier(cfg.Pushbullet.Token, opts...), nil
	case config.BackendTelegram:
		tg, err := NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID,
			WithTelegramHTTPClient(client))
		if err != nil {
			return nil, err
		}
		return tg, nil
	case config.BackendDiscord:
		return NewDiscordNotifier(cfg.Discord.WebhookURL, WithHTTPClient(client)), nil
	case config.BackendNoOp, "":
		return NewNoOpNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", cfg.Backend)
	}
}
