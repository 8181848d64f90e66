package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoOpNotifier_Send(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(quietLogger())
	err := n.Send(context.Background(), Message{
		Title: "Now For Sale: Blue Train",
		Body:  "Listing available: https://www.discogs.com/sell/item/1",
	})
	require.NoError(t, err)
}

func TestNoOpNotifier_ListSent(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(quietLogger())
	h, err := n.ListSent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*DiscordNotifier)(nil)
	_ Notifier = (*PushbulletNotifier)(nil)
	_ Notifier = (*TelegramNotifier)(nil)
)
