package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is
// used when no notification backend is configured and for dry runs.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards messages with a log line.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Name implements Named.
func (*NoOpNotifier) Name() string { return "noop" }

// ListSent returns an empty history.
func (*NoOpNotifier) ListSent(context.Context) (History, error) {
	return NewHistory(), nil
}

// Send logs and discards a message.
func (n *NoOpNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("notification discarded (no backend configured)",
		"title", msg.Title,
		"body", msg.Body,
	)
	return nil
}
