package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
	"github.com/donaldgifford/discogs-alert/internal/notify"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// deliver sends one notification per match unless the same title and body
// was already delivered. Successful sends are added to history so a
// listing seen twice in one cycle is only sent once. A connectivity
// failure is returned; other send failures are counted and skipped.
func (eng *Engine) deliver(
	ctx context.Context,
	log *slog.Logger,
	r *domain.Release,
	matches []match,
	history notify.History,
	report *domain.CycleReport,
) error {
	backend := notify.BackendName(eng.notifier)

	for _, m := range matches {
		msg := notify.NewMessage(r, m.listing)

		if history.AlreadySent(msg.Title, msg.Body) {
			report.Duplicates++
			metrics.NotificationDuplicatesTotal.Inc()
			continue
		}

		if err := eng.notifier.Send(ctx, msg); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(backend).Inc()
			if isFatal(err) {
				return fmt.Errorf("sending notification: %w", err)
			}
			report.FailedSends++
			log.Error("sending notification failed",
				"backend", backend,
				"title", msg.Title,
				"body", msg.Body,
				"error", err,
			)
			continue
		}

		history.Add(msg.Title, msg.Body)
		report.Notified++
		metrics.NotificationsSentTotal.WithLabelValues(backend).Inc()

		log.Info("notification sent",
			"backend", backend,
			"title", msg.Title,
			"body", msg.Body,
			"price", m.price.String(),
			"seller", m.listing.SellerName,
			"ships_from", m.listing.SellerShipsFrom,
		)
	}

	return nil
}
