package engine

import (
	"context"
	"log/slog"

	"github.com/donaldgifford/discogs-alert/internal/metrics"
	domain "github.com/donaldgifford/discogs-alert/pkg/types"
)

// match is an accepted listing with its price in the target currency.
type match struct {
	listing *domain.Listing
	price   domain.ListingPrice
}

// evaluate runs every listing of a release through the filter and
// returns the ones that pass. A listing whose price cannot be converted
// is skipped, unless the rate service is unreachable, which stops the
// release with the error.
func (eng *Engine) evaluate(
	ctx context.Context,
	log *slog.Logger,
	r *domain.Release,
	listings []domain.Listing,
) ([]match, error) {
	var matches []match

	for i := range listings {
		l := &listings[i]
		metrics.ListingsEvaluatedTotal.Inc()

		verdict, err := eng.filter.Check(ctx, l, r)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			metrics.ListingsRejectedTotal.WithLabelValues(verdict.Reason.String()).Inc()
			log.Warn("skipping listing",
				"release_id", r.ID,
				"listing", l.URL(),
				"error", err,
			)
			continue
		}

		if !verdict.Accepted() {
			metrics.ListingsRejectedTotal.WithLabelValues(verdict.Reason.String()).Inc()
			log.Debug("listing rejected",
				"release", r.DisplayTitle,
				"listing", l.URL(),
				"reason", verdict.Reason.String(),
			)
			continue
		}

		matches = append(matches, match{listing: l, price: verdict.Price})
	}

	return matches, nil
}
