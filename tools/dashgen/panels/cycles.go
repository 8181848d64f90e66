package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CycleOutcomes shows cycles per hour by outcome.
func CycleOutcomes() *timeseries.PanelBuilder {
	return series("Cycles by Outcome", "Cycles per hour (success, failed, aborted)", "short", ThirdWidth).
		WithTarget(PromQuery(
			`sum(increase(`+sel("discogs_alert_cycles_total")+`[1h])) by (outcome)`,
			"{{outcome}}", "A",
		))
}

// CycleDuration shows p50 and p95 cycle duration.
func CycleDuration() *timeseries.PanelBuilder {
	return series("Cycle Duration", "How long a pass over the wantlist takes", "s", ThirdWidth).
		WithTarget(PromQuery(quantile(0.5, "discogs_alert_cycle_duration_seconds"), "p50", "A")).
		WithTarget(PromQuery(quantile(0.95, "discogs_alert_cycle_duration_seconds"), "p95", "B"))
}

// ReleasesSkipped shows releases skipped because their listings could not
// be fetched.
func ReleasesSkipped() *timeseries.PanelBuilder {
	return series("Releases Skipped", "Releases skipped per hour after a fetch error", "short", ThirdWidth).
		WithTarget(PromQuery(`sum(increase(`+sel("discogs_alert_releases_skipped_total")+`[1h]))`, "skipped", "A"))
}

// ListingsEvaluated shows the listing evaluation rate.
func ListingsEvaluated() *timeseries.PanelBuilder {
	return series("Listings Evaluated", "Marketplace listings checked against the filters", "short", TSWidth).
		WithTarget(PromQuery(`discogs_alert:listings_evaluated:rate5m * 60`, "listings/min", "A"))
}

// Rejections shows rejected listings by reason.
func Rejections() *timeseries.PanelBuilder {
	return series("Rejections by Reason", "Listings rejected per minute, by filter", "short", TSWidth).
		WithTarget(PromQuery(`discogs_alert:listings_rejected:rate5m * 60`, "{{reason}}", "A"))
}
