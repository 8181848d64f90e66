package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// DiscogsRequests shows upstream requests by kind and status.
func DiscogsRequests() *timeseries.PanelBuilder {
	return series("Discogs Requests", "Requests to Discogs by kind and status", "reqps", ThirdWidth).
		WithTarget(PromQuery(`discogs_alert:discogs_requests:rate5m`, "{{kind}} {{status}}", "A"))
}

// RateLimitWaits shows how often clients paused for an upstream limit.
func RateLimitWaits() *timeseries.PanelBuilder {
	return series("Rate Limit Waits", "Pauses for upstream rate limits per hour", "short", ThirdWidth).
		WithTarget(PromQuery(
			`sum(increase(`+sel("discogs_alert_rate_limit_waits_total")+`[1h])) by (upstream)`,
			"{{upstream}}", "A",
		))
}

// ParseErrors shows marketplace rows that could not be parsed. A sudden
// rise usually means the page markup changed.
func ParseErrors() *timeseries.PanelBuilder {
	return series("Parse Errors", "Marketplace rows that failed to parse, per hour", "short", ThirdWidth).
		WithTarget(PromQuery(`sum(increase(`+sel("discogs_alert_listing_parse_errors_total")+`[1h]))`, "rows", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 20)).
		ColorScheme(colorThresholds())
}

// RateCacheHitRatio shows the exchange rate cache hit ratio.
func RateCacheHitRatio() *timeseries.PanelBuilder {
	return series("Rate Cache Hit Ratio", "Exchange rate lookups served from cache", "percentunit", TSWidth).
		WithTarget(PromQuery(
			`sum(rate(`+sel("discogs_alert_rate_cache_total", `result="hit"`)+`[1h])) / sum(rate(`+
				sel("discogs_alert_rate_cache_total")+`[1h]))`,
			"hit ratio", "A",
		))
}
