package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RequestRate shows API requests per second.
func RequestRate() *timeseries.PanelBuilder {
	return series("Request Rate", "API requests per second", "reqps", ThirdWidth).
		WithTarget(PromQuery(`discogs_alert:http_requests:rate5m`, "req/s", "A"))
}

// LatencyPercentiles shows p50 and p99 API latency.
func LatencyPercentiles() *timeseries.PanelBuilder {
	return series("Latency", "API request duration percentiles", "s", ThirdWidth).
		WithTarget(PromQuery(quantile(0.5, "discogs_alert_http_request_duration_seconds"), "p50", "A")).
		WithTarget(PromQuery(quantile(0.99, "discogs_alert_http_request_duration_seconds"), "p99", "B"))
}

// ErrorRate shows 5xx responses as a percentage of all requests.
func ErrorRate() *timeseries.PanelBuilder {
	return series("Error Rate %", "5xx responses as a percentage of requests", "percent", ThirdWidth).
		WithTarget(PromQuery(
			`discogs_alert:http_errors:rate5m / discogs_alert:http_requests:rate5m * 100`,
			"error %", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(colorThresholds())
}
