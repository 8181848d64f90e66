package rules

// RecordingRules returns the pre-computed rates used by the dashboard and
// the alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("discogs-alert-recording-rules", RuleGroup{
		Name: "discogs-alert-recording",
		Rules: []Rule{
			{
				Record: "discogs_alert:http_requests:rate5m",
				Expr:   `sum(rate(discogs_alert_http_requests_total[5m]))`,
			},
			{
				Record: "discogs_alert:http_errors:rate5m",
				Expr:   `sum(rate(discogs_alert_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "discogs_alert:listings_evaluated:rate5m",
				Expr:   `sum(rate(discogs_alert_listings_evaluated_total[5m]))`,
			},
			{
				Record: "discogs_alert:listings_rejected:rate5m",
				Expr:   `sum by (reason) (rate(discogs_alert_listings_rejected_total[5m]))`,
			},
			{
				Record: "discogs_alert:discogs_requests:rate5m",
				Expr:   `sum by (kind, status) (rate(discogs_alert_discogs_requests_total[5m]))`,
			},
		},
	})
}
