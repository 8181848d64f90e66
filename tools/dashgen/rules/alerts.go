package rules

const job = `job="discogs-alert"`

// AlertRules returns the operational alerts for discogs-alert.
func AlertRules() PrometheusRule {
	return newPrometheusRule("discogs-alert-alerts", RuleGroup{
		Name: "discogs-alert",
		Rules: []Rule{
			{
				Alert:  "DiscogsAlertDown",
				Expr:   `absent(up{` + job + `} == 1)`,
				For:    "5m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "discogs-alert is down",
					"description": "No discogs-alert target has been up for 5 minutes.",
				},
			},
			{
				Alert:  "DiscogsAlertNotReady",
				Expr:   `discogs_alert_readyz_up{` + job + `} == 0`,
				For:    "10m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "discogs-alert cannot load its wantlist",
					"description": "The readiness probe has failed for 10 minutes.",
				},
			},
			{
				Alert:  "DiscogsAlertNoSuccessfulCycle",
				Expr:   `time() - discogs_alert_cycle_last_success_timestamp{` + job + `} > 6 * 3600`,
				For:    "15m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "No successful cycle in 6 hours",
					"description": "Cycles are failing or not running. Check the logs for the last cycle error.",
				},
			},
			{
				Alert:  "DiscogsAlertParseErrors",
				Expr:   `increase(discogs_alert_listing_parse_errors_total{` + job + `}[1h]) > 20`,
				For:    "0m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Marketplace rows failing to parse",
					"description": "More than 20 marketplace rows failed to parse in the last hour. The page markup may have changed.",
				},
			},
			{
				Alert:  "DiscogsAlertNotificationFailures",
				Expr:   `increase(discogs_alert_notification_failures_total{` + job + `}[30m]) > 0`,
				For:    "1m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Notification delivery failures",
					"description": "One or more notifications failed to send in the last 30 minutes.",
				},
			},
			{
				Alert:  "DiscogsAlertHighErrorRate",
				Expr:   `discogs_alert:http_errors:rate5m / discogs_alert:http_requests:rate5m > 0.05`,
				For:    "5m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "High API error rate",
					"description": "More than 5% of API requests returned 5xx over 5 minutes.",
				},
			},
		},
	})
}
