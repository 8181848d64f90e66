package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NotificationsSent shows notifications delivered and duplicates
// suppressed.
func NotificationsSent() *timeseries.PanelBuilder {
	return series("Notifications", "Sent and suppressed notifications per hour", "short", ThirdWidth).
		WithTarget(PromQuery(
			`sum(increase(`+sel("discogs_alert_notifications_sent_total")+`[1h])) by (backend)`,
			"sent {{backend}}", "A",
		)).
		WithTarget(PromQuery(
			`sum(increase(`+sel("discogs_alert_notification_duplicates_total")+`[1h]))`,
			"duplicates", "B",
		))
}

// NotificationLatency shows p95 delivery latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return series("Notification Latency (p95)", "95th percentile delivery latency", "s", ThirdWidth).
		WithTarget(PromQuery(quantile(0.95, "discogs_alert_notification_duration_seconds"), "p95", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(colorThresholds())
}

// NotificationFailures shows failed deliveries in the last 24 hours.
func NotificationFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Notification Failures (24h)").
		Description("Failed notification deliveries in the last 24 hours").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`sum(increase(`+sel("discogs_alert_notification_failures_total")+`[24h]))`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(colorThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
