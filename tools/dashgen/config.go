package main

import "errors"

// KnownMetrics is the set of metric names exported by discogs-alert plus
// the recording rule names referenced in dashboards and alerts. Histogram
// families are listed once; their _bucket, _sum and _count series are
// accepted by the validator.
var KnownMetrics = map[string]bool{
	// HTTP.
	"discogs_alert_http_request_duration_seconds": true,
	"discogs_alert_http_requests_total":           true,
	"discogs_alert_http_panics_recovered_total":   true,

	// Probes.
	"discogs_alert_healthz_up": true,
	"discogs_alert_readyz_up":  true,

	// Cycles and scheduling.
	"discogs_alert_cycle_duration_seconds":         true,
	"discogs_alert_cycles_total":                   true,
	"discogs_alert_cycle_last_success_timestamp":   true,
	"discogs_alert_releases_skipped_total":         true,
	"discogs_alert_scheduler_next_cycle_timestamp": true,

	// Listings.
	"discogs_alert_listings_evaluated_total":   true,
	"discogs_alert_listings_rejected_total":    true,
	"discogs_alert_listing_parse_errors_total": true,
	"discogs_alert_discogs_requests_total":     true,
	"discogs_alert_rate_limit_waits_total":     true,
	"discogs_alert_rate_cache_total":           true,

	// Notifications.
	"discogs_alert_notifications_sent_total":      true,
	"discogs_alert_notification_failures_total":   true,
	"discogs_alert_notification_duplicates_total": true,
	"discogs_alert_notification_duration_seconds": true,

	// Recording rules.
	"discogs_alert:http_requests:rate5m":      true,
	"discogs_alert:http_errors:rate5m":        true,
	"discogs_alert:listings_evaluated:rate5m": true,
	"discogs_alert:listings_rejected:rate5m":  true,
	"discogs_alert:discogs_requests:rate5m":   true,

	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig writes everything into ../../deploy (relative to
// tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
