package main

import "errors"

// KnownMetrics is the set of metric names exported by pickup-monitor plus
// the recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"pickup_monitor_http_request_duration_seconds": true,
	"pickup_monitor_http_requests_total":           true,

	// Health metrics.
	"pickup_monitor_healthz_up": true,
	"pickup_monitor_readyz_up":  true,

	// Pass metrics.
	"pickup_monitor_passes_total":          true,
	"pickup_monitor_pass_duration_seconds": true,
	"pickup_monitor_passes_skipped_total":  true,
	"pickup_monitor_device_checks_total":   true,
	"pickup_monitor_stores_available":      true,

	// Upstream metrics.
	"pickup_monitor_upstream_requests_total":           true,
	"pickup_monitor_upstream_request_duration_seconds": true,
	"pickup_monitor_upstream_daily_usage":              true,
	"pickup_monitor_upstream_daily_limit_hits_total":   true,

	// Notification metrics.
	"pickup_monitor_notifications_sent_total":      true,
	"pickup_monitor_notification_failures_total":   true,
	"pickup_monitor_notification_duration_seconds": true,

	// Recording rules.
	"pickup_monitor:http_requests:rate5m":         true,
	"pickup_monitor:http_errors:rate5m":           true,
	"pickup_monitor:upstream_requests:rate5m":     true,
	"pickup_monitor:upstream_rejections:rate5m":   true,
	"pickup_monitor:device_errors:rate5m":         true,
	"pickup_monitor:notification_failures:rate5m": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
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
