package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newRule("pickup-monitor-recording-rules", RuleGroup{
		Name: "pickup-monitor-recording",
		Rules: []Rule{
			{
				Record: "pickup_monitor:http_requests:rate5m",
				Expr:   `sum(rate(pickup_monitor_http_requests_total[5m]))`,
			},
			{
				Record: "pickup_monitor:http_errors:rate5m",
				Expr:   `sum(rate(pickup_monitor_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "pickup_monitor:upstream_requests:rate5m",
				Expr:   `sum(rate(pickup_monitor_upstream_requests_total[5m]))`,
			},
			{
				Record: "pickup_monitor:upstream_rejections:rate5m",
				Expr:   `sum(rate(pickup_monitor_upstream_requests_total{result="rejected"}[5m]))`,
			},
			{
				Record: "pickup_monitor:device_errors:rate5m",
				Expr:   `sum(rate(pickup_monitor_device_checks_total{outcome=~"error|panic|no_stores"}[5m]))`,
			},
			{
				Record: "pickup_monitor:notification_failures:rate5m",
				Expr:   `sum(rate(pickup_monitor_notification_failures_total[5m])) by (channel)`,
			},
		},
	})
}
