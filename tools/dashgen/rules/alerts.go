package rules

// AlertRules returns a PrometheusRule CR with the operational alerts for
// pickup-monitor.
func AlertRules() PrometheusRule {
	return newRule("pickup-monitor-alerts", RuleGroup{
		Name: "pickup-monitor-alerts",
		Rules: []Rule{
			{
				Alert:  "PickupMonitorDown",
				Expr:   `absent(up{job="pickup-monitor"})`,
				For:    "2m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "pickup-monitor is down",
					"description": "The pickup-monitor job has been absent for more than 2 minutes.",
				},
			},
			{
				Alert:  "PickupMonitorDisabled",
				Expr:   `pickup_monitor_readyz_up == 0`,
				For:    "5m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "pickup-monitor is running but not polling",
					"description": "The task configuration is invalid or the scheduler never started. Check the startup log for the validation error.",
				},
			},
			{
				Alert:  "PickupMonitorRejected",
				Expr:   `pickup_monitor:upstream_rejections:rate5m / pickup_monitor:upstream_requests:rate5m > 0.5`,
				For:    "10m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Most fulfillment calls are being rejected",
					"description": "More than half of fulfillment API calls return status 541 or 503. The schedule is likely too aggressive for the device count.",
				},
			},
			{
				Alert:  "PickupMonitorDeviceErrors",
				Expr:   `pickup_monitor:device_errors:rate5m > 0`,
				For:    "15m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Device checks are failing",
					"description": "Device checks have been ending in error, panic or no_stores for 15 minutes. Check the location and device codes.",
				},
			},
			{
				Alert:  "PickupMonitorSkippingTicks",
				Expr:   `increase(pickup_monitor_passes_skipped_total[15m]) > 3`,
				For:    "0m",
				Labels: map[string]string{"severity": "info"},
				Annotations: map[string]string{
					"summary":     "Scheduler ticks are being skipped",
					"description": "Passes overrun the cron interval. Widen the schedule to at least three seconds per device.",
				},
			},
			{
				Alert:  "PickupMonitorDailyLimitReached",
				Expr:   `increase(pickup_monitor_upstream_daily_limit_hits_total[5m]) > 0`,
				For:    "0m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Fulfillment daily call cap reached",
					"description": "The configured upstream.rateLimit.dailyLimit has been exhausted. Checks fail until the 24h window rolls over.",
				},
			},
			{
				Alert:  "PickupMonitorNotificationFailures",
				Expr:   `pickup_monitor:notification_failures:rate5m > 0`,
				For:    "5m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Push notifications are failing",
					"description": "Bark or Feishu deliveries have been failing for 5 minutes. Check tokens, webhook URLs and the Feishu secret.",
				},
			},
		},
	})
}
