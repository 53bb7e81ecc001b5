package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// DeviceOutcomes returns a timeseries panel of device checks per minute
// split by outcome.
func DeviceOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Device Checks / min").
		Description("Device checks per minute by outcome (checked, no_stores, rejected, wrong_code, error, panic)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum(rate(pickup_monitor_device_checks_total{`+Job+`}[5m])) by (outcome) * 60`,
			"{{outcome}}", "A",
		)).
		FillOpacity(20).
		LineWidth(1).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// StoresAvailable returns a timeseries panel with available stores per
// device.
func StoresAvailable() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Stores With Stock by Device").
		Description("Stores reporting pickup availability in each device's latest check").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`pickup_monitor_stores_available{`+Job+`}`, "{{device}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PassDuration returns a timeseries panel with the p95 pass duration. A
// pass takes at least the stagger offset times the device count.
func PassDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pass Duration (p95)").
		Description("95th percentile duration of a pass over every device").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(P95("pickup_monitor_pass_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PassRate returns a timeseries panel showing passes started per minute.
func PassRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Passes / min").
		Description("Polling passes started per minute, scheduled and manual").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`rate(pickup_monitor_passes_total{`+Job+`}[5m]) * 60`, "passes/min", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SkippedPasses returns a stat panel with ticks skipped in the last 24
// hours because the previous pass was still running.
func SkippedPasses() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Skipped Ticks (24h)").
		Description("Scheduler ticks skipped because a pass was still running; the schedule is tighter than the device count allows").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`increase(pickup_monitor_passes_skipped_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
