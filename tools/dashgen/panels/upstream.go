package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// UpstreamRequests returns a timeseries panel with fulfillment API calls
// per second split by result.
func UpstreamRequests() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fulfillment Calls").
		Description("Fulfillment API calls per second by result (ok, rejected, no_store_list, error, rate_limited)").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(
			`sum(rate(pickup_monitor_upstream_requests_total{`+Job+`}[5m])) by (result)`,
			"{{result}}", "A",
		)).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// UpstreamLatency returns a timeseries panel with the p95 fulfillment API
// latency.
func UpstreamLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fulfillment Latency (p95)").
		Description("95th percentile fulfillment API round trip").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(P95("pickup_monitor_upstream_request_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(2, 8)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DailyUsage returns a stat panel with the calls made in the rolling
// 24-hour window and the number of times the cap was hit.
func DailyUsage() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Calls / Limit Hits (24h)").
		Description("Fulfillment calls in the rolling 24h window and times the configured daily cap was reached").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`pickup_monitor_upstream_daily_usage{`+Job+`}`, "calls", "A")).
		WithTarget(PromQuery(`increase(pickup_monitor_upstream_daily_limit_hits_total{`+Job+`}[24h])`, "limit hits", "B")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		GraphMode(common.BigValueGraphModeArea)
}
