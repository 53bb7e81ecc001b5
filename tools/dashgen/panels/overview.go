package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

func probeStat(title, description, metric string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(metric, "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// HealthzStat returns a stat panel showing the liveness probe status.
func HealthzStat() *stat.PanelBuilder {
	return probeStat("Healthz", "Liveness probe status (1 = ok, 0 = failing)", `pickup_monitor_healthz_up`)
}

// ReadyzStat returns a stat panel showing whether scheduled polling is
// running. It stays 0 while the task configuration is invalid.
func ReadyzStat() *stat.PanelBuilder {
	return probeStat("Monitoring", "Readiness probe status (1 = polling, 0 = disabled)", `pickup_monitor_readyz_up`)
}

// AvailableStoresStat returns a stat panel with the number of stores
// reporting a watched device available in the latest pass.
func AvailableStoresStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Stores With Stock").
		Description("Stores reporting pickup availability in the latest check, summed over devices").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`sum(pickup_monitor_stores_available{`+Job+`})`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - process_start_time_seconds{`+Job+`}`, "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
