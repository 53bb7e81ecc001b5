// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/pickup-monitor/tools/dashgen/panels"
)

// BuildOverview constructs the pickup-monitor overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Pickup Monitor").
		Uid("pickup-monitor-overview").
		Tags([]string{"pickup-monitor"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.AvailableStoresStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Availability").
		WithPanel(panels.StoresAvailable()).
		WithPanel(panels.DeviceOutcomes()))

	b.WithRow(dashboard.NewRowBuilder("Passes").
		WithPanel(panels.PassRate()).
		WithPanel(panels.PassDuration()).
		WithPanel(panels.SkippedPasses()))

	b.WithRow(dashboard.NewRowBuilder("Fulfillment API").
		WithPanel(panels.UpstreamRequests()).
		WithPanel(panels.UpstreamLatency()).
		WithPanel(panels.DailyUsage()))

	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsSent()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	b.WithRow(dashboard.NewRowBuilder("Ops API").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.RequestLatency()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
