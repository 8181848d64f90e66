// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/discogs-alert/tools/dashgen/panels"
)

// UID is the stable dashboard uid so re-imports replace the old version.
const UID = "discogs-alert-overview"

// BuildOverview constructs the discogs-alert overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Discogs Alert").
		Uid(UID).
		Tags([]string{"discogs-alert"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.LastSuccessfulCycle()).
		WithPanel(panels.NextCycle()))

	b.WithRow(dashboard.NewRowBuilder("Cycles").
		WithPanel(panels.CycleOutcomes()).
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.ReleasesSkipped()))

	b.WithRow(dashboard.NewRowBuilder("Listings").
		WithPanel(panels.ListingsEvaluated()).
		WithPanel(panels.Rejections()))

	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationsSent()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	b.WithRow(dashboard.NewRowBuilder("Upstreams").
		WithPanel(panels.DiscogsRequests()).
		WithPanel(panels.RateLimitWaits()).
		WithPanel(panels.ParseErrors()).
		WithPanel(panels.RateCacheHitRatio()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
