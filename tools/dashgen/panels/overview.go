package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

func upStat(title, description, metric string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(sel(metric), "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(colorThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// HealthzStat shows the liveness probe (1 = ok, 0 = failing).
func HealthzStat() *stat.PanelBuilder {
	return upStat("Healthz", "Liveness probe (1 = ok, 0 = failing)", "discogs_alert_healthz_up")
}

// ReadyzStat shows whether the wantlist could be loaded on the last probe.
func ReadyzStat() *stat.PanelBuilder {
	return upStat("Readyz", "Readiness probe: wantlist loadable (1 = ready)", "discogs_alert_readyz_up")
}

// LastSuccessfulCycle shows the age of the last cycle that completed.
func LastSuccessfulCycle() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Last Successful Cycle").
		Description("Time since a cycle last completed without error").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - `+sel("discogs_alert_cycle_last_success_timestamp"), "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenYellowRed(3*3600, 24*3600)).
		ColorScheme(colorThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// NextCycle shows the time until the scheduler's next cycle.
func NextCycle() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Cycle In").
		Description("Time until the next scheduled cycle").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(sel("discogs_alert_scheduler_next_cycle_timestamp")+` - time()`, "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(colorThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
