package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// DrillDownHandler serves the modal views behind the summary cards. Each
// one recomputes its figures from the filtered subset with the same
// functions the summaries use, never from cached summary output.
type DrillDownHandler struct {
	store      *records.Store
	policy     *config.Policy
	thresholds kpi.Thresholds
}

// NewDrillDownHandler creates a new drill-down handler.
func NewDrillDownHandler(store *records.Store, policy *config.Policy, thresholds kpi.Thresholds) *DrillDownHandler {
	return &DrillDownHandler{store: store, policy: policy, thresholds: thresholds}
}

type teamDrillDownPayload struct {
	Team string `json:"team"`
	kpi.DrillDownView
}

// Team returns the drill-down for one assignment group. The team value is
// canonicalized first, so dashboard labels and raw export names both hit.
func (h *DrillDownHandler) Team(c fiber.Ctx) error {
	team := strings.TrimSpace(c.Query("team", ""))
	if team == "" {
		return jsonError(c, fiber.StatusBadRequest, "team is required")
	}

	snap := h.store.Snapshot()
	canonical, known := kpi.KnownTeam(snap.Incidents, team, h.policy)
	if !known {
		return jsonError(c, fiber.StatusNotFound, fmt.Sprintf("unknown team %q", canonical))
	}

	f := incidentFilter(c)
	f.Team = team
	subset, err := f.Apply(snap.Incidents, h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, teamDrillDownPayload{
		Team:          canonical,
		DrillDownView: kpi.DrillDown(subset, h.thresholds, sampleLimit(c)),
	})
}

// rateRow is one group of a single-metric drill-down.
type rateRow struct {
	Key   string    `json:"key"`
	Label string    `json:"label,omitempty"`
	Count int       `json:"count"`
	Value kpi.Value `json:"value"`
}

// monthRates pairs one trend series with its month keys.
func monthRates(ts kpi.TrendSeries, values []kpi.Value) []rateRow {
	rows := make([]rateRow, len(ts.Keys))
	for i := range ts.Keys {
		rows[i] = rateRow{Key: ts.Keys[i], Label: ts.Labels[i], Count: ts.Counts[i], Value: values[i]}
	}
	return rows
}

type mttrDrilldownPayload struct {
	MTTR    kpi.Value          `json:"mttr"`
	Monthly []rateRow          `json:"monthly"`
	Slowest []kpi.SampleRecord `json:"slowest"`
}

// MTTR returns the resolution-time detail: the monthly series plus the
// slowest resolutions in the subset.
func (h *DrillDownHandler) MTTR(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	trends := kpi.MonthlyTrends(subset, h.thresholds)
	view := kpi.DrillDown(subset, h.thresholds, sampleLimit(c))
	return jsonSuccess(c, mttrDrilldownPayload{
		MTTR:    view.MTTR,
		Monthly: monthRates(trends, trends.MTTR),
		Slowest: view.Records,
	})
}

type monthCount struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type incidentDrilldownPayload struct {
	TotalCount   int                `json:"totalCount"`
	Monthly      []monthCount       `json:"monthly"`
	BusiestTeams []kpi.KeyCount     `json:"busiestTeams"`
	Records      []kpi.SampleRecord `json:"records"`
}

// Incidents returns the volume detail: monthly counts, the busiest teams
// and a record sample.
func (h *DrillDownHandler) Incidents(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	trends := kpi.MonthlyTrends(subset, h.thresholds)
	monthly := make([]monthCount, len(trends.Keys))
	for i := range trends.Keys {
		monthly[i] = monthCount{Key: trends.Keys[i], Label: trends.Labels[i], Count: trends.Counts[i]}
	}
	view := kpi.DrillDown(subset, h.thresholds, sampleLimit(c))
	return jsonSuccess(c, incidentDrilldownPayload{
		TotalCount:   view.TotalCount,
		Monthly:      monthly,
		BusiestTeams: kpi.TeamCounts(subset),
		Records:      view.Records,
	})
}

type reopenCoverage struct {
	Present int       `json:"present"`
	Total   int       `json:"total"`
	Rate    kpi.Value `json:"rate"`
}

type fcrDrilldownPayload struct {
	FCRRate  kpi.Value      `json:"fcrRate"`
	Monthly  []rateRow      `json:"monthly"`
	ByTeam   []rateRow      `json:"byTeam"`
	Coverage reopenCoverage `json:"reopenCoverage"`
}

// FCR returns the first-contact detail: the monthly and per-team rates
// plus how much of the subset carries reopen data at all. A stellar rate
// over thin coverage is not a stellar rate.
func (h *DrillDownHandler) FCR(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	trends := kpi.MonthlyTrends(subset, h.thresholds)
	teams, err := kpi.Breakdown(subset, kpi.ByTeam, h.thresholds, h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute team breakdown")
	}
	byTeam := make([]rateRow, 0, len(teams))
	for _, row := range teams {
		byTeam = append(byTeam, rateRow{Key: row.Key, Count: row.TotalCount, Value: row.FCRRate})
	}
	present, total := kpi.ReopenCoverage(subset)
	return jsonSuccess(c, fcrDrilldownPayload{
		FCRRate: kpi.FCR(subset),
		Monthly: monthRates(trends, trends.FCRRate),
		ByTeam:  byTeam,
		Coverage: reopenCoverage{
			Present: present,
			Total:   total,
			Rate:    kpi.Percent(present, total),
		},
	})
}

type applicationDrilldownPayload struct {
	TotalCount int                 `json:"totalCount"`
	Categories []kpi.GroupOverview `json:"categories"`
}

// Applications returns the keyword-derived category breakdown.
func (h *DrillDownHandler) Applications(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, err := kpi.Breakdown(subset, kpi.ByCategory, h.thresholds, h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute category breakdown")
	}
	return jsonSuccess(c, applicationDrilldownPayload{
		TotalCount: len(subset),
		Categories: rows,
	})
}

// KBTrending returns the knowledge-usage report for the current filter.
func (h *DrillDownHandler) KBTrending(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.KBTrending(subset, h.policy, queryLimit(c, defaultTopLimit)))
}
