package handlers

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// MetricsHandler serves the summary views: the KPI card, the trend charts
// and the per-group rollups.
type MetricsHandler struct {
	store      *records.Store
	policy     *config.Policy
	thresholds kpi.Thresholds
}

// NewMetricsHandler creates a new summary-view handler.
func NewMetricsHandler(store *records.Store, policy *config.Policy, thresholds kpi.Thresholds) *MetricsHandler {
	return &MetricsHandler{store: store, policy: policy, thresholds: thresholds}
}

// Overview returns the KPI card for the current filter.
func (h *MetricsHandler) Overview(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.Summarize(subset, h.thresholds))
}

// Trends returns the monthly chart series for the current filter.
func (h *MetricsHandler) Trends(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.MonthlyTrends(subset, h.thresholds))
}

// TeamPerformance returns one card per assignment group, busiest first.
func (h *MetricsHandler) TeamPerformance(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	rows, err := kpi.Breakdown(subset, kpi.ByTeam, h.thresholds, h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute team breakdown")
	}
	slices.SortStableFunc(rows, func(a, b kpi.GroupOverview) int {
		if a.TotalCount != b.TotalCount {
			return b.TotalCount - a.TotalCount
		}
		return strings.Compare(a.Key, b.Key)
	})
	return jsonSuccess(c, rows)
}

// slaBreachRow is one group's share of the breach load.
type slaBreachRow struct {
	Key          string           `json:"key"`
	Classifiable int              `json:"classifiable"`
	Compliance   kpi.Value        `json:"compliance"`
	Breaches     kpi.BreachCounts `json:"breaches"`
}

type slaBreachPayload struct {
	Overall    kpi.SLAFigures `json:"overall"`
	ByTeam     []slaBreachRow `json:"byTeam"`
	ByPriority []slaBreachRow `json:"byPriority"`
}

// SLABreach returns the severity-banded breach picture with per-team and
// per-priority breakdowns, heaviest breach load first.
func (h *MetricsHandler) SLABreach(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	byTeam, err := h.breachRows(subset, kpi.ByTeam)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute team breaches")
	}
	byPriority, err := h.breachRows(subset, kpi.ByPriority)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to compute priority breaches")
	}
	return jsonSuccess(c, slaBreachPayload{
		Overall:    kpi.ComputeSLA(subset, h.thresholds),
		ByTeam:     byTeam,
		ByPriority: byPriority,
	})
}

func (h *MetricsHandler) breachRows(subset []records.Incident, dim kpi.Dimension) ([]slaBreachRow, error) {
	groups, keys, err := kpi.GroupBy(subset, dim, h.policy)
	if err != nil {
		return nil, err
	}
	rows := make([]slaBreachRow, 0, len(keys))
	for _, k := range keys {
		sla := kpi.ComputeSLA(groups[k], h.thresholds)
		rows = append(rows, slaBreachRow{
			Key:          k,
			Classifiable: sla.Classifiable,
			Compliance:   sla.Compliance,
			Breaches:     sla.Breaches,
		})
	}
	slices.SortStableFunc(rows, func(a, b slaBreachRow) int {
		if d := b.Breaches.Total() - a.Breaches.Total(); d != 0 {
			return d
		}
		return strings.Compare(a.Key, b.Key)
	})
	return rows, nil
}
