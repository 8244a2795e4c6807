// Package handlers implements the dashboard's JSON API. Every endpoint
// reads one immutable snapshot, narrows it with the shared filter, and
// serves figures computed by the same kpi functions the reconciler
// cross-checks. Summary cards and drill-downs cannot disagree unless the
// reconciler would flag it too.
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

const (
	defaultSampleLimit = 20
	defaultTopLimit    = 10
	maxLimit           = 100
)

// incidentFilter builds the shared record filter from the common query
// parameters. An explicit month wins over a quarter.
func incidentFilter(c fiber.Ctx) kpi.Filter {
	period := c.Query("quarter", "")
	if m := c.Query("month", ""); m != "" {
		period = m
	}
	return kpi.Filter{
		Period: period,
		Region: c.Query("region", ""),
		Team:   c.Query("assignment_group", ""),
	}
}

func consultationFilter(c fiber.Ctx) kpi.ConsultationFilter {
	period := c.Query("quarter", "")
	if m := c.Query("month", ""); m != "" {
		period = m
	}
	return kpi.ConsultationFilter{
		Period:   period,
		Region:   c.Query("region", ""),
		Location: c.Query("location", ""),
	}
}

// filteredIncidents applies the common filter to the snapshot. The only
// possible error is an unresolvable period name.
func filteredIncidents(c fiber.Ctx, snap *records.Snapshot, pol *config.Policy) ([]records.Incident, error) {
	return incidentFilter(c).Apply(snap.Incidents, pol)
}

func filteredConsultations(c fiber.Ctx, snap *records.Snapshot) ([]records.Consultation, error) {
	return consultationFilter(c).Apply(snap.Consultations)
}

// queryLimit reads a positive limit parameter, falling back when absent or
// malformed and capping runaway values.
func queryLimit(c fiber.Ctx, fallback int) int {
	n, err := strconv.Atoi(c.Query("limit", ""))
	if err != nil || n < 1 {
		return fallback
	}
	return min(n, maxLimit)
}

func sampleLimit(c fiber.Ctx) int {
	return queryLimit(c, defaultSampleLimit)
}
