package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// ConsultationHandler serves the walk-up consultation views. Consultations
// are a sibling dataset; nothing here touches the incident metrics.
type ConsultationHandler struct {
	store *records.Store
}

// NewConsultationHandler creates a new consultation handler.
func NewConsultationHandler(store *records.Store) *ConsultationHandler {
	return &ConsultationHandler{store: store}
}

// Overview returns the consultation card for the current filter.
func (h *ConsultationHandler) Overview(c fiber.Ctx) error {
	subset, err := filteredConsultations(c, h.store.Snapshot())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.SummarizeConsultations(subset))
}

// Trends returns the monthly consultation volume and completion series.
func (h *ConsultationHandler) Trends(c fiber.Ctx) error {
	subset, err := filteredConsultations(c, h.store.Snapshot())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.MonthlyConsultationTrends(subset))
}

// IssueBreakdown returns the top consultation issues with the remainder
// rolled into an "Others" row.
func (h *ConsultationHandler) IssueBreakdown(c fiber.Ctx) error {
	subset, err := filteredConsultations(c, h.store.Snapshot())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.IssueBreakdown(subset, queryLimit(c, defaultTopLimit)))
}

// Locations returns the consultation locations with counts.
func (h *ConsultationHandler) Locations(c fiber.Ctx) error {
	subset, err := filteredConsultations(c, h.store.Snapshot())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.ConsultationLocationCounts(subset))
}

// Regions returns the consultation regions with counts.
func (h *ConsultationHandler) Regions(c fiber.Ctx) error {
	subset, err := filteredConsultations(c, h.store.Snapshot())
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.ConsultationRegionCounts(subset))
}

type technicianDrillDownPayload struct {
	Technician string                      `json:"technician"`
	Overview   kpi.ConsultationOverview    `json:"overview"`
	Monthly    kpi.ConsultationTrendSeries `json:"monthly"`
}

// TechnicianDrillDown returns one technician's consultation detail, with
// the spelling canonicalized from the data.
func (h *ConsultationHandler) TechnicianDrillDown(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("technician", ""))
	if name == "" {
		return jsonError(c, fiber.StatusBadRequest, "technician is required")
	}

	snap := h.store.Snapshot()
	canonical, known := kpi.KnownTechnician(snap.Consultations, name)
	if !known {
		return jsonError(c, fiber.StatusNotFound, fmt.Sprintf("unknown technician %q", name))
	}

	subset, err := filteredConsultations(c, snap)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	mine := kpi.FilterTechnician(subset, canonical)
	return jsonSuccess(c, technicianDrillDownPayload{
		Technician: canonical,
		Overview:   kpi.SummarizeConsultations(mine),
		Monthly:    kpi.MonthlyConsultationTrends(mine),
	})
}
