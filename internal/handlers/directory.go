package handlers

import (
	"github.com/gofiber/fiber/v3"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// DirectoryHandler serves the populate-the-dropdown lists: regions,
// assignment groups, technicians and locations with their counts.
type DirectoryHandler struct {
	store  *records.Store
	policy *config.Policy
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(store *records.Store, policy *config.Policy) *DirectoryHandler {
	return &DirectoryHandler{store: store, policy: policy}
}

// Regions returns the regions of the current subset with incident counts.
func (h *DirectoryHandler) Regions(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.RegionCounts(subset))
}

// AssignmentGroups returns the canonical team names with incident counts.
func (h *DirectoryHandler) AssignmentGroups(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.TeamCounts(subset))
}

// Technicians returns the resolver ranking: per-resolver volume, MTTR and
// first-contact rate.
func (h *DirectoryHandler) Technicians(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.TechnicianStats(subset))
}

// Locations returns the incident locations with counts.
func (h *DirectoryHandler) Locations(c fiber.Ctx) error {
	subset, err := filteredIncidents(c, h.store.Snapshot(), h.policy)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return jsonSuccess(c, kpi.LocationCounts(subset))
}
