package handlers

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/reconcile"
	"opsdash/internal/records"
)

// OpsHandler serves the operational endpoints: health, data quality, the
// reconciliation run and the reload trigger.
type OpsHandler struct {
	store      *records.Store
	policy     *config.Policy
	thresholds kpi.Thresholds
	startedAt  time.Time
}

// NewOpsHandler creates a new operational handler.
func NewOpsHandler(store *records.Store, policy *config.Policy, thresholds kpi.Thresholds) *OpsHandler {
	return &OpsHandler{store: store, policy: policy, thresholds: thresholds, startedAt: time.Now()}
}

type healthPayload struct {
	Status        string    `json:"status"`
	Incidents     int       `json:"incidents"`
	Consultations int       `json:"consultations"`
	LoadedAt      time.Time `json:"loadedAt"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
}

// Healthz answers liveness probes with store vitals. No envelope; probes
// read this directly.
func (h *OpsHandler) Healthz(c fiber.Ctx) error {
	snap := h.store.Snapshot()
	return c.JSON(healthPayload{
		Status:        "ok",
		Incidents:     len(snap.Incidents),
		Consultations: len(snap.Consultations),
		LoadedAt:      snap.LoadedAt,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

type dataQualityPayload struct {
	Anomalies     records.AnomalyTally `json:"anomalies"`
	AnomalyTotal  int                  `json:"anomalyTotal"`
	Incidents     int                  `json:"incidents"`
	Consultations int                  `json:"consultations"`
	LoadedAt      time.Time            `json:"loadedAt"`
	Fingerprint   string               `json:"fingerprint"`
	Reloads       int64                `json:"reloads"`
}

// DataQuality reports what the last load excluded or flagged, plus the
// snapshot's provenance.
func (h *OpsHandler) DataQuality(c fiber.Ctx) error {
	snap := h.store.Snapshot()
	return jsonSuccess(c, dataQualityPayload{
		Anomalies:     snap.Anomalies,
		AnomalyTotal:  snap.Anomalies.Total(),
		Incidents:     len(snap.Incidents),
		Consultations: len(snap.Consultations),
		LoadedAt:      snap.LoadedAt,
		Fingerprint:   snap.Fingerprint,
		Reloads:       h.store.ReloadCount(),
	})
}

// Reconcile runs the full consistency suite against the live snapshot and
// returns the discrepancy report.
func (h *OpsHandler) Reconcile(c fiber.Ctx) error {
	rep, err := reconcile.New(h.store.Snapshot(), h.thresholds, h.policy).Run()
	if err != nil {
		log.Error().Err(err).Msg("Reconciliation run failed")
		return jsonError(c, fiber.StatusInternalServerError, "reconciliation failed")
	}
	return jsonSuccess(c, rep)
}

type reloadPayload struct {
	Incidents     int       `json:"incidents"`
	Consultations int       `json:"consultations"`
	Fingerprint   string    `json:"fingerprint"`
	LoadedAt      time.Time `json:"loadedAt"`
}

// Reload swaps in a freshly loaded snapshot. Concurrent calls collapse
// into a single load; on failure the previous snapshot stays live.
func (h *OpsHandler) Reload(c fiber.Ctx) error {
	snap, err := h.store.Reload(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("Reload failed")
		return jsonError(c, fiber.StatusInternalServerError, "reload failed")
	}
	return jsonSuccess(c, reloadPayload{
		Incidents:     len(snap.Incidents),
		Consultations: len(snap.Consultations),
		Fingerprint:   snap.Fingerprint,
		LoadedAt:      snap.LoadedAt,
	})
}
