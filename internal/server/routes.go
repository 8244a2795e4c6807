package server

import (
	"os"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"opsdash/internal/config"
	"opsdash/internal/handlers"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// RegisterRoutes registers all application routes. The static dashboard
// mount is a catch-all and must stay last.
func (s *Server) RegisterRoutes(store *records.Store, policy *config.Policy) {
	thresholds := kpi.Thresholds{
		GoalMinutes:     s.cfg.SLAGoalMinutes,
		BaselineMinutes: s.cfg.SLABaselineMinutes,
	}

	// Initialize handlers
	metricsHandler := handlers.NewMetricsHandler(store, policy, thresholds)
	drillDownHandler := handlers.NewDrillDownHandler(store, policy, thresholds)
	directoryHandler := handlers.NewDirectoryHandler(store, policy)
	consultationHandler := handlers.NewConsultationHandler(store)
	opsHandler := handlers.NewOpsHandler(store, policy, thresholds)

	// Summary views
	s.App.Get("/api/overview", metricsHandler.Overview)
	s.App.Get("/api/trends", metricsHandler.Trends)
	s.App.Get("/api/team_performance", metricsHandler.TeamPerformance)
	s.App.Get("/api/sla_breach", metricsHandler.SLABreach)

	// Drill-downs
	s.App.Get("/api/team_drill_down", drillDownHandler.Team)
	s.App.Get("/api/mttr_drilldown", drillDownHandler.MTTR)
	s.App.Get("/api/incident_drilldown", drillDownHandler.Incidents)
	s.App.Get("/api/fcr_drilldown", drillDownHandler.FCR)
	s.App.Get("/api/application_drilldown", drillDownHandler.Applications)
	s.App.Get("/api/kb_trending", drillDownHandler.KBTrending)

	// Directories
	s.App.Get("/api/regions", directoryHandler.Regions)
	s.App.Get("/api/assignment_groups", directoryHandler.AssignmentGroups)
	s.App.Get("/api/technicians", directoryHandler.Technicians)
	s.App.Get("/api/locations", directoryHandler.Locations)

	// Consultations
	s.App.Get("/api/consultations/overview", consultationHandler.Overview)
	s.App.Get("/api/consultations/trends", consultationHandler.Trends)
	s.App.Get("/api/consultations/issue-breakdown", consultationHandler.IssueBreakdown)
	s.App.Get("/api/consultations/locations", consultationHandler.Locations)
	s.App.Get("/api/consultations/regions", consultationHandler.Regions)
	s.App.Get("/api/consultations/technician-drilldown", consultationHandler.TechnicianDrillDown)

	// Operations
	s.App.Get("/api/data_quality", opsHandler.DataQuality)
	s.App.Get("/api/reconcile", opsHandler.Reconcile)
	s.App.Post("/api/reload", opsHandler.Reload)
	s.App.Get("/healthz", opsHandler.Healthz)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Dashboard assets, when a build is present
	if info, err := os.Stat(s.cfg.WebDir); err == nil && info.IsDir() {
		s.App.Get("/*", static.New(s.cfg.WebDir))
		log.Info().Str("dir", s.cfg.WebDir).Msg("Serving dashboard assets")
	}
}
