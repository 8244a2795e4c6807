package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

var testThresholds = kpi.Thresholds{GoalMinutes: 192, BaselineMinutes: 240}

// inc returns an incident opened at 06:00 UTC on a weekday and resolved
// the given wall minutes later, so business minutes equal wall minutes.
// minutes < 0 leaves the incident unresolved.
func inc(number string, month time.Month, day int, team, region string, minutes int) records.Incident {
	opened := time.Date(2025, month, day, 6, 0, 0, 0, time.UTC)
	i := records.Incident{
		Number:   number,
		OpenedAt: opened,
		Team:     team,
		RawTeam:  team,
		Region:   region,
	}
	if minutes >= 0 {
		resolved := opened.Add(time.Duration(minutes) * time.Minute)
		i.ResolvedAt = &resolved
	}
	return i
}

func consult(id string, month time.Month, day int, complete bool, incidentRef string) records.Consultation {
	return records.Consultation{
		ID:          id,
		CreatedAt:   time.Date(2025, month, day, 10, 0, 0, 0, time.UTC),
		Complete:    complete,
		IncidentRef: incidentRef,
	}
}

// testSnapshot is the shared endpoint fixture: six incidents across four
// months and four consultations, small enough to hand-check every figure.
func testSnapshot() *records.Snapshot {
	i1 := inc("INC001", time.February, 5, "Helpdesk North", "AMER", 100)
	i1.ReopenCount = records.SomeInt(0)
	i1.Priority = "P2"
	i1.Description = "Laptop will not boot"
	i1.KnowledgeID = "KB0001"
	i1.ResolvedBy = "Dana Cruz"
	i1.Location = "Building 12"

	i2 := inc("INC002", time.February, 12, "Helpdesk North", "AMER", 250)
	i2.ReopenCount = records.SomeInt(1)
	i2.Priority = "P3"
	i2.Description = "Printer jam on floor 3"
	i2.ResolvedBy = "Dana Cruz"
	i2.Location = "Building 12"

	i3 := inc("INC003", time.March, 5, "Field Support", "EMEA", 200)
	i3.ReopenCount = records.SomeInt(0)
	i3.Priority = "P2"
	i3.Description = "VPN connectivity drops"
	i3.KnowledgeID = "KB0002"
	i3.ResolvedBy = "Ravi Patel"
	i3.Location = "Dublin Hub"

	i4 := inc("INC004", time.May, 7, "Field Support", "EMEA", 400)
	i4.ReopenCount = records.SomeInt(0)
	i4.Priority = "P1"
	i4.Description = "Password reset loop"
	i4.KnowledgeID = "KB0001"
	i4.ResolvedBy = "Ravi Patel"
	i4.Location = "Dublin Hub"
	i4.MajorIncident = true

	i5 := inc("INC005", time.June, 4, "Deskside", "APAC", 150)
	i5.Priority = "P3"
	i5.Description = "Software install request"
	i5.ResolvedBy = "Mei Lin"
	i5.Location = "Singapore Lab"

	i6 := inc("INC006", time.June, 11, "", "AMER", -1)
	i6.Priority = "P3"
	i6.Description = "Monitor flicker"

	c1 := consult("C001", time.February, 10, true, "INC123")
	c1.Issue = "Password reset"
	c1.Type = "Tech Support"
	c1.Location = "Building 12"
	c1.Technician = "Dana Cruz"
	c1.Region = "AMER"

	c2 := consult("C002", time.February, 24, true, "")
	c2.Issue = "Password reset"
	c2.Type = "Tech Support"
	c2.Location = "Building 12"
	c2.Technician = "Dana Cruz"
	c2.Region = "AMER"

	c3 := consult("C003", time.March, 10, false, "")
	c3.Issue = "Software install"
	c3.Type = "How-To"
	c3.Location = "Dublin Hub"
	c3.Technician = "Ravi Patel"
	c3.Region = "EMEA"

	c4 := consult("C004", time.May, 12, true, "INC200")
	c4.Issue = "Monitor setup"
	c4.Type = "Hardware"
	c4.Location = "Dublin Hub"
	c4.Technician = "Ravi Patel"
	c4.Region = "EMEA"

	return &records.Snapshot{
		Incidents:     []records.Incident{i1, i2, i3, i4, i5, i6},
		Consultations: []records.Consultation{c1, c2, c3, c4},
		Anomalies:     records.AnomalyTally{DuplicateNumber: 1},
		LoadedAt:      time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		Fingerprint:   "cafe01234567",
	}
}

func newStore(t *testing.T, snap *records.Snapshot) *records.Store {
	t.Helper()
	store, err := records.NewStore(context.Background(), func(ctx context.Context) (*records.Snapshot, error) {
		return snap, nil
	})
	require.NoError(t, err)
	return store
}

// appWithStore wires every route the handler tests hit against the given
// store.
func appWithStore(t *testing.T, store *records.Store) *fiber.App {
	t.Helper()
	pol := config.DefaultPolicy()

	metrics := NewMetricsHandler(store, pol, testThresholds)
	drill := NewDrillDownHandler(store, pol, testThresholds)
	dir := NewDirectoryHandler(store, pol)
	con := NewConsultationHandler(store)
	ops := NewOpsHandler(store, pol, testThresholds)

	app := fiber.New()
	app.Get("/api/overview", metrics.Overview)
	app.Get("/api/trends", metrics.Trends)
	app.Get("/api/team_performance", metrics.TeamPerformance)
	app.Get("/api/sla_breach", metrics.SLABreach)
	app.Get("/api/team_drill_down", drill.Team)
	app.Get("/api/mttr_drilldown", drill.MTTR)
	app.Get("/api/incident_drilldown", drill.Incidents)
	app.Get("/api/fcr_drilldown", drill.FCR)
	app.Get("/api/application_drilldown", drill.Applications)
	app.Get("/api/kb_trending", drill.KBTrending)
	app.Get("/api/regions", dir.Regions)
	app.Get("/api/assignment_groups", dir.AssignmentGroups)
	app.Get("/api/technicians", dir.Technicians)
	app.Get("/api/locations", dir.Locations)
	app.Get("/api/consultations/overview", con.Overview)
	app.Get("/api/consultations/trends", con.Trends)
	app.Get("/api/consultations/issue-breakdown", con.IssueBreakdown)
	app.Get("/api/consultations/locations", con.Locations)
	app.Get("/api/consultations/regions", con.Regions)
	app.Get("/api/consultations/technician-drilldown", con.TechnicianDrillDown)
	app.Get("/api/data_quality", ops.DataQuality)
	app.Get("/api/reconcile", ops.Reconcile)
	app.Post("/api/reload", ops.Reload)
	app.Get("/healthz", ops.Healthz)
	return app
}

func testApp(t *testing.T) *fiber.App {
	return appWithStore(t, newStore(t, testSnapshot()))
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

// request performs one in-process request and decodes the envelope.
func request(t *testing.T, app *fiber.App, method, target string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return resp.StatusCode, env
}

func get(t *testing.T, app *fiber.App, target string) (int, envelope) {
	t.Helper()
	return request(t, app, http.MethodGet, target)
}

// decodeData unmarshals the envelope payload into out.
func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.Equal(t, "ok", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, out))
}
