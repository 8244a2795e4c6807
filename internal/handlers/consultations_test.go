package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/internal/kpi"
)

func TestConsultationsOverview(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/overview")
	require.Equal(t, http.StatusOK, status)

	var o kpi.ConsultationOverview
	decodeData(t, env, &o)

	assert.Equal(t, 4, o.TotalCount)
	assert.Equal(t, 3, o.Completed)
	assert.Equal(t, kpi.Some(75), o.CompletionRate)
	assert.Equal(t, 2, o.IncidentsCreated)
	assert.Equal(t, kpi.Some(50), o.IncidentRate)
	assert.Equal(t, 1, o.MissingIncident)
	assert.Equal(t, kpi.Some(33.3), o.MissingIncidentRate)

	require.NotEmpty(t, o.TypeBreakdown)
	assert.Equal(t, kpi.KeyCount{Key: "Tech Support", Count: 2}, o.TypeBreakdown[0])
}

func TestConsultationsOverviewLocationFilter(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/overview?location=building+12")
	require.Equal(t, http.StatusOK, status)

	var o kpi.ConsultationOverview
	decodeData(t, env, &o)
	assert.Equal(t, 2, o.TotalCount)

	status, _ = get(t, app, "/api/consultations/overview?quarter=banana")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestConsultationsTrends(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/trends")
	require.Equal(t, http.StatusOK, status)

	var ts kpi.ConsultationTrendSeries
	decodeData(t, env, &ts)

	require.Equal(t, []string{"2025-02", "2025-03", "2025-05"}, ts.Keys)
	assert.Equal(t, []int{2, 1, 1}, ts.Counts)
	assert.Equal(t, []int{2, 0, 1}, ts.Completed)
	assert.Equal(t, kpi.Some(100), ts.CompletionRate[0])
	assert.Equal(t, kpi.Some(0), ts.CompletionRate[1])
}

func TestConsultationsIssueBreakdownLimit(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/issue-breakdown?limit=1")
	require.Equal(t, http.StatusOK, status)

	var rows []kpi.KeyCount
	decodeData(t, env, &rows)

	require.Len(t, rows, 2)
	assert.Equal(t, kpi.KeyCount{Key: "Password reset", Count: 2}, rows[0])
	assert.Equal(t, kpi.KeyCount{Key: "Others", Count: 2}, rows[1])
}

func TestConsultationsDirectories(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/locations")
	require.Equal(t, http.StatusOK, status)
	var locations []kpi.KeyCount
	decodeData(t, env, &locations)
	require.NotEmpty(t, locations)
	assert.Equal(t, kpi.KeyCount{Key: "Building 12", Count: 2}, locations[0])

	status, env = get(t, app, "/api/consultations/regions")
	require.Equal(t, http.StatusOK, status)
	var regions []kpi.KeyCount
	decodeData(t, env, &regions)
	require.Len(t, regions, 2)
	assert.Equal(t, "AMER", regions[0].Key)
}

func TestTechnicianDrillDown(t *testing.T) {
	app := testApp(t)

	target := "/api/consultations/technician-drilldown?" + url.Values{"technician": {"dana cruz"}}.Encode()
	status, env := get(t, app, target)
	require.Equal(t, http.StatusOK, status)

	var p technicianDrillDownPayload
	decodeData(t, env, &p)

	assert.Equal(t, "Dana Cruz", p.Technician, "spelling echoes the data, not the query")
	assert.Equal(t, 2, p.Overview.TotalCount)
	assert.Equal(t, 1, p.Overview.MissingIncident)
	assert.Equal(t, []string{"2025-02"}, p.Monthly.Keys)
}

func TestTechnicianDrillDownErrors(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/consultations/technician-drilldown?technician=Nobody")
	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, env.Error, "Nobody")

	status, env = get(t, app, "/api/consultations/technician-drilldown")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "technician is required")
}
