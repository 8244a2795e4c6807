package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdash/internal/records"
)

func TestHealthz(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var p healthPayload
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "ok", p.Status)
	assert.Equal(t, 6, p.Incidents)
	assert.Equal(t, 4, p.Consultations)
	assert.GreaterOrEqual(t, p.UptimeSeconds, int64(0))
}

func TestDataQuality(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/data_quality")
	require.Equal(t, http.StatusOK, status)

	var p dataQualityPayload
	decodeData(t, env, &p)

	assert.Equal(t, 1, p.Anomalies.DuplicateNumber)
	assert.Equal(t, 1, p.AnomalyTotal)
	assert.Equal(t, 6, p.Incidents)
	assert.Equal(t, "cafe01234567", p.Fingerprint)
	assert.EqualValues(t, 0, p.Reloads)
}

func TestReconcileEndpoint(t *testing.T) {
	app := testApp(t)

	status, env := get(t, app, "/api/reconcile")
	require.Equal(t, http.StatusOK, status)

	var rep struct {
		DatasetFingerprint string `json:"datasetFingerprint"`
		Summary            struct {
			TotalChecks   int     `json:"totalChecks"`
			Discrepancies int     `json:"discrepancies"`
			AccuracyRate  float64 `json:"accuracyRate"`
		} `json:"summary"`
		Categories map[string]int `json:"categories"`
	}
	decodeData(t, env, &rep)

	assert.Equal(t, "cafe01234567", rep.DatasetFingerprint)
	assert.Positive(t, rep.Summary.TotalChecks)
	assert.Zero(t, rep.Summary.Discrepancies, "fixture dataset must reconcile cleanly")
	assert.Equal(t, 100.0, rep.Summary.AccuracyRate)
	assert.Len(t, rep.Categories, 5)
}

func TestReloadEndpoint(t *testing.T) {
	store := newStore(t, testSnapshot())
	app := appWithStore(t, store)

	status, env := request(t, app, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, status)

	var p reloadPayload
	decodeData(t, env, &p)
	assert.Equal(t, 6, p.Incidents)
	assert.Equal(t, "cafe01234567", p.Fingerprint)
	assert.EqualValues(t, 1, store.ReloadCount())
}

func TestReloadFailureKeepsSnapshot(t *testing.T) {
	calls := 0
	store, err := records.NewStore(context.Background(), func(ctx context.Context) (*records.Snapshot, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("export server is down")
		}
		return testSnapshot(), nil
	})
	require.NoError(t, err)
	app := appWithStore(t, store)

	status, env := request(t, app, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "reload failed")

	// The previous snapshot stays live.
	status, env = get(t, app, "/api/overview")
	require.Equal(t, http.StatusOK, status)
	var o struct {
		TotalCount int `json:"totalCount"`
	}
	decodeData(t, env, &o)
	assert.Equal(t, 6, o.TotalCount)
	assert.EqualValues(t, 0, store.ReloadCount())
}
