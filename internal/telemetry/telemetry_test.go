package telemetry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"opsdash/internal/records"
)

func testStore(t *testing.T, snap *records.Snapshot) *records.Store {
	t.Helper()
	store, err := records.NewStore(context.Background(), func(ctx context.Context) (*records.Snapshot, error) {
		return snap, nil
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestCollectEmitsSnapshotGauges(t *testing.T) {
	loadedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := &records.Snapshot{
		Incidents:     make([]records.Incident, 3),
		Consultations: make([]records.Consultation, 2),
		Anomalies: records.AnomalyTally{
			DuplicateNumber:  1,
			NegativeInterval: 2,
		},
		LoadedAt: loadedAt,
	}

	c := NewStoreCollector(testStore(t, snap))
	c.now = func() time.Time { return loadedAt.Add(90 * time.Second) }

	expected := `
# HELP opsdash_consultations_loaded Consultation records in the current snapshot
# TYPE opsdash_consultations_loaded gauge
opsdash_consultations_loaded 2
# HELP opsdash_data_anomalies Rows flagged during the last load, by anomaly kind
# TYPE opsdash_data_anomalies gauge
opsdash_data_anomalies{kind="duplicate_number"} 1
opsdash_data_anomalies{kind="invalid_reopen"} 0
opsdash_data_anomalies{kind="missing_number"} 0
opsdash_data_anomalies{kind="missing_opened"} 0
opsdash_data_anomalies{kind="negative_interval"} 2
opsdash_data_anomalies{kind="unparseable_opened"} 0
opsdash_data_anomalies{kind="unparseable_resolved"} 0
# HELP opsdash_incidents_loaded Incident records in the current snapshot
# TYPE opsdash_incidents_loaded gauge
opsdash_incidents_loaded 3
# HELP opsdash_reloads_total Completed snapshot reloads since startup
# TYPE opsdash_reloads_total counter
opsdash_reloads_total 0
# HELP opsdash_store_age_seconds Seconds since the current snapshot was loaded
# TYPE opsdash_store_age_seconds gauge
opsdash_store_age_seconds 90
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}

func TestCollectCountsReloads(t *testing.T) {
	snap := &records.Snapshot{LoadedAt: time.Now().UTC()}
	store := testStore(t, snap)
	if _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	c := NewStoreCollector(store)
	expected := `
# HELP opsdash_reloads_total Completed snapshot reloads since startup
# TYPE opsdash_reloads_total counter
opsdash_reloads_total 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "opsdash_reloads_total"); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}

func TestDescribeCoversEveryMetric(t *testing.T) {
	snap := &records.Snapshot{LoadedAt: time.Now().UTC()}
	ch := make(chan *prometheus.Desc, 10)
	NewStoreCollector(testStore(t, snap)).Describe(ch)
	close(ch)

	var n int
	for range ch {
		n++
	}
	if n != 5 {
		t.Fatalf("Describe sent %d descriptors, want 5", n)
	}
}
