package kpi_test

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

var update = flag.Bool("update", false, "update golden files")

type dashboardGoldenResult struct {
	Overview  kpi.Overview      `json:"overview"`
	DrillDown kpi.DrillDownView `json:"drillDown"`
}

func goldenSubset() []records.Incident {
	resolve := func(opened time.Time, minutes int) *time.Time {
		resolved := opened.Add(time.Duration(minutes) * time.Minute)
		return &resolved
	}

	opened1 := time.Date(2025, time.February, 5, 6, 0, 0, 0, time.UTC)
	opened2 := time.Date(2025, time.February, 12, 6, 0, 0, 0, time.UTC)
	opened3 := time.Date(2025, time.March, 5, 6, 0, 0, 0, time.UTC)
	opened4 := time.Date(2025, time.June, 11, 6, 0, 0, 0, time.UTC)

	return []records.Incident{
		{
			Number:      "INC0001",
			OpenedAt:    opened1,
			ResolvedAt:  resolve(opened1, 100),
			Team:        "Helpdesk North",
			Region:      "AMER",
			ReopenCount: records.SomeInt(0),
			Priority:    "P2",
			KnowledgeID: "KB0001",
			Description: "Laptop will not boot",
		},
		{
			Number:      "INC0002",
			OpenedAt:    opened2,
			ResolvedAt:  resolve(opened2, 250),
			Team:        "Helpdesk North",
			Region:      "AMER",
			ReopenCount: records.SomeInt(1),
			Priority:    "P3",
			Description: "Printer jam on floor 3",
		},
		{
			Number:        "INC0003",
			OpenedAt:      opened3,
			ResolvedAt:    resolve(opened3, 200),
			Team:          "Field Support",
			Region:        "EMEA",
			ReopenCount:   records.SomeInt(0),
			Priority:      "P1",
			MajorIncident: true,
			KnowledgeID:   "KB0002",
			Description:   "VPN connectivity drops",
		},
		{
			Number:      "INC0004",
			OpenedAt:    opened4,
			Region:      "AMER",
			Priority:    "P3",
			Description: "Monitor flicker",
		},
	}
}

// The overview card and the drill-down view are the two JSON shapes the
// dashboard frontend is built against. This pins them byte for byte,
// including null rendering for undefined metrics and the slowest-first
// sample order.
func TestDashboardShapes_Golden(t *testing.T) {
	subset := goldenSubset()
	thresholds := kpi.Thresholds{GoalMinutes: 192, BaselineMinutes: 240}

	result := dashboardGoldenResult{
		Overview:  kpi.Summarize(subset, thresholds),
		DrillDown: kpi.DrillDown(subset, thresholds, 10),
	}

	actualJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal golden result: %v", err)
	}

	goldenPath := filepath.Join("testdata", "golden", "dashboard_golden.json")

	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(goldenPath, actualJSON, 0644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Golden file updated at %s", goldenPath)
		return
	}

	expectedJSON, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file not found at %s. Run tests with -update flag to generate it.", goldenPath)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	if !bytes.Equal(expectedJSON, actualJSON) {
		t.Errorf("Mismatch between actual results and golden file.")

		tmpPath := goldenPath + ".actual"
		os.WriteFile(tmpPath, actualJSON, 0644)
		t.Errorf("Wrote actual output to %s for comparison. If the shape change was intentional, re-run with 'go test ./... -update'", tmpPath)
	}
}
