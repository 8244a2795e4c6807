package reconcile

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Discrepancy is one failed check.
type Discrepancy struct {
	TestName   string `json:"testName"`
	Expected   any    `json:"expected"`
	Actual     any    `json:"actual"`
	Difference any    `json:"difference"`
	Details    string `json:"details,omitempty"`
}

// ConsistentCheck records a passing check.
type ConsistentCheck struct {
	TestName string `json:"testName"`
	Detail   string `json:"detail,omitempty"`
}

// Summary totals one run.
type Summary struct {
	TotalChecks   int     `json:"totalChecks"`
	Consistent    int     `json:"consistent"`
	Discrepancies int     `json:"discrepancies"`
	AccuracyRate  float64 `json:"accuracyRate"`
}

// Report is the reconciliation artifact: one run's full outcome, stable
// enough to diff between runs and archive for regression tracking.
type Report struct {
	RunID              string            `json:"runId"`
	GeneratedAt        time.Time         `json:"generatedAt"`
	DatasetFingerprint string            `json:"datasetFingerprint"`
	Summary            Summary           `json:"summary"`
	Discrepancies      []Discrepancy     `json:"discrepancies"`
	ConsistentChecks   []ConsistentCheck `json:"consistentChecks"`
	Categories         map[string]int    `json:"categories"`
}

// Clean reports whether the run found no discrepancies.
func (r *Report) Clean() bool {
	return r.Summary.Discrepancies == 0
}

// The five discrepancy categories, always present in the report so
// downstream dashboards get a stable shape.
const (
	categoryCounts    = "Count Mismatches"
	categoryFilters   = "Filter Inconsistencies"
	categoryDrilldown = "Drill-down Discrepancies"
	categoryQuality   = "Data Quality Issues"
	categoryOther     = "Other Issues"
)

func buildReport(results []checkResult, fingerprint string) *Report {
	report := &Report{
		RunID:              uuid.NewString(),
		GeneratedAt:        time.Now().UTC(),
		DatasetFingerprint: fingerprint,
		Discrepancies:      make([]Discrepancy, 0),
		ConsistentChecks:   make([]ConsistentCheck, 0),
		Categories: map[string]int{
			categoryCounts:    0,
			categoryFilters:   0,
			categoryDrilldown: 0,
			categoryQuality:   0,
			categoryOther:     0,
		},
	}

	for _, res := range results {
		report.Summary.TotalChecks++
		if res.consistent {
			report.Summary.Consistent++
			report.ConsistentChecks = append(report.ConsistentChecks, ConsistentCheck{
				TestName: res.name,
				Detail:   res.details,
			})
			continue
		}
		report.Summary.Discrepancies++
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			TestName:   res.name,
			Expected:   res.expected,
			Actual:     res.actual,
			Difference: res.difference,
			Details:    res.details,
		})
		report.Categories[categorize(res.name)]++
	}

	if report.Summary.TotalChecks > 0 {
		rate := 100 * float64(report.Summary.Consistent) / float64(report.Summary.TotalChecks)
		report.Summary.AccuracyRate = math.Round(rate*10) / 10
	}
	return report
}

// categorize buckets a failed check by its name. Order matters: a
// team-drilldown-count failure is a count problem first.
func categorize(name string) string {
	switch {
	case strings.Contains(name, "count") || strings.Contains(name, "sum"):
		return categoryCounts
	case strings.Contains(name, "filter") || strings.Contains(name, "region"):
		return categoryFilters
	case strings.Contains(name, "drilldown"):
		return categoryDrilldown
	case strings.Contains(name, "partition") || strings.Contains(name, "denominator"):
		return categoryQuality
	default:
		return categoryOther
	}
}

// WriteFile writes the report as indented JSON via a temp file in the
// target directory, then renames it into place so a crash mid-write never
// leaves a truncated report.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize report: %w", err)
	}
	return nil
}
