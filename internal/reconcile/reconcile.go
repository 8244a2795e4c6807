// Package reconcile cross-checks the dashboard's summary figures against
// its drill-down views. Every check resolves both populations through the
// same kpi functions the HTTP handlers call and compares them as record-ID
// sets, so equal counts hiding different members still surface. A
// discrepancy therefore points at filter or aggregation drift, never at a
// second copy of a formula.
package reconcile

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"opsdash/internal/config"
	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// namedPeriods are the windows every period-swept check runs over.
var namedPeriods = []string{"all", "q1", "q2"}

// Reconciler runs the check suite against one immutable snapshot.
type Reconciler struct {
	snapshot   *records.Snapshot
	thresholds kpi.Thresholds
	policy     *config.Policy
}

func New(snapshot *records.Snapshot, thresholds kpi.Thresholds, policy *config.Policy) *Reconciler {
	return &Reconciler{snapshot: snapshot, thresholds: thresholds, policy: policy}
}

// checkResult is one comparison outcome before report assembly.
type checkResult struct {
	name       string
	consistent bool
	expected   any
	actual     any
	difference any
	details    string
}

// Run executes the full suite and assembles the report.
func (r *Reconciler) Run() (*Report, error) {
	results := make([]checkResult, 0, 64)
	results = append(results, r.checkTotalVsTeamSum()...)
	results = append(results, r.checkTotalVsMonthSum()...)
	results = append(results, r.checkTeamDrilldowns()...)
	results = append(results, r.checkMonthDrilldowns()...)
	results = append(results, r.checkRegionConsistency())
	results = append(results, r.checkSeverityPartition()...)
	results = append(results, r.checkFCRDenominator()...)

	report := buildReport(results, r.snapshot.Fingerprint)
	log.Info().
		Str("run_id", report.RunID).
		Int("checks", report.Summary.TotalChecks).
		Int("discrepancies", report.Summary.Discrepancies).
		Float64("accuracy", report.Summary.AccuracyRate).
		Msg("Reconciliation run complete")
	return report, nil
}

// filterAll resolves one period over the whole store; the period names are
// fixed, so a resolution failure is a programming error worth surfacing as
// a failed check rather than a crash.
func (r *Reconciler) filterAll(period string) ([]records.Incident, error) {
	return kpi.Filter{Period: period}.Apply(r.snapshot.Incidents, r.policy)
}

func failedCheck(name string, err error) checkResult {
	return checkResult{
		name:       name,
		consistent: false,
		expected:   "check to execute",
		actual:     err.Error(),
		difference: "N/A",
		details:    "the check itself failed to run",
	}
}

func compareCounts(name string, expected, actual int, details string) checkResult {
	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	return checkResult{
		name:       name,
		consistent: expected == actual,
		expected:   expected,
		actual:     actual,
		difference: diff,
		details:    details,
	}
}

// idSet reduces a population to its sorted record numbers.
func idSet(subset []records.Incident) []string {
	ids := make([]string, 0, len(subset))
	for _, inc := range subset {
		ids = append(ids, inc.Number)
	}
	slices.Sort(ids)
	return ids
}

// compareSets verifies two population resolutions agree member by member.
// Equal sizes with different members is the dangerous case: counts would
// look fine on the dashboard while every drill-down row is wrong.
func compareSets(name string, summary, drilldown []string, context string) checkResult {
	res := checkResult{
		name:     name,
		expected: len(summary),
		actual:   len(drilldown),
		details:  context,
	}
	onlySummary, onlyDrill := setDiff(summary, drilldown)
	if len(onlySummary) == 0 && len(onlyDrill) == 0 {
		res.consistent = true
		res.difference = 0
		return res
	}

	res.consistent = false
	res.difference = len(onlySummary) + len(onlyDrill)
	var parts []string
	if len(onlySummary) > 0 {
		parts = append(parts, fmt.Sprintf("%d only in summary (%s)", len(onlySummary), sampleIDs(onlySummary)))
	}
	if len(onlyDrill) > 0 {
		parts = append(parts, fmt.Sprintf("%d only in drill-down (%s)", len(onlyDrill), sampleIDs(onlyDrill)))
	}
	if len(summary) == len(drilldown) {
		parts = append(parts, "set_divergence: counts match but members differ")
	}
	res.details = strings.TrimSpace(context + " " + strings.Join(parts, "; "))
	return res
}

// setDiff returns the members unique to each sorted set.
func setDiff(a, b []string) (onlyA, onlyB []string) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			onlyA = append(onlyA, a[i])
			i++
		default:
			onlyB = append(onlyB, b[j])
			j++
		}
	}
	onlyA = append(onlyA, a[i:]...)
	onlyB = append(onlyB, b[j:]...)
	return onlyA, onlyB
}

func sampleIDs(ids []string) string {
	const limit = 5
	if len(ids) <= limit {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:limit], ", ") + ", ..."
}
