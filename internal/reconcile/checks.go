package reconcile

import (
	"fmt"

	"opsdash/internal/kpi"
	"opsdash/internal/records"
)

// 1. The ungrouped total must equal the sum of per-team totals for every
// named period. A gap here means grouping drops or duplicates records.
func (r *Reconciler) checkTotalVsTeamSum() []checkResult {
	return r.checkTotalVsGroupSum("total-vs-team-sum", kpi.ByTeam)
}

// 2. Likewise for month groups.
func (r *Reconciler) checkTotalVsMonthSum() []checkResult {
	return r.checkTotalVsGroupSum("total-vs-month-sum", kpi.ByMonth)
}

func (r *Reconciler) checkTotalVsGroupSum(name string, dim kpi.Dimension) []checkResult {
	out := make([]checkResult, 0, len(namedPeriods))
	for _, period := range namedPeriods {
		checkName := fmt.Sprintf("%s-%s", name, period)
		subset, err := r.filterAll(period)
		if err != nil {
			out = append(out, failedCheck(checkName, err))
			continue
		}
		groups, _, err := kpi.GroupBy(subset, dim, r.policy)
		if err != nil {
			out = append(out, failedCheck(checkName, err))
			continue
		}
		sum := 0
		for _, g := range groups {
			sum += len(g)
		}
		out = append(out, compareCounts(checkName, len(subset), sum,
			fmt.Sprintf("period %s, %d groups", period, len(groups))))
	}
	return out
}

// 3 and 4. For every team, the population behind the team-performance row
// (grouping) must equal the population behind the team drill-down
// (filtering), as ID sets, and both populations must produce bit-identical
// KPI cards.
func (r *Reconciler) checkTeamDrilldowns() []checkResult {
	subset, err := r.filterAll("all")
	if err != nil {
		return []checkResult{failedCheck("team-drilldown-count", err)}
	}
	groups, keys, err := kpi.GroupBy(subset, kpi.ByTeam, r.policy)
	if err != nil {
		return []checkResult{failedCheck("team-drilldown-count", err)}
	}

	out := make([]checkResult, 0, 2*len(keys))
	for _, team := range keys {
		summaryPop := groups[team]
		drillPop, err := kpi.Filter{Team: team}.Apply(r.snapshot.Incidents, r.policy)
		if err != nil {
			out = append(out, failedCheck("team-drilldown-count", err))
			continue
		}

		out = append(out, compareSets(
			fmt.Sprintf("team-drilldown-count-%s", team),
			idSet(summaryPop), idSet(drillPop),
			fmt.Sprintf("team %q:", team)))
		out = append(out, r.compareCards(
			fmt.Sprintf("team-drilldown-metrics-%s", team), summaryPop, drillPop))
	}
	return out
}

// 5. Same pair of checks per month: the month row groups by opened month,
// the drill-down filters by the month period window. These are genuinely
// different code paths and must land on the same records.
func (r *Reconciler) checkMonthDrilldowns() []checkResult {
	subset, err := r.filterAll("all")
	if err != nil {
		return []checkResult{failedCheck("month-drilldown-count", err)}
	}
	groups, keys, err := kpi.GroupBy(subset, kpi.ByMonth, nil)
	if err != nil {
		return []checkResult{failedCheck("month-drilldown-count", err)}
	}

	out := make([]checkResult, 0, 2*len(keys))
	for _, month := range keys {
		summaryPop := groups[month]
		drillPop, err := kpi.Filter{Period: month}.Apply(r.snapshot.Incidents, r.policy)
		if err != nil {
			out = append(out, failedCheck("month-drilldown-count", err))
			continue
		}

		out = append(out, compareSets(
			fmt.Sprintf("month-drilldown-count-%s", month),
			idSet(summaryPop), idSet(drillPop),
			fmt.Sprintf("month %s:", month)))
		out = append(out, r.compareCards(
			fmt.Sprintf("month-drilldown-metrics-%s", month), summaryPop, drillPop))
	}
	return out
}

func (r *Reconciler) compareCards(name string, summaryPop, drillPop []records.Incident) checkResult {
	summary := kpi.Summarize(summaryPop, r.thresholds)
	drill := kpi.Summarize(drillPop, r.thresholds)
	res := checkResult{
		name:       name,
		consistent: summary == drill,
		expected:   summary,
		actual:     drill,
		difference: 0,
	}
	if !res.consistent {
		res.difference = "N/A"
		res.details = "summary and drill-down cards disagree"
	}
	return res
}

// 6. Region groups partition the store: every incident is in exactly one
// region bucket, so the bucket sizes must sum to the total.
func (r *Reconciler) checkRegionConsistency() checkResult {
	subset, err := r.filterAll("all")
	if err != nil {
		return failedCheck("region-consistency", err)
	}
	groups, _, err := kpi.GroupBy(subset, kpi.ByRegion, r.policy)
	if err != nil {
		return failedCheck("region-consistency", err)
	}
	sum := 0
	for _, g := range groups {
		sum += len(g)
	}
	return compareCounts("region-consistency", len(subset), sum,
		fmt.Sprintf("%d regions", len(groups)))
}

// 7. Within every period, baseline-met plus the three severity buckets
// must account for every classifiable incident. A gap would mean the
// breach chart and the compliance figure describe different worlds.
func (r *Reconciler) checkSeverityPartition() []checkResult {
	out := make([]checkResult, 0, len(namedPeriods))
	for _, period := range namedPeriods {
		checkName := fmt.Sprintf("severity-partition-%s", period)
		subset, err := r.filterAll(period)
		if err != nil {
			out = append(out, failedCheck(checkName, err))
			continue
		}
		sla := kpi.ComputeSLA(subset, r.thresholds)
		out = append(out, compareCounts(checkName,
			sla.Classifiable, sla.MetBaseline+sla.Breaches.Total(),
			fmt.Sprintf("period %s: baseline met %d, breaches %+v", period, sla.MetBaseline, sla.Breaches)))
	}
	return out
}

// 8. Per team, the FCR figure must be exactly the zero-reopen share of the
// records that carry a reopen count. Recomputing the ratio from a raw
// tally guards the function against silently changing its denominator.
func (r *Reconciler) checkFCRDenominator() []checkResult {
	subset, err := r.filterAll("all")
	if err != nil {
		return []checkResult{failedCheck("fcr-denominator", err)}
	}
	groups, keys, err := kpi.GroupBy(subset, kpi.ByTeam, r.policy)
	if err != nil {
		return []checkResult{failedCheck("fcr-denominator", err)}
	}

	out := make([]checkResult, 0, len(keys))
	for _, team := range keys {
		var present, zero int
		for _, inc := range groups[team] {
			if !inc.ReopenCount.Present {
				continue
			}
			present++
			if inc.ReopenCount.Value == 0 {
				zero++
			}
		}

		var manual kpi.Value
		if present > 0 {
			manual = kpi.Some(100 * float64(zero) / float64(present))
		}
		got := kpi.FCR(groups[team])

		res := checkResult{
			name:       fmt.Sprintf("fcr-denominator-%s", team),
			consistent: got == manual,
			expected:   manual,
			actual:     got,
			difference: 0,
			details:    fmt.Sprintf("team %q: %d of %d records carry a reopen count", team, present, len(groups[team])),
		}
		if !res.consistent {
			res.difference = "N/A"
		}
		out = append(out, res)
	}
	return out
}
