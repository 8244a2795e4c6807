package kpi

import (
	"opsdash/internal/records"
)

// TrendSeries is the chart-ready monthly view of a subset. The slices are
// parallel: index i of each one describes the month at Keys[i].
type TrendSeries struct {
	Keys          []string `json:"keys"`
	Labels        []string `json:"labels"`
	Counts        []int    `json:"counts"`
	MTTR          []Value  `json:"mttr"`
	FCRRate       []Value  `json:"fcrRate"`
	SLACompliance []Value  `json:"slaCompliance"`
	BreachTotals  []int    `json:"breachTotals"`
}

// MonthlyTrends reduces a subset to per-month chart series. Each month's
// figures come from the same card the breakdown and drill-down endpoints
// serve for that month.
func MonthlyTrends(subset []records.Incident, t Thresholds) TrendSeries {
	groups, keys := monthGroups(subset)
	s := TrendSeries{
		Keys:          make([]string, 0, len(keys)),
		Labels:        make([]string, 0, len(keys)),
		Counts:        make([]int, 0, len(keys)),
		MTTR:          make([]Value, 0, len(keys)),
		FCRRate:       make([]Value, 0, len(keys)),
		SLACompliance: make([]Value, 0, len(keys)),
		BreachTotals:  make([]int, 0, len(keys)),
	}
	for _, k := range keys {
		card := Summarize(groups[k], t)
		s.Keys = append(s.Keys, k)
		s.Labels = append(s.Labels, MonthLabel(k))
		s.Counts = append(s.Counts, card.TotalCount)
		s.MTTR = append(s.MTTR, card.MTTR)
		s.FCRRate = append(s.FCRRate, card.FCRRate)
		s.SLACompliance = append(s.SLACompliance, card.SLACompliance)
		s.BreachTotals = append(s.BreachTotals, card.BreachCounts.Total())
	}
	return s
}
