package kpi

import (
	"opsdash/internal/records"
)

// resolutionMinutes returns the business-minute resolution time for an
// incident, or false when the incident is unresolved or its interval is
// invalid. MTTR and SLA classification share this so they always agree on
// which incidents are in the resolvable population.
func resolutionMinutes(inc records.Incident) (int, bool) {
	if inc.ResolvedAt == nil {
		return 0, false
	}
	mins, err := BusinessMinutes(inc.OpenedAt, *inc.ResolvedAt)
	if err != nil {
		return 0, false
	}
	return mins, true
}

// MTTR returns the mean business-minute resolution time over the resolvable
// incidents of the subset. Unresolved incidents and invalid intervals are
// excluded from numerator and denominator both; with no resolvable incident
// the result is undefined.
func MTTR(subset []records.Incident) Value {
	var sum, n int
	for _, inc := range subset {
		mins, ok := resolutionMinutes(inc)
		if !ok {
			continue
		}
		sum += mins
		n++
	}
	if n == 0 {
		return Value{}
	}
	return Some(float64(sum) / float64(n))
}

// FCR returns the first-contact resolution rate: the share of incidents
// whose recorded reopen count is zero. Incidents without a recorded count
// are excluded from both sides of the ratio; with no recorded count at all
// the result is undefined.
func FCR(subset []records.Incident) Value {
	var met, total int
	for _, inc := range subset {
		if !inc.ReopenCount.Present {
			continue
		}
		total++
		if inc.ReopenCount.Value == 0 {
			met++
		}
	}
	return Percent(met, total)
}

// BreachCounts buckets baseline breaches by severity.
type BreachCounts struct {
	Critical int `json:"critical"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

func (b BreachCounts) Total() int {
	return b.Critical + b.Moderate + b.Minor
}

// SLAFigures is the full SLA classification of one subset.
type SLAFigures struct {
	Classifiable   int          `json:"classifiable"`
	MetGoal        int          `json:"metGoal"`
	MetBaseline    int          `json:"metBaseline"`
	Compliance     Value        `json:"compliance"`
	GoalCompliance Value        `json:"goalCompliance"`
	Breaches       BreachCounts `json:"breaches"`
}

// ComputeSLA classifies every resolvable incident of the subset against the
// thresholds. Compliance rates are undefined when nothing is classifiable.
// MetBaseline plus the three breach buckets always sums to Classifiable.
func ComputeSLA(subset []records.Incident, t Thresholds) SLAFigures {
	var f SLAFigures
	for _, inc := range subset {
		mins, ok := resolutionMinutes(inc)
		if !ok {
			continue
		}
		f.Classifiable++
		o := t.Classify(mins)
		if o.MetGoal {
			f.MetGoal++
		}
		if o.MetBaseline {
			f.MetBaseline++
			continue
		}
		switch o.Severity {
		case SeverityMinor:
			f.Breaches.Minor++
		case SeverityModerate:
			f.Breaches.Moderate++
		case SeverityCritical:
			f.Breaches.Critical++
		}
	}
	f.Compliance = Percent(f.MetBaseline, f.Classifiable)
	f.GoalCompliance = Percent(f.MetGoal, f.Classifiable)
	return f
}
