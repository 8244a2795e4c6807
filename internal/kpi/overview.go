package kpi

import (
	"slices"
	"strings"
	"time"

	"opsdash/internal/config"
	"opsdash/internal/records"
)

// SubsetQuality tallies the records of one subset that drop out of at
// least one metric. The counts are independent: an unresolved incident
// with no reopen count appears in two tallies.
type SubsetQuality struct {
	Unresolved       int `json:"unresolved"`
	InvalidIntervals int `json:"invalidIntervals"`
	MissingReopen    int `json:"missingReopen"`
}

// Overview is the KPI card for one subset of incidents. Rates with no
// qualifying records marshal as null, never as a fake zero.
type Overview struct {
	TotalCount        int           `json:"totalCount"`
	MTTR              Value         `json:"mttr"`
	FCRRate           Value         `json:"fcrRate"`
	SLACompliance     Value         `json:"slaCompliance"`
	SLAGoalCompliance Value         `json:"slaGoalCompliance"`
	BreachCounts      BreachCounts  `json:"breachCounts"`
	MajorIncidents    int           `json:"majorIncidents"`
	KBUsageRate       Value         `json:"kbUsageRate"`
	Anomalies         SubsetQuality `json:"anomalies"`
}

// Summarize computes the full KPI card for a subset. Summary views and
// drill-down views both go through here, which is what the reconciler
// banks on.
func Summarize(subset []records.Incident, t Thresholds) Overview {
	sla := ComputeSLA(subset, t)
	o := Overview{
		TotalCount:        len(subset),
		MTTR:              MTTR(subset),
		FCRRate:           FCR(subset),
		SLACompliance:     sla.Compliance,
		SLAGoalCompliance: sla.GoalCompliance,
		BreachCounts:      sla.Breaches,
	}

	var kbUsed int
	for _, inc := range subset {
		if inc.MajorIncident {
			o.MajorIncidents++
		}
		if inc.UsedKB() {
			kbUsed++
		}
		if inc.ResolvedAt == nil {
			o.Anomalies.Unresolved++
		} else if _, ok := resolutionMinutes(inc); !ok {
			o.Anomalies.InvalidIntervals++
		}
		if !inc.ReopenCount.Present {
			o.Anomalies.MissingReopen++
		}
	}
	o.KBUsageRate = Percent(kbUsed, len(subset))
	return o
}

// GroupOverview is one breakdown row: a group key, its chart label, and
// the group's card flattened alongside.
type GroupOverview struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Overview
}

// Breakdown computes one card per group along the dimension. Because
// grouping partitions the subset, the rows' totals sum to the subset
// total.
func Breakdown(subset []records.Incident, dim Dimension, t Thresholds, pol *config.Policy) ([]GroupOverview, error) {
	groups, keys, err := GroupBy(subset, dim, pol)
	if err != nil {
		return nil, err
	}
	out := make([]GroupOverview, 0, len(keys))
	for _, k := range keys {
		label := k
		if dim == ByMonth {
			label = MonthLabel(k)
		}
		out = append(out, GroupOverview{Key: k, Label: label, Overview: Summarize(groups[k], t)})
	}
	return out, nil
}

// SampleRecord is one drill-down row shaped for the UI modal.
type SampleRecord struct {
	Number          string `json:"number"`
	OpenedAt        string `json:"openedAt"`
	ResolvedAt      string `json:"resolvedAt,omitempty"`
	Team            string `json:"team"`
	Region          string `json:"region"`
	Priority        string `json:"priority"`
	BusinessMinutes *int   `json:"businessMinutes"`
	SLAStatus       string `json:"slaStatus"`
	KnowledgeUsed   bool   `json:"knowledgeUsed"`
	Description     string `json:"description,omitempty"`
}

// DrillDownView pairs a card with representative records. Records carries
// at most the requested sample; TotalCount still reports the whole subset.
type DrillDownView struct {
	Overview
	Records []SampleRecord `json:"records"`
}

// DrillDown builds the modal view for a subset: the same card Summarize
// produces plus up to sampleLimit rows, slowest resolutions first, with
// unresolvable records at the end. Order is stable for equal minutes so
// repeated calls paginate identically.
func DrillDown(subset []records.Incident, t Thresholds, sampleLimit int) DrillDownView {
	view := DrillDownView{
		Overview: Summarize(subset, t),
		Records:  make([]SampleRecord, 0, len(subset)),
	}
	for _, inc := range subset {
		view.Records = append(view.Records, sampleRecord(inc, t))
	}

	slices.SortStableFunc(view.Records, func(a, b SampleRecord) int {
		am, bm := -1, -1
		if a.BusinessMinutes != nil {
			am = *a.BusinessMinutes
		}
		if b.BusinessMinutes != nil {
			bm = *b.BusinessMinutes
		}
		if am != bm {
			return bm - am
		}
		return strings.Compare(a.Number, b.Number)
	})

	if sampleLimit > 0 && len(view.Records) > sampleLimit {
		view.Records = view.Records[:sampleLimit]
	}
	return view
}

func sampleRecord(inc records.Incident, t Thresholds) SampleRecord {
	r := SampleRecord{
		Number:        inc.Number,
		OpenedAt:      inc.OpenedAt.Format(time.RFC3339),
		Team:          orUnknown(inc.Team),
		Region:        inc.Region,
		Priority:      inc.Priority,
		KnowledgeUsed: inc.UsedKB(),
		Description:   inc.Description,
	}
	if inc.ResolvedAt != nil {
		r.ResolvedAt = inc.ResolvedAt.Format(time.RFC3339)
	}

	mins, ok := resolutionMinutes(inc)
	if !ok {
		if inc.ResolvedAt == nil {
			r.SLAStatus = "unresolved"
		} else {
			r.SLAStatus = "invalid_interval"
		}
		return r
	}
	r.BusinessMinutes = &mins

	o := t.Classify(mins)
	switch {
	case o.MetGoal:
		r.SLAStatus = "met_goal"
	case o.MetBaseline:
		r.SLAStatus = "met_baseline"
	default:
		r.SLAStatus = "breached_" + string(o.Severity)
	}
	return r
}
