package kpi

import (
	"slices"
	"strings"

	"opsdash/internal/records"
)

// ConsultationOverview is the KPI card for one subset of consultations.
type ConsultationOverview struct {
	TotalCount          int        `json:"totalCount"`
	Completed           int        `json:"completed"`
	CompletionRate      Value      `json:"completionRate"`
	IncidentsCreated    int        `json:"incidentsCreated"`
	IncidentRate        Value      `json:"incidentRate"`
	MissingIncident     int        `json:"missingIncident"`
	MissingIncidentRate Value      `json:"missingIncidentRate"`
	TypeBreakdown       []KeyCount `json:"typeBreakdown"`
}

// SummarizeConsultations computes the consultation card. IncidentRate is
// the share of consultations that escalated into an incident ticket;
// MissingIncident counts completed consultations with no ticket reference,
// the documentation gap the overview flags. Its rate is over completed
// consultations only.
func SummarizeConsultations(subset []records.Consultation) ConsultationOverview {
	o := ConsultationOverview{TotalCount: len(subset)}
	types := make(map[string]int)
	for _, c := range subset {
		types[orUnknown(c.Type)]++
		if c.IncidentRef != "" {
			o.IncidentsCreated++
		}
		if c.Complete {
			o.Completed++
			if c.IncidentRef == "" {
				o.MissingIncident++
			}
		}
	}
	o.CompletionRate = Percent(o.Completed, o.TotalCount)
	o.IncidentRate = Percent(o.IncidentsCreated, o.TotalCount)
	o.MissingIncidentRate = Percent(o.MissingIncident, o.Completed)
	o.TypeBreakdown = countRows(types)
	return o
}

// ConsultationTrendSeries is the monthly consultation view, slices
// parallel by month key.
type ConsultationTrendSeries struct {
	Keys           []string `json:"keys"`
	Labels         []string `json:"labels"`
	Counts         []int    `json:"counts"`
	Completed      []int    `json:"completed"`
	CompletionRate []Value  `json:"completionRate"`
}

// MonthlyConsultationTrends reduces a consultation subset to per-month
// volume and completion series.
func MonthlyConsultationTrends(subset []records.Consultation) ConsultationTrendSeries {
	groups := make(map[string][]records.Consultation)
	for _, c := range subset {
		k := MonthKey(c.CreatedAt)
		groups[k] = append(groups[k], c)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	s := ConsultationTrendSeries{
		Keys:           make([]string, 0, len(keys)),
		Labels:         make([]string, 0, len(keys)),
		Counts:         make([]int, 0, len(keys)),
		Completed:      make([]int, 0, len(keys)),
		CompletionRate: make([]Value, 0, len(keys)),
	}
	for _, k := range keys {
		var done int
		for _, c := range groups[k] {
			if c.Complete {
				done++
			}
		}
		s.Keys = append(s.Keys, k)
		s.Labels = append(s.Labels, MonthLabel(k))
		s.Counts = append(s.Counts, len(groups[k]))
		s.Completed = append(s.Completed, done)
		s.CompletionRate = append(s.CompletionRate, Percent(done, len(groups[k])))
	}
	return s
}

// IssueBreakdown returns the top issues by count with the remainder rolled
// into an "Others" row.
func IssueBreakdown(subset []records.Consultation, limit int) []KeyCount {
	tally := make(map[string]int)
	for _, c := range subset {
		tally[orUnknown(c.Issue)]++
	}
	rows := countRows(tally)
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	var rest int
	for _, r := range rows[limit:] {
		rest += r.Count
	}
	return append(rows[:limit:limit], KeyCount{Key: "Others", Count: rest})
}

// ConsultationLocationCounts rolls up consultations per location.
func ConsultationLocationCounts(subset []records.Consultation) []KeyCount {
	tally := make(map[string]int)
	for _, c := range subset {
		tally[orUnknown(c.Location)]++
	}
	return countRows(tally)
}

// ConsultationRegionCounts rolls up consultations per region.
func ConsultationRegionCounts(subset []records.Consultation) []KeyCount {
	tally := make(map[string]int)
	for _, c := range subset {
		tally[orUnknown(c.Region)]++
	}
	return countRows(tally)
}

// FilterTechnician keeps the consultations handled by one technician,
// matched case-insensitively.
func FilterTechnician(subset []records.Consultation, technician string) []records.Consultation {
	out := make([]records.Consultation, 0)
	for _, c := range subset {
		if strings.EqualFold(c.Technician, technician) {
			out = append(out, c)
		}
	}
	return out
}

// KnownTechnician reports whether any consultation names the technician,
// and echoes the canonical spelling from the data.
func KnownTechnician(all []records.Consultation, technician string) (string, bool) {
	for _, c := range all {
		if strings.EqualFold(c.Technician, technician) {
			return c.Technician, true
		}
	}
	return "", false
}
