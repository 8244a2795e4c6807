package kpi

import (
	"testing"
	"time"

	"opsdash/internal/records"
)

func consultation(id string, month time.Month, complete bool, incRef, typ, issue string) records.Consultation {
	return records.Consultation{
		ID:          id,
		CreatedAt:   time.Date(2025, month, 6, 11, 0, 0, 0, time.UTC),
		Complete:    complete,
		IncidentRef: incRef,
		Type:        typ,
		Issue:       issue,
	}
}

func TestSummarizeConsultations(t *testing.T) {
	subset := []records.Consultation{
		consultation("C1", time.February, true, "INC100", "Tech Support", "password reset"),
		consultation("C2", time.February, true, "", "Tech Support", "laptop swap"),
		consultation("C3", time.March, false, "INC101", "Equipment", "monitor"),
		consultation("C4", time.March, false, "", "", "monitor"),
	}

	o := SummarizeConsultations(subset)
	if o.TotalCount != 4 || o.Completed != 2 || o.IncidentsCreated != 2 {
		t.Errorf("counts = total %d completed %d incCreated %d, want 4/2/2",
			o.TotalCount, o.Completed, o.IncidentsCreated)
	}
	if o.CompletionRate != Some(50) || o.IncidentRate != Some(50) {
		t.Errorf("rates = %+v/%+v, want 50/50", o.CompletionRate, o.IncidentRate)
	}
	if o.MissingIncident != 1 || o.MissingIncidentRate != Some(50) {
		t.Errorf("missing = %d rate %+v, want 1 and 50", o.MissingIncident, o.MissingIncidentRate)
	}

	wantTypes := []KeyCount{
		{Key: "Tech Support", Count: 2},
		{Key: "Equipment", Count: 1},
		{Key: "Unknown", Count: 1},
	}
	if len(o.TypeBreakdown) != len(wantTypes) {
		t.Fatalf("TypeBreakdown = %v, want %v", o.TypeBreakdown, wantTypes)
	}
	for i := range wantTypes {
		if o.TypeBreakdown[i] != wantTypes[i] {
			t.Fatalf("TypeBreakdown = %v, want %v", o.TypeBreakdown, wantTypes)
		}
	}
}

func TestSummarizeConsultationsEmpty(t *testing.T) {
	o := SummarizeConsultations(nil)
	if o.CompletionRate.Defined || o.IncidentRate.Defined || o.MissingIncidentRate.Defined {
		t.Errorf("rates over empty subset should be undefined, got %+v", o)
	}
}

func TestMonthlyConsultationTrends(t *testing.T) {
	subset := []records.Consultation{
		consultation("C1", time.February, true, "", "", ""),
		consultation("C2", time.February, false, "", "", ""),
		consultation("C3", time.March, false, "", "", ""),
	}

	s := MonthlyConsultationTrends(subset)
	if len(s.Keys) != 2 || s.Keys[0] != "2025-02" || s.Keys[1] != "2025-03" {
		t.Fatalf("Keys = %v", s.Keys)
	}
	if s.Counts[0] != 2 || s.Counts[1] != 1 {
		t.Errorf("Counts = %v, want [2 1]", s.Counts)
	}
	if s.Completed[0] != 1 || s.Completed[1] != 0 {
		t.Errorf("Completed = %v, want [1 0]", s.Completed)
	}
	if s.CompletionRate[0] != Some(50) || s.CompletionRate[1] != Some(0) {
		t.Errorf("CompletionRate = %v", s.CompletionRate)
	}
}

func TestIssueBreakdown(t *testing.T) {
	var subset []records.Consultation
	add := func(issue string, n int) {
		for i := 0; i < n; i++ {
			subset = append(subset, consultation("C", time.February, true, "", "", issue))
		}
	}
	add("password reset", 3)
	add("laptop swap", 2)
	add("wifi access", 1)
	add("printer setup", 1)

	rows := IssueBreakdown(subset, 2)
	want := []KeyCount{
		{Key: "password reset", Count: 3},
		{Key: "laptop swap", Count: 2},
		{Key: "Others", Count: 2},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("rows = %v, want %v", rows, want)
		}
	}

	// Under the limit nothing is rolled up.
	if rows := IssueBreakdown(subset, 10); len(rows) != 4 {
		t.Errorf("unlimited rows = %v, want 4 entries", rows)
	}
}

func TestTechnicianLookup(t *testing.T) {
	subset := []records.Consultation{
		{ID: "C1", Technician: "Dana Cruz"},
		{ID: "C2", Technician: "Lee Park"},
		{ID: "C3", Technician: "Dana Cruz"},
	}

	name, ok := KnownTechnician(subset, "dana cruz")
	if !ok || name != "Dana Cruz" {
		t.Fatalf("KnownTechnician = %q/%v, want Dana Cruz/true", name, ok)
	}
	if _, ok := KnownTechnician(subset, "nobody"); ok {
		t.Fatal("KnownTechnician matched a name not in the data")
	}

	rows := FilterTechnician(subset, "DANA CRUZ")
	if len(rows) != 2 {
		t.Fatalf("FilterTechnician matched %d, want 2", len(rows))
	}
}
