package kpi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a half-open UTC window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// ErrUnknownPeriod flags a period name the resolver does not recognize.
var ErrUnknownPeriod = errors.New("unknown period")

// Fiscal-year 2026 windows. The reporting year covers February through
// June 2025.
var (
	fyStart = time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	q2Start = time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	fyEnd   = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
)

// ResolvePeriod maps a period name to its window. Recognized names are
// "q1", "q2", "all" (or empty), and single months as "YYYY-MM"; anything
// else is ErrUnknownPeriod. Every filter path resolves names here, so no
// two views can disagree about what a quarter spans.
func ResolvePeriod(name string) (Period, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "all":
		return Period{Start: fyStart, End: fyEnd}, nil
	case "q1":
		return Period{Start: fyStart, End: q2Start}, nil
	case "q2":
		return Period{Start: q2Start, End: fyEnd}, nil
	}
	if t, err := time.Parse("2006-01", n); err == nil {
		return Period{Start: t, End: t.AddDate(0, 1, 0)}, nil
	}
	return Period{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// MonthKey returns the grouping key for a timestamp's month.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthLabel renders a month key for charts, e.g. "Feb 2025".
func MonthLabel(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}
