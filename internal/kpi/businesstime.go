// Package kpi computes the dashboard's metrics: business-time MTTR, FCR
// rate, and SLA compliance, over filtered subsets of the record store.
// Every function here is pure; summary views and drill-down views call the
// same functions, which is what keeps them reconcilable.
package kpi

import (
	"errors"
	"time"
)

// ErrInvalidInterval marks an interval whose end precedes its start. It is
// a data-quality signal, never silently mapped to zero.
var ErrInvalidInterval = errors.New("interval ends before it starts")

// BusinessMinutes returns the elapsed minutes of [start, end) that fall on
// Monday through Friday. The calendar counts whole Mon-Fri days; weekends
// contribute nothing regardless of where they fall inside the interval.
// Both boundary days count their weekday portion in full: Friday 16:00 to
// Monday 10:00 yields 480 Friday minutes plus 600 Monday minutes.
// Evaluation is in UTC; holidays are not modeled.
func BusinessMinutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidInterval
	}

	start = start.UTC()
	end = end.UTC()

	var total time.Duration
	cursor := start
	for cursor.Before(end) {
		dayEnd := midnightAfter(cursor)
		if dayEnd.After(end) {
			dayEnd = end
		}
		if isWeekday(cursor.Weekday()) {
			total += dayEnd.Sub(cursor)
		}
		cursor = midnightAfter(cursor)
	}

	return int(total / time.Minute), nil
}

func isWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// midnightAfter returns the first midnight strictly after t.
func midnightAfter(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return next.AddDate(0, 0, 1)
}
