package kpi

import (
	"slices"
	"strings"

	"opsdash/internal/records"
)

// KeyCount is one row of a count rollup.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// countRows turns a tally into rows ordered by count descending, ties
// broken alphabetically so repeated calls serve identical lists.
func countRows(tally map[string]int) []KeyCount {
	rows := make([]KeyCount, 0, len(tally))
	for k, n := range tally {
		rows = append(rows, KeyCount{Key: k, Count: n})
	}
	slices.SortFunc(rows, func(a, b KeyCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Key, b.Key)
	})
	return rows
}

// RegionCounts rolls up incidents per region.
func RegionCounts(subset []records.Incident) []KeyCount {
	tally := make(map[string]int)
	for _, inc := range subset {
		tally[orUnknown(inc.Region)]++
	}
	return countRows(tally)
}

// TeamCounts rolls up incidents per canonical team.
func TeamCounts(subset []records.Incident) []KeyCount {
	tally := make(map[string]int)
	for _, inc := range subset {
		tally[orUnknown(inc.Team)]++
	}
	return countRows(tally)
}

// LocationCounts rolls up incidents per location.
func LocationCounts(subset []records.Incident) []KeyCount {
	tally := make(map[string]int)
	for _, inc := range subset {
		tally[orUnknown(inc.Location)]++
	}
	return countRows(tally)
}

// ReopenCoverage reports how many incidents of the subset carry a usable
// reopen count. The present count is exactly the FCR denominator.
func ReopenCoverage(subset []records.Incident) (present, total int) {
	for _, inc := range subset {
		if inc.ReopenCount.Present {
			present++
		}
	}
	return present, len(subset)
}

// TechnicianStat ranks one resolver.
type TechnicianStat struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	MTTR    Value  `json:"mttr"`
	FCRRate Value  `json:"fcrRate"`
}

// TechnicianStats ranks resolvers by how many incidents they closed, with
// each resolver's MTTR and FCR computed over their own incidents. Records
// without a resolver are left out.
func TechnicianStats(subset []records.Incident) []TechnicianStat {
	groups := make(map[string][]records.Incident)
	for _, inc := range subset {
		if inc.ResolvedBy == "" {
			continue
		}
		groups[inc.ResolvedBy] = append(groups[inc.ResolvedBy], inc)
	}

	out := make([]TechnicianStat, 0, len(groups))
	for name, incidents := range groups {
		out = append(out, TechnicianStat{
			Name:    name,
			Count:   len(incidents),
			MTTR:    MTTR(incidents),
			FCRRate: FCR(incidents),
		})
	}
	slices.SortFunc(out, func(a, b TechnicianStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
