package kpi

import (
	"fmt"
	"slices"
	"strings"

	"opsdash/internal/config"
	"opsdash/internal/records"
)

const unknownKey = "Unknown"

// Filter narrows the incident population. Zero-value fields mean "all".
type Filter struct {
	Period string
	Region string
	Team   string
}

// Apply returns the incidents matching every set field. The team value is
// canonicalized with the same policy prefixes the loader applied, so a
// filter built from a dashboard label matches however the export spelled
// the assignment group.
func (f Filter) Apply(subset []records.Incident, pol *config.Policy) ([]records.Incident, error) {
	period, err := ResolvePeriod(f.Period)
	if err != nil {
		return nil, err
	}
	team := records.CanonicalTeam(f.Team, pol.TeamPrefixes)

	out := make([]records.Incident, 0, len(subset))
	for _, inc := range subset {
		if !period.Contains(inc.OpenedAt) {
			continue
		}
		if f.Region != "" && !strings.EqualFold(inc.Region, f.Region) {
			continue
		}
		// orUnknown keeps the "Unknown" breakdown row drillable: its
		// records have an empty team, not the literal bucket name.
		if team != "" && orUnknown(inc.Team) != team {
			continue
		}
		out = append(out, inc)
	}
	return out, nil
}

// KnownTeam reports whether the canonical form of team appears anywhere in
// the subset, echoing that canonical spelling. The "Unknown" bucket counts
// as known when unteamed records exist, so every breakdown row resolves.
func KnownTeam(subset []records.Incident, team string, pol *config.Policy) (string, bool) {
	canonical := records.CanonicalTeam(team, pol.TeamPrefixes)
	for _, inc := range subset {
		if orUnknown(inc.Team) == canonical {
			return canonical, true
		}
	}
	return canonical, false
}

// ConsultationFilter narrows the consultation population. Zero-value
// fields mean "all".
type ConsultationFilter struct {
	Period   string
	Region   string
	Location string
}

func (f ConsultationFilter) Apply(subset []records.Consultation) ([]records.Consultation, error) {
	period, err := ResolvePeriod(f.Period)
	if err != nil {
		return nil, err
	}

	out := make([]records.Consultation, 0, len(subset))
	for _, c := range subset {
		if !period.Contains(c.CreatedAt) {
			continue
		}
		if f.Region != "" && !strings.EqualFold(c.Region, f.Region) {
			continue
		}
		if f.Location != "" && !strings.EqualFold(c.Location, f.Location) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Dimension selects the axis a subset is grouped along.
type Dimension string

const (
	ByTeam     Dimension = "team"
	ByMonth    Dimension = "month"
	ByRegion   Dimension = "region"
	ByCategory Dimension = "category"
	ByPriority Dimension = "priority"
)

// GroupBy splits the subset along one dimension. Every incident lands in
// exactly one group, so group sizes always sum to the subset size. The key
// list fixes iteration order: months are chronological, categories follow
// the policy's rule order, everything else sorts alphabetically with the
// "Unknown" bucket last. pol is only consulted for ByCategory.
func GroupBy(subset []records.Incident, dim Dimension, pol *config.Policy) (map[string][]records.Incident, []string, error) {
	switch dim {
	case ByMonth:
		groups, keys := monthGroups(subset)
		return groups, keys, nil
	case ByTeam:
		groups := groupBy(subset, func(inc records.Incident) string { return orUnknown(inc.Team) })
		return groups, sortedKeys(groups), nil
	case ByRegion:
		groups := groupBy(subset, func(inc records.Incident) string { return orUnknown(inc.Region) })
		return groups, sortedKeys(groups), nil
	case ByPriority:
		groups := groupBy(subset, func(inc records.Incident) string { return orUnknown(inc.Priority) })
		return groups, sortedKeys(groups), nil
	case ByCategory:
		groups := groupBy(subset, func(inc records.Incident) string { return Categorize(inc.Description, pol.Categories) })
		return groups, categoryKeys(groups, pol), nil
	}
	return nil, nil, fmt.Errorf("unknown dimension %q", dim)
}

func groupBy(subset []records.Incident, keyOf func(records.Incident) string) map[string][]records.Incident {
	groups := make(map[string][]records.Incident)
	for _, inc := range subset {
		k := keyOf(inc)
		groups[k] = append(groups[k], inc)
	}
	return groups
}

// monthGroups groups by opened month. YYYY-MM keys sort lexicographically
// into chronological order.
func monthGroups(subset []records.Incident) (map[string][]records.Incident, []string) {
	groups := groupBy(subset, func(inc records.Incident) string { return MonthKey(inc.OpenedAt) })
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return groups, keys
}

func sortedKeys(groups map[string][]records.Incident) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		if k != unknownKey {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if _, ok := groups[unknownKey]; ok {
		keys = append(keys, unknownKey)
	}
	return keys
}

// categoryKeys orders category groups by the policy's rule order with the
// fallback bucket last.
func categoryKeys(groups map[string][]records.Incident, pol *config.Policy) []string {
	keys := make([]string, 0, len(groups))
	for _, rule := range pol.Categories {
		if rule.Name == CategoryOther {
			continue
		}
		if _, ok := groups[rule.Name]; ok {
			keys = append(keys, rule.Name)
		}
	}
	if _, ok := groups[CategoryOther]; ok {
		keys = append(keys, CategoryOther)
	}
	return keys
}

func orUnknown(s string) string {
	if s == "" {
		return unknownKey
	}
	return s
}
