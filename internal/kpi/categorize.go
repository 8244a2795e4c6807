package kpi

import (
	"strings"

	"opsdash/internal/config"
)

// CategoryOther is the fallback bucket for descriptions matching no rule.
const CategoryOther = "Other Issues"

// Categorize assigns a description to the first policy rule containing one
// of its keywords. Rule order decides ties: a "laptop software crash"
// ticket lands in whichever rule is listed first, and only there. Scanning
// in one fixed order is what keeps summary and drill-down category counts
// additive instead of double-counting multi-keyword tickets.
func Categorize(description string, rules []config.CategoryRule) string {
	d := strings.ToLower(strings.TrimSpace(description))
	if d == "" {
		return CategoryOther
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(d, strings.ToLower(kw)) {
				return rule.Name
			}
		}
	}
	return CategoryOther
}
