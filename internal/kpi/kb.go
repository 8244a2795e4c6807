package kpi

import (
	"opsdash/internal/config"
	"opsdash/internal/records"
)

// KBArticle is one knowledge article's usage row.
type KBArticle struct {
	ID       string `json:"id"`
	Count    int    `json:"count"`
	Share    Value  `json:"share"`
	Category string `json:"category"`
}

// KBMonthly is knowledge usage within one month of the subset. Rate is
// used over the month's full incident count, not just the covered ones.
type KBMonthly struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Used  int    `json:"used"`
	Total int    `json:"total"`
	Rate  Value  `json:"rate"`
}

// KBView is the knowledge-usage report for a subset.
type KBView struct {
	TotalIncidents  int         `json:"totalIncidents"`
	Covered         int         `json:"covered"`
	CoverageRate    Value       `json:"coverageRate"`
	UniqueArticles  int         `json:"uniqueArticles"`
	TopArticles     []KBArticle `json:"topArticles"`
	Monthly         []KBMonthly `json:"monthly"`
	ResolutionTypes []KeyCount  `json:"resolutionTypes"`
}

// KBTrending reports which knowledge articles the subset leaned on: the
// top articles by reference count, coverage over the whole subset, the
// monthly usage rate, and which resolution types the covered incidents
// closed with. Each article is labeled with the dominant category of its
// incidents so the chart shows what the article is actually used for.
func KBTrending(subset []records.Incident, pol *config.Policy, topLimit int) KBView {
	v := KBView{
		TotalIncidents:  len(subset),
		TopArticles:     make([]KBArticle, 0),
		Monthly:         make([]KBMonthly, 0),
		ResolutionTypes: make([]KeyCount, 0),
	}

	byArticle := make(map[string][]records.Incident)
	resTypes := make(map[string]int)
	for _, inc := range subset {
		if !inc.UsedKB() {
			continue
		}
		v.Covered++
		byArticle[inc.KnowledgeID] = append(byArticle[inc.KnowledgeID], inc)
		if inc.ResolutionType != "" {
			resTypes[inc.ResolutionType]++
		}
	}
	v.CoverageRate = Percent(v.Covered, v.TotalIncidents)
	v.UniqueArticles = len(byArticle)

	counts := make(map[string]int, len(byArticle))
	for id, incidents := range byArticle {
		counts[id] = len(incidents)
	}
	for _, row := range countRows(counts) {
		if topLimit > 0 && len(v.TopArticles) >= topLimit {
			break
		}
		v.TopArticles = append(v.TopArticles, KBArticle{
			ID:       row.Key,
			Count:    row.Count,
			Share:    Percent(row.Count, v.TotalIncidents),
			Category: dominantCategory(byArticle[row.Key], pol),
		})
	}

	groups, keys := monthGroups(subset)
	for _, k := range keys {
		var used int
		for _, inc := range groups[k] {
			if inc.UsedKB() {
				used++
			}
		}
		v.Monthly = append(v.Monthly, KBMonthly{
			Key:   k,
			Label: MonthLabel(k),
			Used:  used,
			Total: len(groups[k]),
			Rate:  Percent(used, len(groups[k])),
		})
	}

	if topLimit > 0 {
		rt := countRows(resTypes)
		if len(rt) > topLimit {
			rt = rt[:topLimit]
		}
		v.ResolutionTypes = rt
	} else {
		v.ResolutionTypes = countRows(resTypes)
	}
	return v
}

// dominantCategory returns the category most of the incidents fall into,
// with ties resolved by the policy's rule order.
func dominantCategory(incidents []records.Incident, pol *config.Policy) string {
	tally := make(map[string]int)
	for _, inc := range incidents {
		tally[Categorize(inc.Description, pol.Categories)]++
	}
	best, bestN := CategoryOther, 0
	for _, rule := range pol.Categories {
		if n := tally[rule.Name]; n > bestN {
			best, bestN = rule.Name, n
		}
	}
	if tally[CategoryOther] > bestN {
		best = CategoryOther
	}
	return best
}
