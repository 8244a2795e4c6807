package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds site-specific mappings that are data, not code: which
// prefixes to strip from assignment-group names, which groups belong to
// which region, and which description keywords map to which application
// category. Hierarchical config that is easier to manage in YAML than
// env vars.
type Policy struct {
	// TeamPrefixes are stripped from raw assignment-group names during
	// canonicalization. First match wins.
	TeamPrefixes []string `yaml:"team_prefixes"`
	// Regions maps a region name to the canonical team names it contains.
	Regions map[string][]string `yaml:"regions"`
	// Categories maps description keywords to application categories.
	// Evaluated in order; the first category with a matching keyword wins.
	Categories []CategoryRule `yaml:"categories"`
}

// CategoryRule defines one application category and its trigger keywords.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultPolicy returns the mappings used when no policy file is present.
func DefaultPolicy() *Policy {
	return &Policy{
		TeamPrefixes: []string{
			"AEDT - Enterprise Tech Spot - ",
			"ADE - Enterprise Tech Spot - ",
			"ADE - Enterprise Tech Spot 2 - ",
		},
		Regions: map[string][]string{},
		Categories: []CategoryRule{
			{Name: "Hardware Issues", Keywords: []string{"laptop", "computer"}},
			{Name: "Software Issues", Keywords: []string{"software", "application"}},
			{Name: "Network/Connectivity", Keywords: []string{"network", "wifi", "connectivity"}},
			{Name: "Authentication Issues", Keywords: []string{"password", "login", "authentication"}},
			{Name: "Printer Issues", Keywords: []string{"printer", "print"}},
		},
	}
}

// LoadPolicy loads the site policy file. A missing file is not an error;
// the compiled-in defaults are returned instead. Fields left empty in the
// file fall back to their defaults so a partial policy stays usable.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, err
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	def := DefaultPolicy()
	if len(p.TeamPrefixes) == 0 {
		p.TeamPrefixes = def.TeamPrefixes
	}
	if p.Regions == nil {
		p.Regions = def.Regions
	}
	if len(p.Categories) == 0 {
		p.Categories = def.Categories
	}

	return &p, nil
}

// RegionFor returns the region owning the given canonical team name, or
// "Unknown" when no region claims it.
func (p *Policy) RegionFor(team string) string {
	if p == nil {
		return "Unknown"
	}
	for region, teams := range p.Regions {
		for _, t := range teams {
			if t == team {
				return region
			}
		}
	}
	return "Unknown"
}
