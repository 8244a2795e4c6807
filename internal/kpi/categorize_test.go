package kpi

import (
	"testing"

	"opsdash/internal/config"
)

func TestCategorize(t *testing.T) {
	rules := config.DefaultPolicy().Categories

	cases := []struct {
		name string
		desc string
		want string
	}{
		{"hardware keyword", "Laptop will not power on", "Hardware Issues"},
		{"software keyword", "Application crashes on save", "Software Issues"},
		{"network keyword", "WiFi keeps dropping in the atrium", "Network/Connectivity"},
		{"auth keyword", "Password reset loop", "Authentication Issues"},
		{"printer keyword", "Cannot print to the 3rd floor printer", "Printer Issues"},
		{"case insensitive", "PRINTER offline", "Printer Issues"},
		{"no keyword", "Desk move request", CategoryOther},
		{"blank description", "", CategoryOther},
		{"whitespace only", "   ", CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Categorize(tc.desc, rules); got != tc.want {
				t.Errorf("Categorize(%q) = %q, want %q", tc.desc, got, tc.want)
			}
		})
	}
}

// A description hitting keywords from several rules must land in exactly
// one bucket, decided by rule order. Counting it once here and once in a
// later rule is how category totals drift away from the incident total.
func TestCategorizeFirstRuleWins(t *testing.T) {
	rules := config.DefaultPolicy().Categories

	cases := []struct {
		desc string
		want string
	}{
		{"Software update bricked the laptop", "Hardware Issues"},
		{"Printer driver software missing", "Software Issues"},
		{"Cannot login to the wifi portal", "Network/Connectivity"},
	}
	for _, tc := range cases {
		if got := Categorize(tc.desc, rules); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.desc, got, tc.want)
		}
	}
}
