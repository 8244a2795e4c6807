package kpi

import (
	"encoding/json"
	"testing"
)

func TestSomeRoundsToOneDecimal(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"down", 94.74, 94.7},
		{"up", 94.75, 94.8},
		{"whole stays whole", 100, 100},
		{"already one decimal", 33.3, 33.3},
		{"negative", -1.26, -1.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Some(tc.in); got.Val != tc.want || !got.Defined {
				t.Errorf("Some(%v) = %+v, want {%v true}", tc.in, got, tc.want)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	undefined, err := json.Marshal(Value{})
	if err != nil {
		t.Fatalf("marshal undefined: %v", err)
	}
	if string(undefined) != "null" {
		t.Errorf("undefined marshals as %s, want null", undefined)
	}

	defined, err := json.Marshal(Some(94.736))
	if err != nil {
		t.Fatalf("marshal defined: %v", err)
	}
	if string(defined) != "94.7" {
		t.Errorf("defined marshals as %s, want 94.7", defined)
	}

	var back Value
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if back.Defined {
		t.Errorf("null unmarshals as defined %+v", back)
	}
	if err := json.Unmarshal([]byte("94.7"), &back); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !back.Defined || back.Val != 94.7 {
		t.Errorf("number unmarshals as %+v, want {94.7 true}", back)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(90, 95); !got.Defined || got.Val != 94.7 {
		t.Errorf("Percent(90, 95) = %+v, want {94.7 true}", got)
	}
	if got := Percent(0, 10); !got.Defined || got.Val != 0 {
		t.Errorf("Percent(0, 10) = %+v, want defined 0", got)
	}
	if got := Percent(0, 0); got.Defined {
		t.Errorf("Percent(0, 0) = %+v, want undefined", got)
	}
}
