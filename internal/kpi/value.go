package kpi

import (
	"encoding/json"
	"math"
)

// Value is a metric result that may be undefined when no record qualifies
// for the computation. Undefined values marshal as JSON null so clients can
// tell "no data" apart from a genuine zero.
type Value struct {
	Val     float64
	Defined bool
}

// Some returns a defined Value rounded to one decimal place. Rounding at
// construction keeps every path that computes the same metric bit-equal.
func Some(v float64) Value {
	return Value{Val: round1(v), Defined: true}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(v.Val)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	if err := json.Unmarshal(data, &v.Val); err != nil {
		return err
	}
	v.Defined = true
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percent returns met/total as a percentage Value, undefined when total is
// zero. Every rate in the system goes through here so they all round the
// same way.
func Percent(met, total int) Value {
	if total == 0 {
		return Value{}
	}
	return Some(100 * float64(met) / float64(total))
}
