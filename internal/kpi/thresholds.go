package kpi

import (
	"errors"
	"fmt"
)

// Thresholds holds the two SLA targets in business minutes. The goal is the
// stretch target, the baseline is the contractual one; every incident that
// meets the goal also meets the baseline.
type Thresholds struct {
	GoalMinutes     int
	BaselineMinutes int
}

func (t Thresholds) Validate() error {
	if t.GoalMinutes <= 0 || t.BaselineMinutes <= 0 {
		return errors.New("sla thresholds must be positive")
	}
	if t.GoalMinutes > t.BaselineMinutes {
		return fmt.Errorf("sla goal %dm exceeds baseline %dm", t.GoalMinutes, t.BaselineMinutes)
	}
	return nil
}

// Severity grades a baseline breach by how far past the baseline the
// resolution landed. Incidents within the baseline carry no severity.
type Severity string

const (
	SeverityMinor    Severity = "minor"    // up to 1h over
	SeverityModerate Severity = "moderate" // over 1h, up to 3h over
	SeverityCritical Severity = "critical" // more than 3h over
)

// Outcome classifies one resolution time against the thresholds.
type Outcome struct {
	MetGoal     bool
	MetBaseline bool
	Severity    Severity // empty unless the baseline was missed
	Overage     int      // business minutes past the baseline, 0 when met
}

// Classify grades a business-minute resolution time. The three severity
// bands partition every overage: (0, 60] minor, (60, 180] moderate, and
// above 180 critical, so no breach can fall between bands.
func (t Thresholds) Classify(minutes int) Outcome {
	o := Outcome{
		MetGoal:     minutes <= t.GoalMinutes,
		MetBaseline: minutes <= t.BaselineMinutes,
	}
	if o.MetBaseline {
		return o
	}
	o.Overage = minutes - t.BaselineMinutes
	switch {
	case o.Overage <= 60:
		o.Severity = SeverityMinor
	case o.Overage <= 180:
		o.Severity = SeverityModerate
	default:
		o.Severity = SeverityCritical
	}
	return o
}
