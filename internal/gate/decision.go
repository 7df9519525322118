package gate

import (
	"errors"
	"fmt"
)

// Decision is a single reviewer's verdict at a gate.
type Decision string

const (
	DecisionGo      Decision = "GO"
	DecisionRecycle Decision = "RECYCLE"
	DecisionHold    Decision = "HOLD"
	DecisionStop    Decision = "STOP"
)

func ParseDecision(v string) (Decision, error) {
	switch Decision(v) {
	case DecisionGo, DecisionRecycle, DecisionHold, DecisionStop:
		return Decision(v), nil
	}
	return "", fmt.Errorf("unknown decision %q", v)
}

// ErrNoCompletedReviews is returned when aggregation is requested for a gate
// that has no completed reviews and no gatekeeper override: the gate outcome
// is indeterminate and no transition takes place.
var ErrNoCompletedReviews = errors.New("no completed reviews for stage")

// Aggregate combines the completed reviewer decisions for one gate into a
// single project-level decision.
//
// An override, when present, substitutes for the computed value (the caller
// is responsible for checking the overrider is a gatekeeper). Otherwise any
// STOP dominates; else GO wins when the GO count reaches ceil(n/2); else the
// gate recycles.
func Aggregate(completed []Decision, override *Decision) (Decision, error) {
	if override != nil {
		return *override, nil
	}
	if len(completed) == 0 {
		return "", ErrNoCompletedReviews
	}

	goCount := 0
	for _, d := range completed {
		if d == DecisionStop {
			return DecisionStop, nil
		}
		if d == DecisionGo {
			goCount++
		}
	}

	// ceil(n/2) without floats. Note this makes a 1-of-2 GO split GO-dominant.
	need := (len(completed) + 1) / 2
	if goCount >= need {
		return DecisionGo, nil
	}
	return DecisionRecycle, nil
}
