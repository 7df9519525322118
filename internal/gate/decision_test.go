package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decisions(vs ...Decision) []Decision { return vs }

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		completed []Decision
		want      Decision
	}{
		{"single GO satisfies ceil(1/2)", decisions(DecisionGo), DecisionGo},
		{"STOP dominates any GO count", decisions(DecisionGo, DecisionGo, DecisionStop), DecisionStop},
		{"unanimous GO", decisions(DecisionGo, DecisionGo, DecisionGo), DecisionGo},
		{"1 of 2 GO still passes (ceil(2/2)=1)", decisions(DecisionGo, DecisionRecycle), DecisionGo},
		{"1 of 3 GO recycles (ceil(3/2)=2)", decisions(DecisionGo, DecisionRecycle, DecisionRecycle), DecisionRecycle},
		{"2 of 3 GO passes", decisions(DecisionGo, DecisionGo, DecisionHold), DecisionGo},
		{"no GO at all recycles", decisions(DecisionRecycle, DecisionHold), DecisionRecycle},
		{"single STOP", decisions(DecisionStop), DecisionStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.completed, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateIndeterminate(t *testing.T) {
	_, err := Aggregate(nil, nil)
	assert.ErrorIs(t, err, ErrNoCompletedReviews)
}

func TestAggregateOverride(t *testing.T) {
	hold := DecisionHold
	// override substitutes for the computed value
	got, err := Aggregate(decisions(DecisionGo, DecisionGo), &hold)
	require.NoError(t, err)
	assert.Equal(t, DecisionHold, got)

	// an override alone resolves an otherwise indeterminate gate
	stop := DecisionStop
	got, err = Aggregate(nil, &stop)
	require.NoError(t, err)
	assert.Equal(t, DecisionStop, got)
}

func TestApplyOutcome(t *testing.T) {
	out := ApplyOutcome(StageConcept, StatusActive, DecisionGo)
	assert.Equal(t, StagePlanning, out.Stage)
	assert.Equal(t, StatusActive, out.Status)
	assert.True(t, out.Advanced)
	require.Len(t, out.Effects, 1)
	assert.Equal(t, "gate_passed", out.Effects[0].Action)

	// GO at the terminal stage does not advance
	out = ApplyOutcome(StageMaturation, StatusActive, DecisionGo)
	assert.Equal(t, StageMaturation, out.Stage)
	assert.False(t, out.Advanced)

	// a GO resumes a project that was on hold
	out = ApplyOutcome(StagePlanning, StatusOnHold, DecisionGo)
	assert.Equal(t, StatusActive, out.Status)

	out = ApplyOutcome(StagePlanning, StatusActive, DecisionStop)
	assert.Equal(t, StagePlanning, out.Stage)
	assert.Equal(t, StatusTerminated, out.Status)

	out = ApplyOutcome(StagePlanning, StatusActive, DecisionHold)
	assert.Equal(t, StatusOnHold, out.Status)

	out = ApplyOutcome(StagePlanning, StatusActive, DecisionRecycle)
	assert.Equal(t, StagePlanning, out.Stage)
	assert.Equal(t, StatusActive, out.Status)
	assert.False(t, out.Advanced)
}
