package gate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageNext(t *testing.T) {
	assert.Equal(t, StagePlanning, StageConcept.Next())
	assert.Equal(t, StageFeasibility, StagePlanning.Next())
	assert.Equal(t, StageMaturation, StageFeasibility.Next())
	// the last stage is its own successor
	assert.Equal(t, StageMaturation, StageMaturation.Next())
	assert.True(t, StageMaturation.Terminal())
	assert.False(t, StageConcept.Terminal())
}

func TestStageRoundTrip(t *testing.T) {
	for _, s := range []Stage{StageConcept, StagePlanning, StageFeasibility, StageMaturation} {
		got, err := ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStage("STAGE_9")
	assert.Error(t, err)
}

func TestStageJSONUsesNames(t *testing.T) {
	type payload struct {
		Stage Stage `json:"stage"`
	}

	out, err := json.Marshal(payload{Stage: StagePlanning})
	require.NoError(t, err)
	assert.Equal(t, `{"stage":"STAGE_1"}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"stage":"STAGE_2"}`), &in))
	assert.Equal(t, StageFeasibility, in.Stage)

	assert.Error(t, json.Unmarshal([]byte(`{"stage":"STAGE_9"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"stage":2}`), &in))

	_, err = json.Marshal(payload{Stage: Stage(9)})
	assert.Error(t, err)
}

func TestStageLabels(t *testing.T) {
	assert.Equal(t, "concept", StageConcept.Label())
	assert.Equal(t, "maturation", StageMaturation.Label())
	assert.Equal(t, "unknown", Stage(7).Label())
}
