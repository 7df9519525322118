package gate

import (
	"encoding/json"
	"fmt"
)

// Stage is one of the four ordered phases a project passes through.
type Stage int

const (
	StageConcept     Stage = iota // STAGE_0
	StagePlanning                 // STAGE_1
	StageFeasibility              // STAGE_2
	StageMaturation               // STAGE_3, terminal
)

var stageNames = [...]string{"STAGE_0", "STAGE_1", "STAGE_2", "STAGE_3"}

var stageLabels = [...]string{"concept", "planning", "feasibility", "maturation"}

func (s Stage) String() string {
	if s < StageConcept || s > StageMaturation {
		return fmt.Sprintf("STAGE_?(%d)", int(s))
	}
	return stageNames[s]
}

// Label is the human-readable phase name used in notifications and reports.
func (s Stage) Label() string {
	if s < StageConcept || s > StageMaturation {
		return "unknown"
	}
	return stageLabels[s]
}

// Next returns the successor stage. The last stage is its own successor.
func (s Stage) Next() Stage {
	if s >= StageMaturation {
		return StageMaturation
	}
	return s + 1
}

func (s Stage) Terminal() bool {
	return s >= StageMaturation
}

func (s Stage) Valid() bool {
	return s >= StageConcept && s <= StageMaturation
}

// Stage travels over the API as its name ("STAGE_0".."STAGE_3"), never as
// the underlying integer.
func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid stage %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStage(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStage(v string) (Stage, error) {
	for i, name := range stageNames {
		if v == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", v)
}
