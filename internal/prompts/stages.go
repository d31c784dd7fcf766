package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies the pipeline step a prompt belongs to.
type Stage string

// Pipeline stages that carry a system prompt.
const (
	StageParse     Stage = "parse"
	StageExtract   Stage = "extract"
	StageAssess    Stage = "assess"
	StageSummarise Stage = "summarise"
)

var stages = []Stage{
	StageParse,
	StageExtract,
	StageAssess,
	StageSummarise,
}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
