package workflow

import (
	"maps"
	"slices"

	"github.com/JaimeStill/counsel/internal/generation"
)

// State is the value threaded through every node of a run. Nodes receive a
// deep copy and never mutate it; changes flow back as a Patch.
type State struct {
	InputPath    string                  `json:"input_path"`
	Messages     []generation.Message    `json:"message_log,omitempty"`
	ParsedText   string                  `json:"parsed_text,omitempty"`
	Metadata     *DocumentMetadata       `json:"document_metadata,omitempty"`
	Extraction   *ClauseExtractionResult `json:"extraction_result,omitempty"`
	Risk         *RiskAssessmentResult   `json:"risk_result,omitempty"`
	Summary      string                  `json:"executive_summary,omitempty"`
	Step         Step                    `json:"current_step"`
	ErrorMessage string                  `json:"error_message,omitempty"`
}

// NewState returns the initial state for analysing the file at path.
func NewState(path string) State {
	return State{InputPath: path, Step: StepParse}
}

// Completed reports whether the run finished successfully.
func (s State) Completed() bool {
	return s.Step == StepComplete
}

// Failed reports whether the run ended in the error terminal.
func (s State) Failed() bool {
	return s.Step == StepError
}

// Patch is the partial update a node returns. Nil fields and an empty Step
// leave the state unchanged; Messages are appended.
type Patch struct {
	Messages     []generation.Message
	ParsedText   *string
	Metadata     *DocumentMetadata
	Extraction   *ClauseExtractionResult
	Risk         *RiskAssessmentResult
	Summary      *string
	Step         Step
	ErrorMessage *string
}

// Fail builds the patch that routes a run to the error terminal.
func Fail(prefix string, err error) Patch {
	msg := prefix + err.Error()
	return Patch{Step: StepError, ErrorMessage: &msg}
}

// Merge applies p to s. ErrorMessage is cleared whenever the resulting step
// is not the error step.
func Merge(s State, p Patch) State {
	if len(p.Messages) > 0 {
		s.Messages = append(slices.Clip(s.Messages), p.Messages...)
	}
	if p.ParsedText != nil {
		s.ParsedText = *p.ParsedText
	}
	if p.Metadata != nil {
		s.Metadata = p.Metadata
	}
	if p.Extraction != nil {
		s.Extraction = p.Extraction
	}
	if p.Risk != nil {
		s.Risk = p.Risk
	}
	if p.Summary != nil {
		s.Summary = *p.Summary
	}
	if p.Step != "" {
		s.Step = p.Step
	}
	if p.ErrorMessage != nil {
		s.ErrorMessage = *p.ErrorMessage
	}
	if s.Step != StepError {
		s.ErrorMessage = ""
	}
	return s
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Messages = cloneMessages(s.Messages)

	if s.Metadata != nil {
		m := *s.Metadata
		s.Metadata = &m
	}

	if s.Extraction != nil {
		e := *s.Extraction
		e.Clauses = slices.Clone(e.Clauses)
		e.Parties = slices.Clone(e.Parties)
		if e.EffectiveDate != nil {
			d := *e.EffectiveDate
			e.EffectiveDate = &d
		}
		s.Extraction = &e
	}

	if s.Risk != nil {
		r := *s.Risk
		r.ClauseAssessments = slices.Clone(r.ClauseAssessments)
		for i := range r.ClauseAssessments {
			r.ClauseAssessments[i].KeyConcerns = slices.Clone(r.ClauseAssessments[i].KeyConcerns)
		}
		r.MissingClauses = slices.Clone(r.MissingClauses)
		s.Risk = &r
	}

	return s
}

func cloneMessages(messages []generation.Message) []generation.Message {
	if messages == nil {
		return nil
	}
	out := slices.Clone(messages)
	for i := range out {
		if out[i].ToolCalls == nil {
			continue
		}
		out[i].ToolCalls = slices.Clone(out[i].ToolCalls)
		for j := range out[i].ToolCalls {
			out[i].ToolCalls[j].Arguments = maps.Clone(out[i].ToolCalls[j].Arguments)
		}
	}
	return out
}
