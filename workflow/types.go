package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Step names the pipeline stage a run is in. Routing is a function of Step
// alone.
type Step string

// Pipeline steps.
const (
	StepParse      Step = "parse"
	StepExtract    Step = "extract"
	StepAssessRisk Step = "assess_risk"
	StepSummarise  Step = "summarise"
	StepComplete   Step = "complete"
	StepError      Step = "error"
)

// RiskLevel grades a clause or a whole contract.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var riskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ErrInvalidRiskLevel is returned when a decoded risk level is outside
// low, medium, and high.
var ErrInvalidRiskLevel = errors.New("risk level must be low, medium, or high")

// UnmarshalJSON validates that the decoded string is a known risk level.
// Case is normalised.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v := RiskLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(riskLevels, v) {
		return fmt.Errorf("%w: %q", ErrInvalidRiskLevel, raw)
	}
	*r = v
	return nil
}

// DocumentMetadata is informational output of the parse step.
type DocumentMetadata struct {
	Filename       string `json:"filename"`
	Extension      string `json:"extension"`
	PageCount      int    `json:"page_count,omitempty"`
	Method         string `json:"method,omitempty"`
	CharCount      int    `json:"char_count"`
	ParserAnalysis string `json:"parser_analysis,omitempty"`
}

// ExtractedClause is a single clause identified in a contract. ClauseType is
// an open tag.
type ExtractedClause struct {
	ClauseType       string `json:"clause_type"`
	Title            string `json:"title"`
	Text             string `json:"text"`
	SectionReference string `json:"section_reference"`
}

// ClauseExtractionResult is the structured output of the extract step.
type ClauseExtractionResult struct {
	Clauses       []ExtractedClause `json:"clauses"`
	ContractType  string            `json:"contract_type"`
	Parties       []string          `json:"parties"`
	EffectiveDate *string           `json:"effective_date,omitempty"`
}

// Validate implements generation.Validator.
func (r *ClauseExtractionResult) Validate() error {
	if strings.TrimSpace(r.ContractType) == "" {
		return errors.New("contract_type is required")
	}
	for i, c := range r.Clauses {
		if strings.TrimSpace(c.ClauseType) == "" {
			return fmt.Errorf("clauses[%d]: clause_type is required", i)
		}
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("clauses[%d]: text is required", i)
		}
	}
	if r.Clauses == nil {
		r.Clauses = []ExtractedClause{}
	}
	if r.Parties == nil {
		r.Parties = []string{}
	}
	if r.EffectiveDate != nil && strings.TrimSpace(*r.EffectiveDate) == "" {
		r.EffectiveDate = nil
	}
	return nil
}

// ClauseRiskAssessment grades one extracted clause.
type ClauseRiskAssessment struct {
	ClauseType       string    `json:"clause_type"`
	SectionReference string    `json:"section_reference"`
	RiskLevel        RiskLevel `json:"risk_level"`
	RiskReasoning    string    `json:"risk_reasoning"`
	KeyConcerns      []string  `json:"key_concerns"`
	Recommendation   string    `json:"recommendation"`
}

// RiskAssessmentResult is the structured output of the assess-risk step.
type RiskAssessmentResult struct {
	OverallRisk       RiskLevel              `json:"overall_risk"`
	ClauseAssessments []ClauseRiskAssessment `json:"clause_assessments"`
	MissingClauses    []string               `json:"missing_clauses"`
	SummaryOfConcerns string                 `json:"summary_of_concerns"`
}

// Validate implements generation.Validator. Risk levels are checked during
// decoding; Validate catches levels that were absent from the reply.
func (r *RiskAssessmentResult) Validate() error {
	if r.OverallRisk == "" {
		return errors.New("overall_risk is required")
	}
	for i := range r.ClauseAssessments {
		a := &r.ClauseAssessments[i]
		if a.RiskLevel == "" {
			return fmt.Errorf("clause_assessments[%d]: risk_level is required", i)
		}
		if a.KeyConcerns == nil {
			a.KeyConcerns = []string{}
		}
	}
	if r.ClauseAssessments == nil {
		r.ClauseAssessments = []ClauseRiskAssessment{}
	}
	if r.MissingClauses == nil {
		r.MissingClauses = []string{}
	}
	return nil
}
