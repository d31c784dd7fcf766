package workflow

import (
	"fmt"
	"strings"
)

// Truncate cuts text to limit characters and appends a note recording the
// cut. Text within the limit is returned unchanged.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return fmt.Sprintf(
		"%s\n\n[NOTE: Contract truncated at %d characters. Full contract is %d characters.]",
		string(runes[:limit]), limit, len(runes),
	)
}

// RenderClauses formats an extraction result for the risk assessor.
func RenderClauses(e *ClauseExtractionResult) string {
	lines := []string{
		"Contract Type: " + e.ContractType,
		"Parties: " + strings.Join(e.Parties, ", "),
	}
	if e.EffectiveDate != nil && *e.EffectiveDate != "" {
		lines = append(lines, "Effective Date: "+*e.EffectiveDate)
	}

	lines = append(lines,
		fmt.Sprintf("\nExtracted Clauses (%d found):", len(e.Clauses)),
		strings.Repeat("-", 60),
	)

	for i, c := range e.Clauses {
		lines = append(lines, fmt.Sprintf(
			"\n[%d] %s — %s\n    Section: %s\n    Text: %s",
			i+1, strings.ToUpper(c.ClauseType), c.Title, c.SectionReference, c.Text,
		))
	}

	return strings.Join(lines, "\n")
}

// RenderAnalysis combines extraction and risk results for the summariser.
func RenderAnalysis(e *ClauseExtractionResult, r *RiskAssessmentResult) string {
	effective := "Not specified"
	if e.EffectiveDate != nil && *e.EffectiveDate != "" {
		effective = *e.EffectiveDate
	}

	lines := []string{
		"=== CONTRACT DETAILS ===",
		"Type: " + e.ContractType,
		"Parties: " + strings.Join(e.Parties, ", "),
		"Effective Date: " + effective,
		fmt.Sprintf("Clauses Extracted: %d", len(e.Clauses)),
		"",
		"=== RISK OVERVIEW ===",
		"Overall Risk: " + strings.ToUpper(string(r.OverallRisk)),
		"Concerns: " + r.SummaryOfConcerns,
		"",
	}

	if len(r.MissingClauses) > 0 {
		lines = append(lines, "Missing Clauses: "+strings.Join(r.MissingClauses, ", "), "")
	}

	lines = append(lines, "=== CLAUSE-BY-CLAUSE ASSESSMENT ===")
	for _, a := range r.ClauseAssessments {
		concerns := "None"
		if len(a.KeyConcerns) > 0 {
			concerns = strings.Join(a.KeyConcerns, ", ")
		}
		lines = append(lines, fmt.Sprintf(
			"\n[%s] %s (%s)\n  Reasoning: %s\n  Concerns: %s\n  Recommendation: %s",
			strings.ToUpper(string(a.RiskLevel)), a.ClauseType, a.SectionReference,
			a.RiskReasoning, concerns, a.Recommendation,
		))
	}

	return strings.Join(lines, "\n")
}
