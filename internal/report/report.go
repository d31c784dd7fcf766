// Package report renders finished pipeline runs for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JaimeStill/counsel/workflow"
)

const (
	heavyRule = "============================================================"
	lightRule = "────────────────────────────────────────"

	previewRunes = 200
)

var riskMarkers = map[workflow.RiskLevel]string{
	workflow.RiskLow:    "🟢",
	workflow.RiskMedium: "🟡",
	workflow.RiskHigh:   "🔴",
}

// Text writes the human-readable analysis report. A failed run prints only
// the failure banner and error message.
func Text(w io.Writer, s workflow.State) error {
	var b strings.Builder

	if s.Failed() {
		fmt.Fprintf(&b, "\n%s\nANALYSIS FAILED\n%s\n", heavyRule, heavyRule)
		fmt.Fprintf(&b, "Error: %s\n", orDefault(s.ErrorMessage, workflow.DefaultErrorMessage))
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\n%s\n LEGAL CONTRACT ANALYSIS REPORT\n%s\n", heavyRule, heavyRule)

	filename, pages := "N/A", "N/A"
	if m := s.Metadata; m != nil {
		filename = orDefault(m.Filename, filename)
		if m.PageCount > 0 {
			pages = fmt.Sprint(m.PageCount)
		}
	}
	fmt.Fprintf(&b, "\nFile: %s\nPages: %s\n", filename, pages)

	if x := s.Extraction; x != nil {
		effective := "Not specified"
		if x.EffectiveDate != nil {
			effective = *x.EffectiveDate
		}

		fmt.Fprintf(&b, "\nContract Type: %s\n", x.ContractType)
		fmt.Fprintf(&b, "Parties: %s\n", strings.Join(x.Parties, ", "))
		fmt.Fprintf(&b, "Effective Date: %s\n", effective)
		fmt.Fprintf(&b, "Clauses Found: %d\n", len(x.Clauses))

		section(&b, "EXTRACTED CLAUSES")
		for _, c := range x.Clauses {
			fmt.Fprintf(&b, "\n  [%s] %s\n", strings.ToUpper(c.ClauseType), c.Title)
			fmt.Fprintf(&b, "  Section: %s\n", c.SectionReference)
			fmt.Fprintf(&b, "  Text: %s\n", Preview(c.Text, previewRunes))
		}
	}

	if r := s.Risk; r != nil {
		section(&b, "RISK ASSESSMENT — Overall: "+strings.ToUpper(string(r.OverallRisk)))

		for _, a := range r.ClauseAssessments {
			marker, ok := riskMarkers[a.RiskLevel]
			if !ok {
				marker = "⚪"
			}
			fmt.Fprintf(&b, "\n  %s %s (%s) — %s\n", marker, a.ClauseType, a.SectionReference, strings.ToUpper(string(a.RiskLevel)))
			fmt.Fprintf(&b, "     %s\n", a.RiskReasoning)
			for _, concern := range a.KeyConcerns {
				fmt.Fprintf(&b, "     • %s\n", concern)
			}
			fmt.Fprintf(&b, "     → %s\n", a.Recommendation)
		}

		if len(r.MissingClauses) > 0 {
			fmt.Fprintf(&b, "\n  ⚠️  Missing Clauses: %s\n", strings.Join(r.MissingClauses, ", "))
		}
	}

	if s.Summary != "" {
		section(&b, "EXECUTIVE SUMMARY")
		fmt.Fprintf(&b, "\n%s\n", s.Summary)
	}

	fmt.Fprintf(&b, "\n%s\nAnalysis complete.\n", heavyRule)

	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes the run result, including every field the run produced, as
// indented JSON.
func JSON(w io.Writer, r *workflow.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Preview returns the first n runes of text followed by "..." when text is
// longer than n.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n%s\n", lightRule, title, lightRule)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
