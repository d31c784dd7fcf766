package workflow

import "github.com/JaimeStill/counsel/internal/generation"

func riskLevelSchema(desc string) *generation.Schema {
	return generation.String(desc, string(RiskLow), string(RiskMedium), string(RiskHigh))
}

var extractionSchema = generation.Object(
	"Clauses extracted from a contract with its parties and type.",
	map[string]*generation.Schema{
		"clauses": generation.Array(
			"Key clauses found in the contract. Empty when none are present.",
			generation.Object("A single extracted clause.", map[string]*generation.Schema{
				"clause_type":       generation.String("Category of the clause, e.g. indemnification, termination, limitation_of_liability, confidentiality, governing_law, other."),
				"title":             generation.String("Short title or heading of the clause."),
				"text":              generation.String("Full text of the clause."),
				"section_reference": generation.String("Section number or reference, e.g. Section 8.2 or Article IV."),
			}),
		),
		"contract_type":  generation.String("Type of contract, e.g. NDA, SaaS Agreement, Employment, MSA."),
		"parties":        generation.Array("Names of the parties to the contract.", generation.String("Party name.")),
		"effective_date": nullable(generation.String("Effective date of the contract if stated.")),
	},
	"effective_date",
)

var riskSchema = generation.Object(
	"Risk assessment of extracted contract clauses.",
	map[string]*generation.Schema{
		"overall_risk": riskLevelSchema("Overall contract risk level."),
		"clause_assessments": generation.Array(
			"One assessment per extracted clause.",
			generation.Object("Risk assessment for a single clause.", map[string]*generation.Schema{
				"clause_type":       generation.String("Clause category being assessed."),
				"section_reference": generation.String("Section reference of the clause."),
				"risk_level":        riskLevelSchema("Risk level for this clause."),
				"risk_reasoning":    generation.String("Why this risk level was assigned."),
				"key_concerns":      generation.Array("Specific concerns or red flags.", generation.String("Concern.")),
				"recommendation":    generation.String("Suggested action or negotiation point."),
			}),
		),
		"missing_clauses":     generation.Array("Important clause types absent from the contract.", generation.String("Clause type.")),
		"summary_of_concerns": generation.String("Brief narrative of the main risk themes."),
	},
)

func nullable(s *generation.Schema) *generation.Schema {
	s.Nullable = true
	return s
}
