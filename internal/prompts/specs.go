package prompts

const parseSpec = `When no further extraction is needed, reply in plain text (no tool call) with a brief assessment of whether the document appears to be a legal contract, the likely contract type, and whether the extracted text looks complete.`

const extractSpec = `Respond with a JSON object matching this exact structure:

{
  "clauses": [
    {
      "clause_type": "<type>",
      "title": "<short title>",
      "text": "<full clause text>",
      "section_reference": "<section>"
    }
  ],
  "contract_type": "<type>",
  "parties": ["<party1>", "<party2>"],
  "effective_date": "<date or null>"
}

Field constraints:
- clause_type: lowercase snake_case category such as indemnification,
  limitation_of_liability, confidentiality, termination, governing_law,
  force_majeure, representations_and_warranties, assignment, or other.
- text: the clause wording as it appears in the contract.
- section_reference: the section number or heading reference, e.g.
  "Section 8.2" or "Article IV". Use "Unspecified" when none exists.
- effective_date: null when the contract does not state one.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Return an empty clauses array rather than inventing clauses`

const assessSpec = `Respond with a JSON object matching this exact structure:

{
  "overall_risk": "low",
  "clause_assessments": [
    {
      "clause_type": "<type>",
      "section_reference": "<section>",
      "risk_level": "medium",
      "risk_reasoning": "<why this level>",
      "key_concerns": ["<concern>"],
      "recommendation": "<action>"
    }
  ],
  "missing_clauses": ["<clause type>"],
  "summary_of_concerns": "<narrative>"
}

Field constraints:
- overall_risk and risk_level: exactly one of "low", "medium", "high".
- clause_assessments: one entry per clause provided, in the same order.
  Use an empty array when no clauses were provided.
- key_concerns and missing_clauses: arrays, empty when there are none.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const summariseSpec = `Respond with the summary as plain prose using the numbered section headings above. Do not wrap the response in JSON or markdown fencing. Keep it under 500 words.`

var specs = map[Stage]string{
	StageParse:     parseSpec,
	StageExtract:   extractSpec,
	StageAssess:    assessSpec,
	StageSummarise: summariseSpec,
}

// Spec returns the output format specification for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
