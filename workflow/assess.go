package workflow

import (
	"context"

	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

// AssessNode returns the risk assessment step. An extraction with no
// clauses is still assessed; the result then carries no clause assessments.
func AssessNode(rt *Runtime) graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (Patch, error) {
		if s.Extraction == nil {
			return Patch{}, ErrMissingExtraction
		}

		system, err := rt.systemPrompt(prompts.StageAssess)
		if err != nil {
			return Patch{}, err
		}

		result, err := generation.Structured[RiskAssessmentResult](ctx, rt.Generation, generation.Request{
			System: system,
			Prompt: "Assess the risk of the following contract clauses:\n\n" + RenderClauses(s.Extraction),
			Schema: riskSchema,
		})
		if err != nil {
			return Patch{}, err
		}

		if len(s.Extraction.Clauses) == 0 {
			result.ClauseAssessments = []ClauseRiskAssessment{}
		}

		rt.Logger.InfoContext(ctx, "risk assessed",
			"node", NodeRiskAssessor,
			"overall_risk", result.OverallRisk,
			"assessments", len(result.ClauseAssessments),
			"missing_clauses", len(result.MissingClauses),
		)

		return Patch{Risk: &result, Step: StepSummarise}, nil
	}
}
