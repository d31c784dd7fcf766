package workflow

import (
	"context"
	"strings"

	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

// ExtractNode returns the clause extraction step.
func ExtractNode(rt *Runtime) graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (Patch, error) {
		if strings.TrimSpace(s.ParsedText) == "" {
			return Patch{}, ErrMissingParsedText
		}

		system, err := rt.systemPrompt(prompts.StageExtract)
		if err != nil {
			return Patch{}, err
		}

		text := Truncate(s.ParsedText, rt.Config.MaxExtractChars)

		result, err := generation.Structured[ClauseExtractionResult](ctx, rt.Generation, generation.Request{
			System: system,
			Prompt: "Extract all key clauses from this contract:\n\n" + text,
			Schema: extractionSchema,
		})
		if err != nil {
			return Patch{}, err
		}

		rt.Logger.InfoContext(ctx, "clauses extracted",
			"node", NodeClauseExtractor,
			"contract_type", result.ContractType,
			"clauses", len(result.Clauses),
			"truncated", len(text) != len(s.ParsedText),
		)

		return Patch{Extraction: &result, Step: StepAssessRisk}, nil
	}
}
