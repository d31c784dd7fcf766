package workflow

import (
	"context"

	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

const summariseTemperature = 0.1

// SummariseNode returns the executive summary step.
func SummariseNode(rt *Runtime) graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (Patch, error) {
		if s.Extraction == nil {
			return Patch{}, ErrMissingExtraction
		}
		if s.Risk == nil {
			return Patch{}, ErrMissingRisk
		}

		system, err := rt.systemPrompt(prompts.StageSummarise)
		if err != nil {
			return Patch{}, err
		}

		summary, err := generation.Text(ctx, rt.Generation, generation.Request{
			System:      system,
			Prompt:      "Produce an executive summary from this analysis:\n\n" + RenderAnalysis(s.Extraction, s.Risk),
			Temperature: summariseTemperature,
		})
		if err != nil {
			return Patch{}, err
		}

		rt.Logger.InfoContext(ctx, "summary produced",
			"node", NodeSummariser,
			"chars", len(summary),
		)

		return Patch{Summary: &summary, Step: StepComplete}, nil
	}
}
