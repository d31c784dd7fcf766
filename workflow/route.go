package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/counsel/pkg/graph"
)

// Node names of the pipeline graph.
const (
	NodeParser          = "parser"
	NodeClauseExtractor = "clause_extractor"
	NodeRiskAssessor    = "risk_assessor"
	NodeSummariser      = "summariser"
	NodeErrorHandler    = "error_handler"
)

// RouteComplete is the routing key for a successful run.
const RouteComplete = "complete"

// destinations resolves every routing key Route can return. All step nodes
// share it so any step can reach any successor or the error terminal.
var destinations = map[string]string{
	NodeClauseExtractor: NodeClauseExtractor,
	NodeRiskAssessor:    NodeRiskAssessor,
	NodeSummariser:      NodeSummariser,
	RouteComplete:       graph.End,
	NodeErrorHandler:    NodeErrorHandler,
}

// Route selects the next node from the current step. Unknown steps,
// including parse, route to the error terminal.
func Route(s State) string {
	switch s.Step {
	case StepExtract:
		return NodeClauseExtractor
	case StepAssessRisk:
		return NodeRiskAssessor
	case StepSummarise:
		return NodeSummariser
	case StepComplete:
		return RouteComplete
	default:
		return NodeErrorHandler
	}
}

// ErrorHandlerNode finalises the failure message. It performs no recovery
// and never fails.
func ErrorHandlerNode(rt *Runtime) graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (Patch, error) {
		msg := s.ErrorMessage
		if msg == "" {
			msg = DefaultErrorMessage
		}

		rt.Logger.ErrorContext(ctx, "pipeline failed",
			"input_path", s.InputPath,
			"error", msg,
		)

		return Patch{Step: StepError, ErrorMessage: &msg}, nil
	}
}

// guard converts node errors and panics into a failure patch so that no
// failure crosses a node boundary.
func guard(prefix string, node graph.NodeFunc[State, Patch]) graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (p Patch, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				p, err = Fail(prefix, fmt.Errorf("%w: %v", ErrStepPanic, rec)), nil
			}
		}()

		p, err = node(ctx, s)
		if err != nil {
			return Fail(prefix, err), nil
		}
		return p, nil
	}
}
