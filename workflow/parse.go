package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/JaimeStill/counsel/internal/extracted"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

// Parse sub-graph node names and routing keys.
const (
	parseReason = "reason"
	parseTools  = "tools"
	routeDone   = "done"
)

type parseState struct {
	Messages   []generation.Message
	Iterations int
}

type parsePatch struct {
	Messages   []generation.Message
	Iterations int
}

func mergeParse(s parseState, p parsePatch) parseState {
	if len(p.Messages) > 0 {
		s.Messages = append(slices.Clip(s.Messages), p.Messages...)
	}
	s.Iterations += p.Iterations
	return s
}

func cloneParse(s parseState) parseState {
	s.Messages = cloneMessages(s.Messages)
	return s
}

func pendingCalls(s parseState) []generation.ToolCall {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].Role == generation.RoleAI {
		return s.Messages[n-1].ToolCalls
	}
	return nil
}

func routeParse(s parseState) string {
	if len(pendingCalls(s)) > 0 {
		return parseTools
	}
	return routeDone
}

type parser struct {
	rt     *Runtime
	runner *graph.Runner[parseState, parsePatch]
}

// newParser compiles the reason/tools loop. The runner is immutable and is
// shared by every run of the pipeline.
func newParser(rt *Runtime) (*parser, error) {
	p := &parser{rt: rt}
	limit := rt.Config.MaxToolIterations

	g := graph.New("parse-tools", mergeParse,
		graph.WithMaxSteps[parseState](2*limit+2),
		graph.WithClone(cloneParse),
		graph.WithObserver[parseState](rt.Observer),
		graph.WithLogger[parseState](rt.Logger),
	)

	if err := g.AddNode(parseReason, p.reason); err != nil {
		return nil, err
	}
	if err := g.AddNode(parseTools, p.tools); err != nil {
		return nil, err
	}
	if err := g.AddRouting(parseReason, routeParse, map[string]string{
		parseTools: parseTools,
		routeDone:  graph.End,
	}); err != nil {
		return nil, err
	}
	if err := g.AddEdge(parseTools, parseReason); err != nil {
		return nil, err
	}
	if err := g.SetEntryPoint(parseReason); err != nil {
		return nil, err
	}

	runner, err := g.Compile()
	if err != nil {
		return nil, err
	}
	p.runner = runner
	return p, nil
}

func (p *parser) reason(ctx context.Context, s parseState) (parsePatch, error) {
	if s.Iterations >= p.rt.Config.MaxToolIterations {
		return parsePatch{}, fmt.Errorf("%w: %d reasoning turns", ErrToolLoopExceeded, s.Iterations)
	}

	reply, err := p.rt.Generation.GenerateWithTools(ctx, s.Messages, p.rt.Tools.Tools())
	if err != nil {
		return parsePatch{}, err
	}

	p.rt.Logger.DebugContext(ctx, "parser reasoned",
		"iteration", s.Iterations+1,
		"tool_calls", len(reply.ToolCalls),
	)

	return parsePatch{Messages: []generation.Message{generation.AI(reply)}, Iterations: 1}, nil
}

// tools runs the pending calls one at a time in request order.
func (p *parser) tools(ctx context.Context, s parseState) (parsePatch, error) {
	calls := pendingCalls(s)
	results := make([]generation.Message, 0, len(calls))

	for _, call := range calls {
		out := p.rt.Tools.Invoke(ctx, call)
		results = append(results, generation.ToolResult(call, out.JSON()))
	}

	return parsePatch{Messages: results}, nil
}

// Node returns the parse step. The message log is carried into the state
// whether or not extraction succeeds.
func (p *parser) Node() graph.NodeFunc[State, Patch] {
	return func(ctx context.Context, s State) (Patch, error) {
		logger := p.rt.Logger.With("node", NodeParser)

		seed, err := p.seed(s.InputPath)
		if err != nil {
			return Patch{}, err
		}

		loopCtx, cancel := ctx, context.CancelFunc(func() {})
		if d := p.rt.Config.ToolLoopTimeoutDuration(); d > 0 {
			loopCtx, cancel = context.WithTimeout(ctx, d)
		}
		defer cancel()

		final, err := p.runner.Run(loopCtx, parseState{Messages: seed})
		if err != nil {
			switch {
			case errors.Is(err, ErrToolLoopExceeded):
				err = fmt.Errorf("%w after %d reasoning turns", ErrToolLoopExceeded, final.Iterations)
			case errors.Is(err, graph.ErrStepLimit):
				err = fmt.Errorf("%w: %w", ErrToolLoopExceeded, err)
			case loopCtx.Err() != nil && ctx.Err() == nil:
				err = fmt.Errorf("%w: no result within %s", ErrToolLoopExceeded, p.rt.Config.ToolLoopTimeout)
			}

			logger.WarnContext(ctx, "parse failed", "error", err, "iterations", final.Iterations)

			patch := Fail(PrefixParse, err)
			patch.Messages = final.Messages
			return patch, nil
		}

		text, out, ok := parsedText(final.Messages)
		if !ok {
			logger.WarnContext(ctx, "parse produced no text", "iterations", final.Iterations)

			patch := Fail(PrefixParse, ErrNoTextExtracted)
			patch.Messages = final.Messages
			return patch, nil
		}

		meta := &DocumentMetadata{
			Filename:       filepath.Base(s.InputPath),
			Extension:      extracted.Extension(s.InputPath),
			PageCount:      out.PageCount,
			Method:         out.Method,
			CharCount:      len(text),
			ParserAnalysis: finalAnalysis(final.Messages),
		}

		logger.InfoContext(ctx, "document parsed",
			"method", meta.Method,
			"pages", meta.PageCount,
			"chars", meta.CharCount,
			"iterations", final.Iterations,
		)

		return Patch{
			Messages:   final.Messages,
			ParsedText: &text,
			Metadata:   meta,
			Step:       StepExtract,
		}, nil
	}
}

func (p *parser) seed(path string) ([]generation.Message, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: input path is empty", extracted.ErrFileNotFound)
	}

	system, err := p.rt.systemPrompt(prompts.StageParse)
	if err != nil {
		return nil, err
	}

	return []generation.Message{
		generation.System(system),
		generation.Human(fmt.Sprintf(
			"Please extract text from this file: %s\nFile extension: %s",
			path, extracted.Extension(path),
		)),
	}, nil
}

// parsedText returns the text of the most recent tool result carrying
// non-blank full_text.
func parsedText(messages []generation.Message) (string, extracted.Output, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != generation.RoleTool {
			continue
		}

		var out extracted.Output
		if err := json.Unmarshal([]byte(m.Content), &out); err != nil {
			continue
		}
		if out.HasText() {
			return out.FullText, out, true
		}
	}
	return "", extracted.Output{}, false
}

func finalAnalysis(messages []generation.Message) string {
	if n := len(messages); n > 0 && messages[n-1].Role == generation.RoleAI {
		return strings.TrimSpace(messages[n-1].Content)
	}
	return ""
}
