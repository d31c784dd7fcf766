package workflow

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/graph"
)

// GraphName identifies the pipeline graph in traces and metrics.
const GraphName = "contract-analysis"

// Update is a single executed node of a pipeline run.
type Update = graph.Update[State, Patch]

// Result is the outcome of one pipeline run.
type Result struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	State       State     `json:"state"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Pipeline is the compiled analysis graph:
//
//	parser → clause_extractor → risk_assessor → summariser → end
//
// with every step routed through Route and failures sent to error_handler.
// A Pipeline is safe for concurrent runs.
type Pipeline struct {
	rt     *Runtime
	runner *graph.Runner[State, Patch]
}

// New compiles the pipeline graph. rt is copied; the caller's Runtime is
// left untouched.
func New(rt *Runtime) (*Pipeline, error) {
	if rt.Generation == nil || rt.Tools == nil {
		return nil, fmt.Errorf("workflow: generation client and tools required")
	}
	local := *rt
	rt = &local

	if rt.Logger == nil {
		rt.Logger = slog.New(slog.DiscardHandler)
	}
	rt.Logger = rt.Logger.With("system", "workflow")

	if rt.Prompts == nil {
		catalog, err := prompts.NewCatalog(nil)
		if err != nil {
			return nil, fmt.Errorf("default prompts: %w", err)
		}
		rt.Prompts = catalog
	}

	parse, err := newParser(rt)
	if err != nil {
		return nil, fmt.Errorf("build parse loop: %w", err)
	}

	g := graph.New(GraphName, Merge,
		graph.WithMaxSteps[State](rt.Config.MaxSteps),
		graph.WithTimeout[State](rt.Config.RunTimeoutDuration()),
		graph.WithClone(State.Clone),
		graph.WithObserver[State](rt.Observer),
		graph.WithLogger[State](rt.Logger),
	)

	steps := []struct {
		name   string
		prefix string
		node   graph.NodeFunc[State, Patch]
	}{
		{NodeParser, PrefixParse, parse.Node()},
		{NodeClauseExtractor, PrefixExtract, ExtractNode(rt)},
		{NodeRiskAssessor, PrefixAssess, AssessNode(rt)},
		{NodeSummariser, PrefixSummarise, SummariseNode(rt)},
	}

	for _, s := range steps {
		if err := g.AddNode(s.name, guard(s.prefix, s.node)); err != nil {
			return nil, err
		}
		if err := g.AddRouting(s.name, Route, destinations); err != nil {
			return nil, err
		}
	}

	if err := g.AddNode(NodeErrorHandler, ErrorHandlerNode(rt)); err != nil {
		return nil, err
	}
	if err := g.AddEdge(NodeErrorHandler, graph.End); err != nil {
		return nil, err
	}
	if err := g.SetEntryPoint(NodeParser); err != nil {
		return nil, err
	}

	runner, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	return &Pipeline{rt: rt, runner: runner}, nil
}

// Stream runs the pipeline on the file at path, yielding an Update as each
// node completes. Breaking out of the loop stops the run.
func (p *Pipeline) Stream(ctx context.Context, path string) iter.Seq2[Update, error] {
	return p.runner.Stream(ctx, NewState(path))
}

// Run executes the pipeline to completion. progress, when non-nil, is called
// after each node. A pipeline that ends in the error terminal is not an
// error; Run fails only when the engine aborts the run, and the returned
// Result then records the abort in its error state.
func (p *Pipeline) Run(ctx context.Context, path string, progress func(Update)) (*Result, error) {
	result := &Result{
		ID:        uuid.New(),
		Filename:  filepath.Base(path),
		State:     NewState(path),
		StartedAt: time.Now().UTC(),
	}

	logger := p.rt.Logger.With("run_id", result.ID)
	logger.InfoContext(ctx, "pipeline started", "input_path", path)

	var runErr error
	for update, err := range p.Stream(ctx, path) {
		if err != nil {
			runErr = err
			result.State = Merge(update.State, Fail("Pipeline aborted: ", err))
			break
		}
		result.State = update.State
		if progress != nil {
			progress(update)
		}
	}

	result.CompletedAt = time.Now().UTC()

	logger.InfoContext(ctx, "pipeline finished",
		"step", result.State.Step,
		"duration", result.CompletedAt.Sub(result.StartedAt),
	)

	return result, runErr
}
