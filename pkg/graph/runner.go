package graph

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/counsel/pkg/tracing"
)

const tracerName = "github.com/JaimeStill/counsel/pkg/graph"

// Update is yielded by Stream after each node: the node that ran, the patch
// it returned, and the state after the patch was merged.
type Update[S, P any] struct {
	Node  string
	Step  int
	Patch P
	State S
}

// Runner executes a compiled graph. A Runner is immutable and safe for
// concurrent runs; each run owns its own state.
type Runner[S, P any] struct {
	name    string
	entry   string
	nodes   map[string]NodeFunc[S, P]
	edges   map[string]string
	routes  map[string]routing[S]
	merge   MergeFunc[S, P]
	options options[S]
}

func newRunner[S, P any](g *Graph[S, P]) *Runner[S, P] {
	return &Runner[S, P]{
		name:    g.name,
		entry:   g.entry,
		nodes:   maps.Clone(g.nodes),
		edges:   maps.Clone(g.edges),
		routes:  maps.Clone(g.routes),
		merge:   g.merge,
		options: g.options,
	}
}

// Run executes the graph from the entry point until End and returns the final
// state. On error the state reflects every patch merged before the failure.
func (r *Runner[S, P]) Run(ctx context.Context, initial S) (S, error) {
	state := initial
	for update, err := range r.Stream(ctx, initial) {
		if err != nil {
			return state, err
		}
		state = update.State
	}
	return state, nil
}

// Stream lazily executes the graph, yielding one Update per executed node.
// Breaking out of the loop stops the run before the next node. A terminal
// error is yielded once with the last merged state.
func (r *Runner[S, P]) Stream(ctx context.Context, initial S) iter.Seq2[Update[S, P], error] {
	return func(yield func(Update[S, P], error) bool) {
		if r.options.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.options.timeout)
			defer cancel()
		}

		state := initial
		current := r.entry

		for step := 1; current != End; step++ {
			if step > r.options.maxSteps {
				yield(Update[S, P]{State: state, Step: step}, fmt.Errorf("%s: %w: %d", r.name, ErrStepLimit, r.options.maxSteps))
				return
			}

			if err := ctx.Err(); err != nil {
				yield(Update[S, P]{Node: current, State: state, Step: step}, fmt.Errorf("%s: %w", r.name, err))
				return
			}

			patch, err := r.execute(ctx, current, step, state)
			if err != nil {
				yield(Update[S, P]{Node: current, State: state, Step: step}, fmt.Errorf("%s: node %s: %w", r.name, current, err))
				return
			}

			state = r.merge(state, patch)

			next, err := r.next(current, state)
			if !yield(Update[S, P]{Node: current, Step: step, Patch: patch, State: state}, nil) {
				return
			}
			if err != nil {
				yield(Update[S, P]{Node: current, State: state, Step: step}, fmt.Errorf("%s: %w", r.name, err))
				return
			}

			r.options.logger.DebugContext(ctx, "transition", "graph", r.name, "from", current, "to", next, "step", step)
			current = next
		}
	}
}

func (r *Runner[S, P]) execute(ctx context.Context, node string, step int, state S) (patch P, err error) {
	ctx, span := otel.Tracer(tracerName).Start(
		ctx, "graph.node",
		trace.WithAttributes(
			attribute.String(tracing.GraphName, r.name),
			attribute.String(tracing.GraphNode, node),
			attribute.Int(tracing.GraphStep, step),
		),
	)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrNodePanic, rec)
		}
		tracing.WithSpanError(span, err)
		span.End()

		if r.options.observer != nil {
			r.options.observer(NodeEvent{
				Graph:    r.name,
				Node:     node,
				Step:     step,
				Duration: time.Since(start),
				Err:      err,
			})
		}
	}()

	return r.nodes[node](ctx, r.options.clone(state))
}

func (r *Runner[S, P]) next(current string, state S) (string, error) {
	if to, ok := r.edges[current]; ok {
		return to, nil
	}

	rt := r.routes[current]
	key := rt.route(state)
	to, ok := rt.destinations[key]
	if !ok {
		return "", fmt.Errorf("%w: %s[%q]", ErrUnmappedRoute, current, key)
	}
	return to, nil
}
