// Package graph provides a typed state-graph executor. Nodes receive a snapshot
// of the run state and return a patch; the graph merges the patch into the
// state and selects the next node through an unconditional edge or a routing
// function resolved against a destination map. Execution ends when a
// transition reaches End.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// End is the reserved destination that terminates a run.
const End = "__end__"

// NodeFunc executes one step of a run against a snapshot of the state.
type NodeFunc[S, P any] func(ctx context.Context, s S) (P, error)

// RouteFunc maps the merged state to a routing key.
type RouteFunc[S any] func(s S) string

// MergeFunc applies a node's patch to the state and returns the new state.
type MergeFunc[S, P any] func(s S, p P) S

// CloneFunc produces an independent copy of the state handed to a node.
type CloneFunc[S any] func(s S) S

// NodeEvent describes a completed node execution for observers.
type NodeEvent struct {
	Graph    string
	Node     string
	Step     int
	Duration time.Duration
	Err      error
}

// Observer receives an event after every node execution.
type Observer func(NodeEvent)

type routing[S any] struct {
	route        RouteFunc[S]
	destinations map[string]string
}

// Graph is a mutable graph definition. Build it with AddNode, AddEdge,
// AddRouting, and SetEntryPoint, then call Compile to obtain a Runner.
type Graph[S, P any] struct {
	name    string
	nodes   map[string]NodeFunc[S, P]
	edges   map[string]string
	routes  map[string]routing[S]
	entry   string
	merge   MergeFunc[S, P]
	options options[S]
}

type options[S any] struct {
	maxSteps int
	timeout  time.Duration
	clone    CloneFunc[S]
	observer Observer
	logger   *slog.Logger
}

// Option configures a Graph.
type Option[S any] func(*options[S])

// WithMaxSteps bounds the number of node executions in a single run.
func WithMaxSteps[S any](n int) Option[S] {
	return func(o *options[S]) {
		if n > 0 {
			o.maxSteps = n
		}
	}
}

// WithTimeout applies a deadline to each run.
func WithTimeout[S any](d time.Duration) Option[S] {
	return func(o *options[S]) {
		o.timeout = d
	}
}

// WithClone sets the function used to snapshot state before each node.
func WithClone[S any](fn CloneFunc[S]) Option[S] {
	return func(o *options[S]) {
		o.clone = fn
	}
}

// WithObserver registers a callback invoked after every node execution.
func WithObserver[S any](fn Observer) Option[S] {
	return func(o *options[S]) {
		o.observer = fn
	}
}

// WithLogger sets the logger used for transition debug logs.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(o *options[S]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// DefaultMaxSteps is the step bound applied when WithMaxSteps is not given.
const DefaultMaxSteps = 100

// New creates an empty graph. merge is required.
func New[S, P any](name string, merge MergeFunc[S, P], opts ...Option[S]) *Graph[S, P] {
	o := options[S]{
		maxSteps: DefaultMaxSteps,
		clone:    func(s S) S { return s },
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Graph[S, P]{
		name:    name,
		nodes:   make(map[string]NodeFunc[S, P]),
		edges:   make(map[string]string),
		routes:  make(map[string]routing[S]),
		merge:   merge,
		options: o,
	}
}

// Name returns the graph name.
func (g *Graph[S, P]) Name() string {
	return g.name
}

// AddNode registers a named node.
func (g *Graph[S, P]) AddNode(name string, fn NodeFunc[S, P]) error {
	if name == "" || name == End {
		return fmt.Errorf("%w: %q", ErrInvalidNodeName, name)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s has no function", ErrInvalidNodeName, name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	g.nodes[name] = fn
	return nil
}

// AddEdge registers an unconditional transition from one node to another.
func (g *Graph[S, P]) AddEdge(from, to string) error {
	if err := g.claimTransition(from); err != nil {
		return err
	}
	g.edges[from] = to
	return nil
}

// AddRouting registers a conditional transition. After from runs, route is
// evaluated against the merged state and its key is resolved through
// destinations to the next node name or End.
func (g *Graph[S, P]) AddRouting(from string, route RouteFunc[S], destinations map[string]string) error {
	if route == nil {
		return fmt.Errorf("%w: routing for %s has no function", ErrInvalidRouting, from)
	}
	if len(destinations) == 0 {
		return fmt.Errorf("%w: routing for %s has no destinations", ErrInvalidRouting, from)
	}
	if err := g.claimTransition(from); err != nil {
		return err
	}

	dest := make(map[string]string, len(destinations))
	for k, v := range destinations {
		dest[k] = v
	}
	g.routes[from] = routing[S]{route: route, destinations: dest}
	return nil
}

// SetEntryPoint names the node that starts every run.
func (g *Graph[S, P]) SetEntryPoint(name string) error {
	if name == "" || name == End {
		return fmt.Errorf("%w: %q", ErrInvalidNodeName, name)
	}
	g.entry = name
	return nil
}

// Compile validates the graph and returns a Runner. Every node must own
// exactly one transition and every destination must name a registered node
// or End.
func (g *Graph[S, P]) Compile() (*Runner[S, P], error) {
	if g.merge == nil {
		return nil, fmt.Errorf("%s: merge function required", g.name)
	}
	if g.entry == "" {
		return nil, fmt.Errorf("%s: %w", g.name, ErrNoEntryPoint)
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("%s: entry %w: %s", g.name, ErrNodeNotFound, g.entry)
	}

	for name := range g.nodes {
		_, hasEdge := g.edges[name]
		_, hasRoute := g.routes[name]
		if !hasEdge && !hasRoute {
			return nil, fmt.Errorf("%s: %w: %s", g.name, ErrNoTransition, name)
		}
	}

	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%s: edge source %w: %s", g.name, ErrNodeNotFound, from)
		}
		if !g.isDestination(to) {
			return nil, fmt.Errorf("%s: edge %s -> %w: %s", g.name, from, ErrNodeNotFound, to)
		}
	}

	for from, r := range g.routes {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%s: routing source %w: %s", g.name, ErrNodeNotFound, from)
		}
		for key, to := range r.destinations {
			if !g.isDestination(to) {
				return nil, fmt.Errorf("%s: routing %s[%s] -> %w: %s", g.name, from, key, ErrNodeNotFound, to)
			}
		}
	}

	return newRunner(g), nil
}

func (g *Graph[S, P]) claimTransition(from string) error {
	if from == "" || from == End {
		return fmt.Errorf("%w: %q", ErrInvalidNodeName, from)
	}
	_, hasEdge := g.edges[from]
	_, hasRoute := g.routes[from]
	if hasEdge || hasRoute {
		return fmt.Errorf("%w: %s", ErrDuplicateTransition, from)
	}
	return nil
}

func (g *Graph[S, P]) isDestination(name string) bool {
	if name == End {
		return true
	}
	_, ok := g.nodes[name]
	return ok
}
