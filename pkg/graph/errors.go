package graph

import "errors"

// Build errors, returned while defining or compiling a graph.
var (
	ErrInvalidNodeName     = errors.New("invalid node name")
	ErrDuplicateNode       = errors.New("node already registered")
	ErrDuplicateTransition = errors.New("node already has a transition")
	ErrInvalidRouting      = errors.New("invalid routing")
	ErrNodeNotFound        = errors.New("node not found")
	ErrNoEntryPoint        = errors.New("entry point not set")
	ErrNoTransition        = errors.New("node has no outgoing transition")
)

// Run errors, returned while executing a compiled graph.
var (
	ErrStepLimit     = errors.New("step limit exceeded")
	ErrUnmappedRoute = errors.New("routing key has no destination")
	ErrNodePanic     = errors.New("node panicked")
)
