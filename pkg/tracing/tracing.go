// Package tracing holds span helpers shared by the graph engine and the
// pipeline.
package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	GraphName = "graph.name"
	GraphNode = "graph.node"
	GraphStep = "graph.step"

	ToolName   = "tool.name"
	ToolCallID = "tool.call_id"

	DocumentPath = "document.path"
)

// WithSpanError marks the span as failed when err is non-nil and returns err.
func WithSpanError(span trace.Span, err error) error {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
