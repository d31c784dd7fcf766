package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/pkg/tracing"
)

const tracerName = "github.com/JaimeStill/counsel/internal/extraction"

// ArgFilePath is the single argument every extraction tool takes.
const ArgFilePath = "file_path"

// Registry exposes a fixed set of backends as model tools.
type Registry struct {
	backends []Backend
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRegistry creates a Registry over backends in declaration order.
// A positive timeout bounds every tool invocation.
func NewRegistry(timeout time.Duration, logger *slog.Logger, backends ...Backend) *Registry {
	return &Registry{
		backends: backends,
		timeout:  timeout,
		logger:   logger.With("system", "extraction"),
	}
}

// Defaults returns the standard backend set: PDF text layer, Word documents
// and OCR.
func Defaults(cfg Config, logger *slog.Logger) []Backend {
	return []Backend{
		NewPDFText(logger),
		NewDOCX(logger),
		NewOCR(cfg, logger),
	}
}

// Tools describes each backend as a tool with a single file_path argument.
func (r *Registry) Tools() []generation.Tool {
	tools := make([]generation.Tool, 0, len(r.backends))
	for _, b := range r.backends {
		tools = append(tools, generation.Tool{
			Name:        b.Name(),
			Description: b.Description(),
			Parameters: generation.Object("", map[string]*generation.Schema{
				ArgFilePath: generation.String("Absolute path to the document file."),
			}),
		})
	}
	return tools
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	i := slices.IndexFunc(r.backends, func(b Backend) bool { return b.Name() == name })
	if i < 0 {
		return nil, false
	}
	return r.backends[i], true
}

// ForExtension returns the names of backends that accept ext.
func (r *Registry) ForExtension(ext string) []string {
	var names []string
	for _, b := range r.backends {
		if slices.Contains(b.Formats(), ext) {
			names = append(names, b.Name())
		}
	}
	return names
}

// Invoke runs the tool named by call. Failures are reported inside the
// Output so the model can react to them; Invoke itself never fails.
func (r *Registry) Invoke(ctx context.Context, call generation.ToolCall) Output {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tool "+call.Name)
	defer span.End()

	span.SetAttributes(
		attribute.String(tracing.ToolName, call.Name),
		attribute.String(tracing.ToolCallID, call.ID),
	)

	out, err := r.invoke(ctx, call)
	if tracing.WithSpanError(span, err) != nil {
		r.logger.WarnContext(ctx, "tool failed", "tool", call.Name, "error", err)
		return Output{Error: err.Error()}
	}

	r.logger.InfoContext(ctx, "tool completed",
		"tool", call.Name,
		"method", out.Method,
		"chars", out.CharCount,
	)
	return Output{Result: *out}
}

func (r *Registry) invoke(ctx context.Context, call generation.ToolCall) (*Result, error) {
	backend, ok := r.Lookup(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	path, ok := call.Arguments[ArgFilePath].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidArguments, ArgFilePath)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return backend.Extract(ctx, path)
}
