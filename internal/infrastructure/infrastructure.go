// Package infrastructure assembles the long-lived dependencies shared by the
// CLI and the server: logging, tracing, metrics, blob storage, the model
// client, the extraction tool registry, and the prompt catalog.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/extraction"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/internal/prompts"
	"github.com/JaimeStill/counsel/pkg/lifecycle"
	"github.com/JaimeStill/counsel/pkg/storage"
	"github.com/JaimeStill/counsel/pkg/tracing"
	"github.com/JaimeStill/counsel/workflow"
)

// Infrastructure holds the systems every entry point needs.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Metrics    *Metrics
	Storage    storage.System
	Generation generation.Client
	Tools      *extraction.Registry
	Prompts    *prompts.Catalog
	Pipeline   workflow.Config
}

// Options adjusts New for the calling entry point.
type Options struct {
	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
	// TraceOutput receives spans from the stdout exporter. Defaults to os.Stderr.
	TraceOutput io.Writer
	// Generation replaces the configured model client.
	Generation generation.Client
}

// New builds every system from cfg. Tracing is installed globally here;
// storage hooks are registered by Start. When a system fails to build, the
// ones already built are closed before the error is returned.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Infrastructure, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.TraceOutput == nil {
		opts.TraceOutput = os.Stderr
	}

	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, opts.LogOutput).With("version", cfg.Version)

	catalog, err := prompts.NewCatalog(cfg.Prompts)
	if err != nil {
		return nil, fmt.Errorf("prompts init failed: %w", err)
	}
	if overridden := catalog.Overridden(); len(overridden) > 0 {
		logger.Info("prompt overrides loaded", "stages", overridden)
	}

	shutdownTracing, err := tracing.Setup(ctx, &cfg.Tracing, cfg.Version, opts.TraceOutput)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}
	lc.OnClose("tracing", shutdownTracing)

	// Closers registered so far run before any later init error is returned.
	fail := func(err error) (*Infrastructure, error) {
		if serr := lc.Shutdown(cfg.ShutdownTimeoutDuration()); serr != nil {
			logger.Warn("partial init cleanup failed", "error", serr)
		}
		return nil, err
	}

	client := opts.Generation
	if client == nil {
		client, err = generation.New(ctx, &cfg.Generation, cfg.Agent, logger)
		if err != nil {
			return fail(fmt.Errorf("generation init failed: %w", err))
		}
	}
	if c, ok := client.(interface{ Close() error }); ok {
		lc.OnClose("generation", func(context.Context) error { return c.Close() })
	}

	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		return fail(fmt.Errorf("storage init failed: %w", err))
	}

	tools := extraction.NewRegistry(
		cfg.Pipeline.ToolTimeoutDuration(),
		logger,
		extraction.Defaults(cfg.Extraction, logger)...,
	)

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Metrics:    NewMetrics(),
		Storage:    store,
		Generation: client,
		Tools:      tools,
		Prompts:    catalog,
		Pipeline:   cfg.Pipeline,
	}, nil
}

// Start registers storage lifecycle hooks.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}

// Runtime returns the pipeline dependencies with metrics observing every
// node, including the parse tool loop.
func (i *Infrastructure) Runtime() *workflow.Runtime {
	return &workflow.Runtime{
		Generation: i.Generation,
		Tools:      i.Tools,
		Prompts:    i.Prompts,
		Config:     i.Pipeline,
		Logger:     i.Logger,
		Observer:   i.Metrics.ObserveNode,
	}
}

// NewPipeline compiles a pipeline over Runtime.
func (i *Infrastructure) NewPipeline() (*workflow.Pipeline, error) {
	return workflow.New(i.Runtime())
}
