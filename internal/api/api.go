// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/pkg/middleware"
	"github.com/JaimeStill/counsel/pkg/module"
)

// NewModule compiles the pipeline and mounts the analyses endpoints under
// cfg.API.BasePath. The result cache runs for the lifetime of infra.Lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	pipeline, err := infra.NewPipeline()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	logger := infra.Logger.With("module", "api")

	results := NewResults(cfg.API.ResultTTLDuration(), cfg.API.ResultLimit)
	results.OnEviction(func(id uuid.UUID, reason string) {
		logger.Debug("analysis evicted", "analysis_id", id, "reason", reason)
	})
	results.Start(infra.Lifecycle)

	handler := NewHandler(pipeline, infra.Storage, results, infra.Metrics, logger, cfg.API.MaxUploadSizeBytes())

	return Mount(cfg, handler, logger)
}

// Mount builds the module around handler with the standard middleware stack.
func Mount(cfg *config.Config, handler *Handler, logger *slog.Logger) (*module.Module, error) {
	m, err := module.New(cfg.API.BasePath)
	if err != nil {
		return nil, err
	}

	m.Use(middleware.RequestID())
	m.Use(middleware.Recovery(logger))
	m.Use(middleware.Logger(logger))
	m.Use(middleware.CORS(&cfg.API.CORS))

	m.Register(handler.Routes())
	return m, nil
}
