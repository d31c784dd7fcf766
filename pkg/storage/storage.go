// Package storage reads contract inputs from blob storage. Azure Blob
// Storage, MinIO, and Google Cloud Storage are supported; with no provider
// configured every read fails with ErrDisabled.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// System reads blobs from the configured container.
type System interface {
	// Start registers lifecycle hooks that verify the container and release
	// client resources on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Download returns a stream for the blob at the given key. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// Exists reports whether a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system for cfg.Provider. Clients are created
// eagerly but no request is made until Start or the first read.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderNone, "":
		return disabled{}, nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	case ProviderGCS:
		return newGCS(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

type disabled struct{}

func (disabled) Start(*lifecycle.Coordinator) error { return nil }

func (disabled) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, ErrDisabled
}

func (disabled) Exists(context.Context, string) (bool, error) {
	return false, ErrDisabled
}
