package infrastructure

import (
	"io"
	"log/slog"

	"github.com/JaimeStill/counsel/internal/config"
)

// NewLogger builds a text or JSON slog logger writing to w at the configured level.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
