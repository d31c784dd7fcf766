package generation

import (
	"context"
	"fmt"
	"log/slog"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// New creates the configured provider wrapped with the per-call timeout.
// Providers that hold connections also implement Close() error.
func New(ctx context.Context, cfg *Config, agentCfg gaconfig.AgentConfig, logger *slog.Logger) (Client, error) {
	logger = logger.With("system", "generation")

	var client Client
	switch cfg.Provider {
	case ProviderAgents:
		client = NewAgents(agentCfg, logger)
	case ProviderVertex:
		c, err := NewVertex(ctx, &cfg.Vertex, logger)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	logger.Info("generation client ready", "provider", cfg.Provider, "call_timeout", cfg.CallTimeout)
	return WithTimeout(client, cfg.CallTimeoutDuration()), nil
}
