// Package config loads counsel's configuration: a TOML base file, an
// optional per-environment overlay, then COUNSEL_* environment variables,
// finalized section by section.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/counsel/internal/extraction"
	"github.com/JaimeStill/counsel/internal/generation"
	"github.com/JaimeStill/counsel/pkg/storage"
	"github.com/JaimeStill/counsel/pkg/tracing"
	"github.com/JaimeStill/counsel/workflow"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCounselEnv             = "COUNSEL_ENV"
	EnvCounselConfig          = "COUNSEL_CONFIG"
	EnvCounselShutdownTimeout = "COUNSEL_SHUTDOWN_TIMEOUT"
	EnvCounselVersion         = "COUNSEL_VERSION"
)

// Config is the root configuration shared by the CLI and the server.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Generation      generation.Config    `toml:"generation"`
	Pipeline        workflow.Config      `toml:"pipeline"`
	Extraction      extraction.Config    `toml:"extraction"`
	Prompts         map[string]string    `toml:"prompts"`
	Storage         storage.Config       `toml:"storage"`
	Tracing         tracing.Config       `toml:"tracing"`
	Logging         LoggingConfig        `toml:"logging"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the COUNSEL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCounselEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base file at path, applies the COUNSEL_ENV overlay found
// next to it, and finalizes every section. An empty path means
// COUNSEL_CONFIG or config.toml in the working directory; a missing default
// file is not an error, and defaults plus environment variables then supply
// everything.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvCounselConfig)
		explicit = path != ""
	}
	if path == "" {
		path = BaseConfigFile
	}

	cfg := &Config{}

	loaded, err := load(path)
	switch {
	case err == nil:
		cfg = loaded
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
// Prompt overrides merge per stage.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}

	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Generation.Merge(&overlay.Generation)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Extraction.Merge(&overlay.Extraction)
	c.Storage.Merge(&overlay.Storage)
	c.Tracing.Merge(&overlay.Tracing)
	c.Logging.Merge(&overlay.Logging)

	if len(overlay.Prompts) > 0 && c.Prompts == nil {
		c.Prompts = make(map[string]string, len(overlay.Prompts))
	}
	for stage, text := range overlay.Prompts {
		c.Prompts[stage] = text
	}
}

// Finalize runs defaults, environment overrides, and validation on every
// section. Load calls it; tests building a Config by hand call it directly.
func (c *Config) Finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	setString(EnvCounselShutdownTimeout, &c.ShutdownTimeout)
	setString(EnvCounselVersion, &c.Version)

	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"api", c.API.Finalize},
		{"agent", func() error { return FinalizeAgent(&c.Agent) }},
		{"generation", func() error { return c.Generation.Finalize(generationEnv) }},
		{"pipeline", func() error { return c.Pipeline.Finalize(pipelineEnv) }},
		{"extraction", func() error { return c.Extraction.Finalize(extractionEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"tracing", func() error { return c.Tracing.Finalize(tracingEnv) }},
		{"logging", c.Logging.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func overlayPath(base string) string {
	env := strings.TrimSpace(os.Getenv(EnvCounselEnv))
	if env == "" {
		return ""
	}
	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
