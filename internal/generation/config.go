package generation

import (
	"fmt"
	"os"
	"slices"
	"time"
)

// Providers.
const (
	ProviderAgents = "agents"
	ProviderVertex = "vertex"
)

var providers = []string{ProviderAgents, ProviderVertex}

// Config selects and tunes the model provider.
type Config struct {
	Provider    string       `toml:"provider"`
	CallTimeout string       `toml:"call_timeout"`
	Vertex      VertexConfig `toml:"vertex"`
}

// VertexConfig holds Vertex AI settings.
type VertexConfig struct {
	Project  string `toml:"project"`
	Location string `toml:"location"`
	Model    string `toml:"model"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider       string
	CallTimeout    string
	VertexProject  string
	VertexLocation string
	VertexModel    string
}

// CallTimeoutDuration returns CallTimeout as a time.Duration.
func (c *Config) CallTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.CallTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.CallTimeout != "" {
		c.CallTimeout = overlay.CallTimeout
	}
	if overlay.Vertex.Project != "" {
		c.Vertex.Project = overlay.Vertex.Project
	}
	if overlay.Vertex.Location != "" {
		c.Vertex.Location = overlay.Vertex.Location
	}
	if overlay.Vertex.Model != "" {
		c.Vertex.Model = overlay.Vertex.Model
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAgents
	}
	if c.CallTimeout == "" {
		c.CallTimeout = "2m"
	}
	if c.Vertex.Location == "" {
		c.Vertex.Location = "us-central1"
	}
	if c.Vertex.Model == "" {
		c.Vertex.Model = "gemini-1.5-pro"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.CallTimeout, &c.CallTimeout)
	set(env.VertexProject, &c.Vertex.Project)
	set(env.VertexLocation, &c.Vertex.Location)
	set(env.VertexModel, &c.Vertex.Model)
}

func (c *Config) validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	if _, err := time.ParseDuration(c.CallTimeout); err != nil {
		return fmt.Errorf("invalid call_timeout: %w", err)
	}
	if c.Provider == ProviderVertex && c.Vertex.Project == "" {
		return fmt.Errorf("vertex project required")
	}
	return nil
}
