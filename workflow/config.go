package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config bounds a pipeline run.
type Config struct {
	MaxToolIterations int    `toml:"max_tool_iterations"`
	ToolLoopTimeout   string `toml:"tool_loop_timeout"`
	ToolTimeout       string `toml:"tool_timeout"`
	RunTimeout        string `toml:"run_timeout"`
	MaxSteps          int    `toml:"max_steps"`
	MaxExtractChars   int    `toml:"max_extract_chars"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxToolIterations string
	ToolLoopTimeout   string
	ToolTimeout       string
	RunTimeout        string
	MaxSteps          string
	MaxExtractChars   string
}

// ToolLoopTimeoutDuration returns ToolLoopTimeout as a time.Duration.
func (c *Config) ToolLoopTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ToolLoopTimeout)
	return d
}

// ToolTimeoutDuration returns ToolTimeout as a time.Duration.
func (c *Config) ToolTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ToolTimeout)
	return d
}

// RunTimeoutDuration returns RunTimeout as a time.Duration.
func (c *Config) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
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
	if overlay.MaxToolIterations != 0 {
		c.MaxToolIterations = overlay.MaxToolIterations
	}
	if overlay.ToolLoopTimeout != "" {
		c.ToolLoopTimeout = overlay.ToolLoopTimeout
	}
	if overlay.ToolTimeout != "" {
		c.ToolTimeout = overlay.ToolTimeout
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
	if overlay.MaxSteps != 0 {
		c.MaxSteps = overlay.MaxSteps
	}
	if overlay.MaxExtractChars != 0 {
		c.MaxExtractChars = overlay.MaxExtractChars
	}
}

func (c *Config) loadDefaults() {
	if c.MaxToolIterations == 0 {
		c.MaxToolIterations = 6
	}
	if c.ToolLoopTimeout == "" {
		c.ToolLoopTimeout = "5m"
	}
	if c.ToolTimeout == "" {
		c.ToolTimeout = "3m"
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "15m"
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = 32
	}
	if c.MaxExtractChars == 0 {
		c.MaxExtractChars = 1_500_000
	}
}

func (c *Config) loadEnv(env *Env) {
	setInt := func(name string, dst *int) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setInt(env.MaxToolIterations, &c.MaxToolIterations)
	setString(env.ToolLoopTimeout, &c.ToolLoopTimeout)
	setString(env.ToolTimeout, &c.ToolTimeout)
	setString(env.RunTimeout, &c.RunTimeout)
	setInt(env.MaxSteps, &c.MaxSteps)
	setInt(env.MaxExtractChars, &c.MaxExtractChars)
}

func (c *Config) validate() error {
	if c.MaxToolIterations < 1 {
		return fmt.Errorf("max_tool_iterations must be positive")
	}
	if c.MaxSteps < 6 {
		return fmt.Errorf("max_steps must be at least 6")
	}
	if c.MaxExtractChars < 1 {
		return fmt.Errorf("max_extract_chars must be positive")
	}
	for name, v := range map[string]string{
		"tool_loop_timeout": c.ToolLoopTimeout,
		"tool_timeout":      c.ToolTimeout,
		"run_timeout":       c.RunTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
