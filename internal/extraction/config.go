package extraction

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config tunes the OCR backend.
type Config struct {
	OCRDPI       int      `toml:"ocr_dpi"`
	OCRLanguages []string `toml:"ocr_languages"`
	OCRWorkers   int      `toml:"ocr_workers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	OCRDPI       string
	OCRLanguages string
	OCRWorkers   string
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
	if overlay.OCRDPI != 0 {
		c.OCRDPI = overlay.OCRDPI
	}
	if len(overlay.OCRLanguages) > 0 {
		c.OCRLanguages = overlay.OCRLanguages
	}
	if overlay.OCRWorkers != 0 {
		c.OCRWorkers = overlay.OCRWorkers
	}
}

func (c *Config) loadDefaults() {
	if c.OCRDPI == 0 {
		c.OCRDPI = 300
	}
	if len(c.OCRLanguages) == 0 {
		c.OCRLanguages = []string{"eng"}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.OCRDPI != "" {
		if v := os.Getenv(env.OCRDPI); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.OCRDPI = n
			}
		}
	}
	if env.OCRLanguages != "" {
		if v := os.Getenv(env.OCRLanguages); v != "" {
			c.OCRLanguages = strings.Split(v, ",")
		}
	}
	if env.OCRWorkers != "" {
		if v := os.Getenv(env.OCRWorkers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.OCRWorkers = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.OCRDPI < 72 || c.OCRDPI > 1200 {
		return fmt.Errorf("ocr_dpi must be between 72 and 1200, got %d", c.OCRDPI)
	}
	if c.OCRWorkers < 0 {
		return fmt.Errorf("ocr_workers must not be negative")
	}
	return nil
}
