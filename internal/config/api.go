package config

import (
	"fmt"
	"time"

	"github.com/JaimeStill/counsel/pkg/formatting"
	"github.com/JaimeStill/counsel/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "COUNSEL_CORS_ENABLED",
	Origins:          "COUNSEL_CORS_ORIGINS",
	AllowedMethods:   "COUNSEL_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "COUNSEL_CORS_ALLOWED_HEADERS",
	AllowCredentials: "COUNSEL_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "COUNSEL_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload, result cache, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	ResultTTL     string                `toml:"result_ttl"`
	ResultLimit   uint64                `toml:"result_limit"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// ResultTTLDuration returns ResultTTL as a time.Duration.
func (c *APIConfig) ResultTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ResultTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.ResultTTL == "" {
		c.ResultTTL = "1h"
	}
	if c.ResultLimit == 0 {
		c.ResultLimit = 256
	}

	setString("COUNSEL_API_BASE_PATH", &c.BasePath)
	setString("COUNSEL_API_MAX_UPLOAD_SIZE", &c.MaxUploadSize)
	setString("COUNSEL_API_RESULT_TTL", &c.ResultTTL)

	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size %q", c.MaxUploadSize)
	}
	if d, err := time.ParseDuration(c.ResultTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid result_ttl %q", c.ResultTTL)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.ResultTTL != "" {
		c.ResultTTL = overlay.ResultTTL
	}
	if overlay.ResultLimit != 0 {
		c.ResultLimit = overlay.ResultLimit
	}
	c.CORS.Merge(&overlay.CORS)
}
