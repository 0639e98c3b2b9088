// Package config loads service and CLI settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/layout"
	"github.com/gompdf/offerpdf/internal/output"
	"github.com/gompdf/offerpdf/internal/store"
	"github.com/gompdf/offerpdf/pkg/api"
)

// Config holds every setting of the offerpdf binary
type Config struct {
	Addr string `yaml:"addr"`

	Orientation string                `yaml:"orientation"`
	Template    document.TemplateType `yaml:"template"`
	Currency    string                `yaml:"currency"`
	PageSize    string                `yaml:"pageSize"`
	ImageFormat string                `yaml:"imageFormat"`
	JPEGQuality int                   `yaml:"jpegQuality"`
	Concurrency int                   `yaml:"concurrency"`
	Timeout     time.Duration         `yaml:"timeout"`
	Verify      bool                  `yaml:"verify"`
	Debug       bool                  `yaml:"debug"`

	BaseURL       string   `yaml:"baseURL"`
	ResourcePaths []string `yaml:"resourcePaths"`

	Layout layout.Config `yaml:"layout"`
	Store  store.Config  `yaml:"store"`
	Output output.Config `yaml:"output"`
}

// Default returns the built-in configuration
func Default() Config {
	opts := api.DefaultOptions()
	return Config{
		Addr:        ":8080",
		Orientation: string(opts.PageOrientation),
		Template:    opts.Template,
		Currency:    opts.Currency,
		PageSize:    opts.PageSize,
		ImageFormat: opts.ImageFormat,
		JPEGQuality: opts.JPEGQuality,
		Concurrency: opts.Concurrency,
		Timeout:     opts.Timeout,
		Verify:      opts.Verify,
		Layout:      opts.Layout,
		Store:       store.Config{Driver: "memory", Collection: store.DefaultCollection},
		Output:      output.Config{Kind: "dir", Dir: "out"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() {
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		c.Addr = ":" + port
	}
	c.Addr = GetEnv("OFFERPDF_ADDR", c.Addr)
	c.Orientation = GetEnv("OFFERPDF_ORIENTATION", c.Orientation)
	c.Store.Driver = GetEnv("OFFERPDF_STORE_DRIVER", c.Store.Driver)
	c.Store.DatabaseURL = GetEnv("OFFERPDF_DATABASE_URL", c.Store.DatabaseURL)
	c.Store.ProjectID = GetEnv("OFFERPDF_PROJECT_ID", c.Store.ProjectID)
	c.Store.Collection = GetEnv("OFFERPDF_COLLECTION", c.Store.Collection)
	c.Output.Kind = GetEnv("OFFERPDF_OUTPUT_KIND", c.Output.Kind)
	c.Output.Dir = GetEnv("OFFERPDF_OUTPUT_DIR", c.Output.Dir)
	c.Output.Bucket = GetEnv("OFFERPDF_OUTPUT_BUCKET", c.Output.Bucket)
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var errs []error
	if _, err := layout.ParseOrientation(c.Orientation); err != nil {
		errs = append(errs, err)
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	switch strings.ToLower(c.ImageFormat) {
	case "", "jpeg", "png":
	default:
		errs = append(errs, fmt.Errorf("unsupported image format %q", c.ImageFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// APIOptions converts the configuration into generator options
func (c Config) APIOptions(logger *slog.Logger) api.Options {
	opts := api.DefaultOptions()
	opts.Layout = c.Layout
	opts.PageOrientation = api.PageOrientation(c.Orientation)
	opts.Template = c.Template
	opts.Currency = c.Currency
	opts.PageSize = c.PageSize
	opts.ImageFormat = strings.ToLower(c.ImageFormat)
	opts.JPEGQuality = c.JPEGQuality
	opts.Concurrency = c.Concurrency
	opts.Timeout = c.Timeout
	opts.Verify = c.Verify
	opts.Debug = c.Debug
	opts.BaseURL = c.BaseURL
	opts.ResourcePaths = append([]string(nil), c.ResourcePaths...)
	opts.Logger = logger
	return opts
}
