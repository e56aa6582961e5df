// Package config loads listbuilder settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"listbuilder/internal/log"
)

// UnresolvedPolicy decides what happens to pieces the catalog cannot resolve
type UnresolvedPolicy string

const (
	// PolicyLog only logs unresolved pieces
	PolicyLog UnresolvedPolicy = "log"
	// PolicyReport also returns them to the caller for display
	PolicyReport UnresolvedPolicy = "report"
	// PolicyStrict fails the conversion
	PolicyStrict UnresolvedPolicy = "strict"
)

// ValidPolicies lists the accepted policies
var ValidPolicies = []UnresolvedPolicy{PolicyLog, PolicyReport, PolicyStrict}

// Config holds all listbuilder configuration
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Paths   PathsConfig   `yaml:"paths"`
	Import  ImportConfig  `yaml:"import"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig locates the piece catalog
type CatalogConfig struct {
	Path         string `yaml:"path"`
	Preload      bool   `yaml:"preload"`      // load into memory at startup
	Nomenclature string `yaml:"nomenclature"` // extra translation tables, merged over the built-in ones
}

// PathsConfig holds working directories
type PathsConfig struct {
	TemplateDir string `yaml:"template_dir"` // holds moduledata and savedata
	ScratchDir  string `yaml:"scratch_dir"`
	OutputDir   string `yaml:"output_dir"`
}

// ImportConfig controls list conversion
type ImportConfig struct {
	Unresolved UnresolvedPolicy `yaml:"unresolved"`
	Dialect    string           `yaml:"dialect,omitempty"` // skip detection and use this parser
	Banner     []string         `yaml:"banner,omitempty"` // up to two chat lines written into the log
}

// BatchConfig controls concurrent conversion
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig mirrors log.Options
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:    "vlb_pieces.vlo",
			Preload: true,
		},
		Paths: PathsConfig{
			TemplateDir: "working",
			ScratchDir:  filepath.Join(os.TempDir(), "listbuilder"),
			OutputDir:   "out",
		},
		Import: ImportConfig{
			Unresolved: PolicyReport,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LISTBUILDER_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("LISTBUILDER_TEMPLATE_DIR"); v != "" {
		c.Paths.TemplateDir = v
	}
	if v := os.Getenv("LISTBUILDER_SCRATCH_DIR"); v != "" {
		c.Paths.ScratchDir = v
	}
	if v := os.Getenv("LISTBUILDER_OUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
	if v := os.Getenv("LISTBUILDER_DIALECT"); v != "" {
		c.Import.Dialect = v
	}
	if v := os.Getenv("LISTBUILDER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LISTBUILDER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LISTBUILDER_WORKERS: %w", err)
		}
		c.Batch.Workers = n
	}
	return nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path not configured (set catalog.path or LISTBUILDER_CATALOG)")
	}
	if c.Paths.TemplateDir == "" {
		return fmt.Errorf("template directory not configured")
	}

	validPolicy := false
	for _, p := range ValidPolicies {
		if c.Import.Unresolved == p {
			validPolicy = true
			break
		}
	}
	if !validPolicy {
		return fmt.Errorf("invalid unresolved policy %q (valid: %v)", c.Import.Unresolved, ValidPolicies)
	}

	if len(c.Import.Banner) > 2 {
		return fmt.Errorf("banner has %d lines, at most 2 are written", len(c.Import.Banner))
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// LogOptions converts the logging section for log.Configure
func (c *Config) LogOptions() log.Options {
	return log.Options{File: c.Logging.File, Level: c.Logging.Level, Format: c.Logging.Format}
}
