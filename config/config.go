// Package config provides configuration loading and management for the
// FRMR to OSCAL converter.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete converter configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Validator ValidatorConfig `yaml:"validator"`
	Watch     WatchConfig     `yaml:"watch"`
}

// InputConfig configures source document discovery
type InputConfig struct {
	// Pattern is a glob (doublestar ** supported) matching FRMR source files
	Pattern string `yaml:"pattern"`
}

// OutputConfig configures where and how documents are written
type OutputConfig struct {
	// Dir is the directory both documents are written to
	Dir string `yaml:"dir"`
	// CatalogFile is the catalog output filename
	CatalogFile string `yaml:"catalog_file"`
	// MappingFile is the mapping-collection output filename
	MappingFile string `yaml:"mapping_file"`
}

// ValidatorConfig configures the optional external schema validator
type ValidatorConfig struct {
	// Command is the validator executable looked up on PATH
	Command string `yaml:"command"`
	// Disabled skips the advisory validation pass entirely
	Disabled bool `yaml:"disabled"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// DebounceDelay is how long to wait for more changes before
	// reconverting, as a duration string (e.g. "500ms", "2s")
	DebounceDelay string `yaml:"debounce_delay"`
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *WatchConfig) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Pattern: "data/FRMR.*.json",
		},
		Output: OutputConfig{
			Dir:         ".",
			CatalogFile: "fedramp-catalog.json",
			MappingFile: "fedramp-mappings.json",
		},
		Validator: ValidatorConfig{
			Command: "oscal-cli",
		},
		Watch: WatchConfig{
			DebounceDelay: "500ms",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Input.Pattern == "" {
		return fmt.Errorf("input.pattern is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.CatalogFile == "" || c.Output.MappingFile == "" {
		return fmt.Errorf("output.catalog_file and output.mapping_file are required")
	}
	if c.Output.CatalogFile == c.Output.MappingFile {
		return fmt.Errorf("output.catalog_file and output.mapping_file must differ")
	}
	if c.Watch.DebounceDelay != "" {
		if _, err := time.ParseDuration(c.Watch.DebounceDelay); err != nil {
			return fmt.Errorf("watch.debounce_delay is not a valid duration: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Input.Pattern != "" {
		c.Input.Pattern = other.Input.Pattern
	}

	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.CatalogFile != "" {
		c.Output.CatalogFile = other.Output.CatalogFile
	}
	if other.Output.MappingFile != "" {
		c.Output.MappingFile = other.Output.MappingFile
	}

	if other.Validator.Command != "" {
		c.Validator.Command = other.Validator.Command
	}
	if other.Validator.Disabled {
		c.Validator.Disabled = true
	}

	if other.Watch.DebounceDelay != "" {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
}
