package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the ydbf command line configuration
type Config struct {
	Encoding      string  `yaml:"encoding"`
	RawCharacters bool    `yaml:"raw_characters"`
	Strict        bool    `yaml:"strict"`
	Output        Output  `yaml:"output"`
	Logging       Logging `yaml:"logging"`
}

// Output controls how dumped records are printed
type Output struct {
	Format string `yaml:"format"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Output: Output{
			Format: "json",
		},
		Logging: Logging{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the configuration at path over the defaults. Keys missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output format must be json or yaml, got %q", c.Output.Format)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}
