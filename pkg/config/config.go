package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Download    struct {
		DefaultSource string `yaml:"default_source"`
		DefaultSymbol string `yaml:"default_symbol"`
		OutputDir     string `yaml:"output_dir"`
		ShowLog       bool   `yaml:"show_log"`
	} `yaml:"download"`
	Retry struct {
		MaxAttempts       int           `yaml:"max_attempts"`
		BackoffMultiplier float64       `yaml:"backoff_multiplier"`
		BackoffMin        time.Duration `yaml:"backoff_min"`
		BackoffMax        time.Duration `yaml:"backoff_max"`
	} `yaml:"retry"`
	Sources map[string]struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"sources"`
	HTTP struct {
		Timeout     time.Duration `yaml:"timeout"`
		RandomAgent bool          `yaml:"random_agent"`
	} `yaml:"http"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("VNQUOTE_SOURCE"); v != "" {
		c.Download.DefaultSource = strings.ToUpper(v)
	}
	if v := os.Getenv("VNQUOTE_SYMBOL"); v != "" {
		c.Download.DefaultSymbol = v
	}
	if v := os.Getenv("VNQUOTE_OUTPUT_DIR"); v != "" {
		c.Download.OutputDir = v
	}
	if v := os.Getenv("VNQUOTE_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Download.DefaultSource == "" {
		c.Download.DefaultSource = "VCI"
	}
	if c.Download.OutputDir == "" {
		c.Download.OutputDir = "."
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BackoffMultiplier == 0 {
		c.Retry.BackoffMultiplier = 2.0
	}
	if c.Retry.BackoffMin == 0 {
		c.Retry.BackoffMin = time.Second
	}
	if c.Retry.BackoffMax == 0 {
		c.Retry.BackoffMax = 10 * time.Second
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources cannot be empty")
	}
	for name, src := range c.Sources {
		if src.BaseURL == "" {
			return fmt.Errorf("sources.%s.base_url is required", name)
		}
	}
	if _, ok := c.Sources[c.Download.DefaultSource]; !ok {
		return fmt.Errorf("download.default_source %q has no sources entry", c.Download.DefaultSource)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1")
	}
	if c.Retry.BackoffMax < c.Retry.BackoffMin {
		return fmt.Errorf("retry.backoff_max must be >= retry.backoff_min")
	}
	return nil
}

// SourceURLs flattens the sources section into a source -> base URL map.
func (c *Config) SourceURLs() map[string]string {
	out := make(map[string]string, len(c.Sources))
	for name, src := range c.Sources {
		out[strings.ToUpper(name)] = src.BaseURL
	}
	return out
}
