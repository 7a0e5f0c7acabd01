package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/L1LLIAN/mastoyoink/internal/progress"
)

// Config defines configuration for the mastoyoink CLI.
type Config struct {
	Instance     string
	Categories   []string
	Output       string
	Bucket       string
	Prefix       string
	Workers      int
	Timeout      time.Duration
	MaxAssetSize int64
	Progress     bool
	Verbose      bool
	Retry        RetryConfig
}

// RetryConfig defines retry behavior for image downloads. The manifest
// request is never retried.
type RetryConfig struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:      8,
		Timeout:      30 * time.Second,
		MaxAssetSize: 16 * 1024 * 1024,
		Retry: RetryConfig{
			Attempts:   2,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
	}
}

// categoryList accepts either a YAML sequence or a comma-separated string.
type categoryList []string

func (c *categoryList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = strings.Split(node.Value, ",")
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		if names == nil {
			names = []string{}
		}
		*c = names
		return nil
	default:
		return fmt.Errorf("line %d: categories must be a list or a string", node.Line)
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
type yamlConfig struct {
	Instance     string          `yaml:"instance"`
	Categories   categoryList    `yaml:"categories"`
	Output       string          `yaml:"output"`
	Bucket       string          `yaml:"bucket"`
	Prefix       string          `yaml:"prefix"`
	Workers      int             `yaml:"workers"`
	Timeout      string          `yaml:"timeout"`
	MaxAssetSize string          `yaml:"max_asset_size"`
	Progress     bool            `yaml:"progress"`
	Verbose      bool            `yaml:"verbose"`
	Retry        yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   *int   `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of Default().
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Instance != "" {
		cfg.Instance = yc.Instance
	}
	if yc.Categories != nil {
		cfg.Categories = []string(yc.Categories)
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Prefix != "" {
		cfg.Prefix = yc.Prefix
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.MaxAssetSize != "" {
		size, err := progress.ParseBytes(yc.MaxAssetSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse max_asset_size: %w", err)
		}
		cfg.MaxAssetSize = size
	}
	cfg.Progress = yc.Progress
	cfg.Verbose = yc.Verbose
	if yc.Retry.Attempts != nil {
		cfg.Retry.Attempts = *yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the MASTOYOINK_ prefix. MASTOYOINK_CATEGORIES
// counts as given even when set to the empty string.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MASTOYOINK_INSTANCE"); v != "" {
		c.Instance = v
	}
	if v, ok := os.LookupEnv("MASTOYOINK_CATEGORIES"); ok {
		c.Categories = strings.Split(v, ",")
	}
	if v := os.Getenv("MASTOYOINK_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("MASTOYOINK_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("MASTOYOINK_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("MASTOYOINK_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("MASTOYOINK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("MASTOYOINK_MAX_ASSET_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_MAX_ASSET_SIZE: %w", err)
		}
		c.MaxAssetSize = size
	}
	if v := os.Getenv("MASTOYOINK_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("MASTOYOINK_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}
	if v := os.Getenv("MASTOYOINK_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("MASTOYOINK_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("MASTOYOINK_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MASTOYOINK_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Instance == "" {
		return errors.New("config: instance is required")
	}
	if err := ValidateInstance(c.Instance); err != nil {
		return err
	}
	if c.Categories == nil {
		return errors.New("config: categories are required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.MaxAssetSize < 0 {
		return errors.New("config: max_asset_size must not be negative")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry attempts must not be negative")
	}
	return nil
}

// ValidateInstance checks that instance is a bare host: no scheme, path or
// trailing slash.
func ValidateInstance(instance string) error {
	switch {
	case instance == "":
		return errors.New("config: instance is required")
	case strings.Contains(instance, "://"):
		return fmt.Errorf("config: instance %q must not include a scheme", instance)
	case strings.HasSuffix(instance, "/"):
		return fmt.Errorf("config: instance %q must not end with a slash", instance)
	case strings.ContainsAny(instance, "/?# \t"):
		return fmt.Errorf("config: instance %q must be a host name", instance)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored; a non-nil Categories slice always
// replaces the base.
func (c Config) Merge(override Config) Config {
	if override.Instance != "" {
		c.Instance = override.Instance
	}
	if override.Categories != nil {
		c.Categories = override.Categories
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Prefix != "" {
		c.Prefix = override.Prefix
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.MaxAssetSize != 0 {
		c.MaxAssetSize = override.MaxAssetSize
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
