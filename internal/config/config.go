package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = ".config/naaw"
	DefaultConfigFile = "config.yaml"

	DefaultSocketPath = "/tmp/naaw.sock"
	// DefaultBorderWidth marks tagged nodes; DefaultUntaggedBorderWidth
	// is what a node reverts to on untag. Both match the original tool.
	DefaultBorderWidth         = 3
	DefaultUntaggedBorderWidth = 1
	DefaultBspcTimeoutMS       = 2000
)

// Config holds the daemon settings. The border width from the
// "server <width>" argument overrides BorderWidth after loading.
type Config struct {
	Socket              string `yaml:"socket" json:"socket"`
	BorderWidth         int    `yaml:"border_width" json:"borderWidth"`
	UntaggedBorderWidth int    `yaml:"untagged_border_width" json:"untaggedBorderWidth"`
	BspcTimeoutMS       int    `yaml:"bspc_timeout_ms" json:"bspcTimeoutMs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Socket:              DefaultSocketPath,
		BorderWidth:         DefaultBorderWidth,
		UntaggedBorderWidth: DefaultUntaggedBorderWidth,
		BspcTimeoutMS:       DefaultBspcTimeoutMS,
	}
}

// Load reads configuration from the specified path or the default
// location (~/.config/naaw/config.yaml). Supports .yaml and .json
// extensions. A missing file at the default location is not an
// error; the defaults apply.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return LoadFromBytes(data, ext)
}

// LoadFromBytes loads configuration from raw bytes. Format should be
// "yaml" or "json". Unset fields keep their defaults.
func LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Socket == "" {
		return fmt.Errorf("socket path must not be empty")
	}
	if c.BorderWidth < 1 {
		return fmt.Errorf("border_width must be a positive integer, got %d", c.BorderWidth)
	}
	if c.UntaggedBorderWidth < 0 {
		return fmt.Errorf("untagged_border_width must not be negative, got %d", c.UntaggedBorderWidth)
	}
	if c.BspcTimeoutMS <= 0 {
		return fmt.Errorf("bspc_timeout_ms must be positive, got %d", c.BspcTimeoutMS)
	}
	return nil
}

// BspcTimeout returns the bspc round trip bound as a duration.
func (c *Config) BspcTimeout() time.Duration {
	return time.Duration(c.BspcTimeoutMS) * time.Millisecond
}
