// Package config loads and saves the console's YAML configuration. Values
// from the environment and command-line flags are layered on top with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "KEYCONSOLE_CONFIG"
	EnvAPIURL     = "KEYCONSOLE_API_URL"
	EnvToken      = "KEYCONSOLE_TOKEN"
)

// Config is the on-disk configuration. The token is written by `keyconsole
// login` and cleared by `logout`.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	Email             string        `yaml:"email,omitempty"`
	Token             string        `yaml:"token,omitempty"`
	SessionCookie     string        `yaml:"session_cookie,omitempty"`
	LogFile           string        `yaml:"log_file,omitempty"`
	LogLevel          string        `yaml:"log_level,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
	RequestTimeout    time.Duration `yaml:"request_timeout,omitempty"`
}

// Default returns a config with defaults applied.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// DefaultPath returns the config path: $KEYCONSOLE_CONFIG, or
// ~/.keyconsole/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".keyconsole", "config.yaml"), nil
}

// Override keys. A flag bound to one of them wins over its environment
// variable, which wins over the file.
const (
	KeyBaseURL = "base_url"
	KeyToken   = "token"
)

// Overrides collects values that take precedence over the config file.
type Overrides struct {
	v *viper.Viper
}

// NewOverrides returns overrides read from KEYCONSOLE_API_URL and
// KEYCONSOLE_TOKEN.
func NewOverrides() *Overrides {
	v := viper.New()
	_ = v.BindEnv(KeyBaseURL, EnvAPIURL)
	_ = v.BindEnv(KeyToken, EnvToken)
	return &Overrides{v: v}
}

// BindFlag makes flag, when set on the command line, override key.
func (o *Overrides) BindFlag(key string, flag *pflag.Flag) error {
	if err := o.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag %s: %w", key, err)
	}
	return nil
}

func (o *Overrides) apply(c *Config) {
	if v := strings.TrimSpace(o.v.GetString(KeyBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(o.v.GetString(KeyToken)); v != "" {
		c.Token = v
	}
}

// Load reads the config at path and applies environment overrides. A missing
// file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	return LoadWith(path, NewOverrides())
}

// LoadWith reads the config at path and applies o.
func LoadWith(path string, o *Overrides) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	o.apply(&cfg)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path with mode 0600, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", c.BaseURL)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// LoggedIn reports whether a session token is held.
func (c *Config) LoggedIn() bool {
	return c.Token != ""
}
