package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/model"

	"gopkg.in/yaml.v3"
)

// Config holds all f1laptrend configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Web      WebConfig      `yaml:"web"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// SourceConfig points at the host serving the lap time JSON files.
type SourceConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type WebConfig struct {
	Address      string `yaml:"address"`
	DataDir      string `yaml:"data_dir"` // served under /data/ when set
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

type TelegramConfig struct {
	Token           string `yaml:"token"`
	CircuitsPerPage int    `yaml:"circuits_per_page"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultsConfig is the dashboard state a new client starts from.
type DefaultsConfig struct {
	Circuit string `yaml:"circuit"`
	Mode    string `yaml:"mode"`
	Session string `yaml:"session"`
	Metric  string `yaml:"metric"`
}

func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "10s",
		},
		Web: WebConfig{
			Address:      ":8080",
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
			IdleTimeout:  "60s",
		},
		Telegram: TelegramConfig{
			CircuitsPerPage: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Defaults: DefaultsConfig{
			Circuit: circuits.Default,
			Mode:    string(model.ModeDriver),
			Session: string(model.Qualifying),
			Metric:  string(model.MetricTime),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
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

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("F1LAPTREND_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("WEBSERVER_ADDRESS"); v != "" {
		c.Web.Address = v
	}
	if v := os.Getenv("F1LAPTREND_DATA_DIR"); v != "" {
		c.Web.DataDir = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("F1LAPTREND_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *Config) SourceTimeout() time.Duration {
	return duration(c.Source.Timeout, 10*time.Second)
}

func (c *Config) ReadTimeout() time.Duration {
	return duration(c.Web.ReadTimeout, 15*time.Second)
}

func (c *Config) WriteTimeout() time.Duration {
	return duration(c.Web.WriteTimeout, 15*time.Second)
}

func (c *Config) IdleTimeout() time.Duration {
	return duration(c.Web.IdleTimeout, 60*time.Second)
}

var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the settings every command depends on. The Telegram token
// is checked by the bot command only.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Source.BaseURL, "http://") && !strings.HasPrefix(c.Source.BaseURL, "https://") {
		return fmt.Errorf("invalid source base_url %q: must be an http(s) URL", c.Source.BaseURL)
	}
	if c.Source.Timeout != "" {
		if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
			return fmt.Errorf("invalid source timeout %q: %w", c.Source.Timeout, err)
		}
	}
	for name, v := range map[string]string{
		"read_timeout":  c.Web.ReadTimeout,
		"write_timeout": c.Web.WriteTimeout,
		"idle_timeout":  c.Web.IdleTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid web %s %q: %w", name, v, err)
		}
	}
	if c.Telegram.CircuitsPerPage <= 0 {
		return fmt.Errorf("telegram circuits_per_page must be positive, got %d", c.Telegram.CircuitsPerPage)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if _, err := model.ParseMode(c.Defaults.Mode); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if _, err := model.ParseSession(c.Defaults.Session); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if _, err := model.ParseMetric(c.Defaults.Metric); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

// DefaultInputs overlays the configured defaults on the built-in dashboard
// state. Call Validate first; unparsable values are ignored here.
func (c *Config) DefaultInputs() dashboard.Inputs {
	in := dashboard.DefaultInputs()
	if c.Defaults.Circuit != "" {
		in = in.WithCircuit(c.Defaults.Circuit)
	}
	if m, err := model.ParseMode(c.Defaults.Mode); err == nil {
		in.Mode = m
	}
	if s, err := model.ParseSession(c.Defaults.Session); err == nil {
		in.Session = s
	}
	if m, err := model.ParseMetric(c.Defaults.Metric); err == nil {
		in.Metric = m
	}
	return in
}
