// Package config loads taskforce settings from a YAML file, environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	FileName  = "taskforce.yaml"
	EnvPrefix = "TASKFORCE"
)

type Config struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Web     WebConfig     `mapstructure:"web" yaml:"web"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// BackendConfig is where clients send decomposition requests.
type BackendConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// ServerConfig configures `taskforce serve`.
type ServerConfig struct {
	Addr            string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxInputTokens  int      `mapstructure:"max_input_tokens" yaml:"max_input_tokens"`
	MaxOutputTokens int      `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
}

// AIConfig stores provider defaults used by the backend service.
type AIConfig struct {
	Provider     string `mapstructure:"provider" yaml:"provider"`
	Model        string `mapstructure:"model" yaml:"model"`
	MaxRetries   int    `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelayMs int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
	TimeoutSec   int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

type WebConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			TimeoutSec: 60,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			AllowedOrigins:  []string{"http://localhost:3000"},
			MaxInputTokens:  100,
			MaxOutputTokens: 200,
		},
		AI: AIConfig{
			Provider:     "openai",
			Model:        "gpt-3.5-turbo",
			MaxRetries:   2,
			RetryDelayMs: 1000,
			TimeoutSec:   120,
		},
		Web: WebConfig{Addr: ":3000"},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Timeout returns the client per-call timeout.
func (c *BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c *AIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url: %q is not an absolute URL", c.Backend.URL))
	}
	if c.Backend.TimeoutSec <= 0 {
		errs = append(errs, errors.New("backend.timeout_sec: must be positive"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: must not be empty"))
	}
	if c.Server.MaxInputTokens <= 0 {
		errs = append(errs, errors.New("server.max_input_tokens: must be positive"))
	}
	if c.Server.MaxOutputTokens <= 0 {
		errs = append(errs, errors.New("server.max_output_tokens: must be positive"))
	}
	if !isValidProvider(c.AI.Provider) {
		errs = append(errs, fmt.Errorf("ai.provider: unsupported provider %q (valid: %s)", c.AI.Provider, strings.Join(ValidProviders(), ", ")))
	}
	if c.AI.MaxRetries < 0 {
		errs = append(errs, errors.New("ai.max_retries: must not be negative"))
	}
	if c.AI.TimeoutSec <= 0 {
		errs = append(errs, errors.New("ai.timeout_sec: must be positive"))
	}
	if c.Web.Addr == "" {
		errs = append(errs, errors.New("web.addr: must not be empty"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ValidProviders lists the accepted ai.provider values.
func ValidProviders() []string {
	return []string{"openai", "anthropic", "ollama", "mock"}
}

func isValidProvider(name string) bool {
	for _, p := range ValidProviders() {
		if p == name {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.max_input_tokens", d.Server.MaxInputTokens)
	v.SetDefault("server.max_output_tokens", d.Server.MaxOutputTokens)

	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.retry_delay_ms", d.AI.RetryDelayMs)
	v.SetDefault("ai.timeout_sec", d.AI.TimeoutSec)

	v.SetDefault("web.addr", d.Web.Addr)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration from path, or from taskforce.yaml in the working
// directory or ConfigDir when path is empty. A missing default file is not an
// error; a missing explicit path is. TASKFORCE_* environment variables
// override file values (TASKFORCE_BACKEND_URL, TASKFORCE_AI_PROVIDER, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// ConfigDir returns the user-level config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskforce")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskforce"
	}
	return filepath.Join(home, ".config", "taskforce")
}
