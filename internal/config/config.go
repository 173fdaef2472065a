// Package config loads taskloop settings. Precedence, lowest first:
// defaults, config file, environment, command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Gateway kinds.
const (
	GatewayLLM    = "llm"
	GatewayClaude = "claude"
	GatewayHTTP   = "http"
)

// DefaultIterations matches the iteration input's default in the original UI.
const DefaultIterations = 5

const defaultConfigYAML = `# taskloop configuration
# gateway: llm (OpenAI-compatible API), claude (Claude Code CLI) or http (remote taskloop serve)
gateway: llm

llm:
  base_url: https://api.openai.com/v1
  model: gpt-3.5-turbo
  temperature: 0.7
  timeout: 2m
  # api_key is read from OPENAI_API_KEY when unset
  requests_per_minute: 0

# Answer language appended to every prompt, e.g. Japanese. Empty keeps the model default.
language: ""

api:
  url: http://localhost:8080
  timeout: 3m

serve:
  addr: 127.0.0.1:8080

loop:
  iterations: 5

log:
  level: info
  format: console
  file: ""
`

// LLMConfig configures the OpenAI-compatible gateway.
type LLMConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key,omitempty"`
	Model             string        `yaml:"model"`
	Temperature       float64       `yaml:"temperature"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// ClaudeConfig configures the Claude Code CLI gateway.
type ClaudeConfig struct {
	Model string `yaml:"model,omitempty"`
}

// APIConfig points the http gateway at a remote server.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServeConfig configures `taskloop serve`.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// LoopConfig holds run defaults.
type LoopConfig struct {
	Iterations int `yaml:"iterations"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Config is the full configuration.
type Config struct {
	Gateway  string       `yaml:"gateway"`
	LLM      LLMConfig    `yaml:"llm"`
	Claude   ClaudeConfig `yaml:"claude"`
	Language string       `yaml:"language"`
	API      APIConfig    `yaml:"api"`
	Serve    ServeConfig  `yaml:"serve"`
	Loop     LoopConfig   `yaml:"loop"`
	Log      LogConfig    `yaml:"log"`

	// Path is the file the config was read from, empty if none.
	Path string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway: GatewayLLM,
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.7,
			Timeout:     2 * time.Minute,
		},
		API: APIConfig{
			URL:     "http://localhost:8080",
			Timeout: 3 * time.Minute,
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8080"},
		Loop:  LoopConfig{Iterations: DefaultIterations},
		Log:   LogConfig{Level: "info", Format: "console"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/taskloop/config.yaml (or the OS
// equivalent).
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "taskloop", "config.yaml"), nil
}

// Load reads path (or the default path when empty), applies environment
// overrides and validates. A missing default file is not an error; a missing
// explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			cfg.Path = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the commented default config to path unless a file
// already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0600)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := getenv("TASKLOOP_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("TASKLOOP_GATEWAY"); v != "" {
		c.Gateway = v
	}
	if v := getenv("TASKLOOP_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := getenv("TASKLOOP_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("TASKLOOP_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := getenv("TASKLOOP_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := getenv("TASKLOOP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("TASKLOOP_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKLOOP_ITERATIONS: %w", err)
		}
		c.Loop.Iterations = n
	}
	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Gateway {
	case GatewayLLM, GatewayClaude, GatewayHTTP:
	default:
		errs = append(errs, fmt.Errorf("gateway must be one of llm, claude, http; got %q", c.Gateway))
	}
	if c.Loop.Iterations < 0 {
		errs = append(errs, fmt.Errorf("loop.iterations must be >= 0, got %d", c.Loop.Iterations))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.LLM.Temperature))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("llm.requests_per_minute must be >= 0, got %d", c.LLM.RequestsPerMinute))
	}
	if c.Gateway == GatewayHTTP && strings.TrimSpace(c.API.URL) == "" {
		errs = append(errs, errors.New("api.url is required for the http gateway"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
