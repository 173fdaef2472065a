package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pablasso/taskloop/internal/testutil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "TASKLOOP_API_KEY", "TASKLOOP_GATEWAY", "TASKLOOP_BASE_URL",
		"TASKLOOP_MODEL", "TASKLOOP_LANGUAGE", "TASKLOOP_API_URL", "TASKLOOP_LOG_LEVEL",
		"TASKLOOP_ITERATIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, GatewayLLM, cfg.Gateway)
	require.Equal(t, DefaultIterations, cfg.Loop.Iterations)
	require.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	require.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	require.Empty(t, cfg.Path)
}

func TestLoadFromDefaultPath(t *testing.T) {
	home := testutil.SetupConfigHome(t)
	clearEnv(t)

	path := filepath.Join(home, "taskloop", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: claude\nlanguage: Japanese\nloop:\n  iterations: 0\nllm:\n  timeout: 30s\n"), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, GatewayClaude, cfg.Gateway)
	require.Equal(t, "Japanese", cfg.Language)
	require.Equal(t, 0, cfg.Loop.Iterations)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	// untouched keys keep defaults
	require.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: [unterminated"), 0600))

	_, err := Load(path)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverridesFile(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: llm\nllm:\n  model: from-file\n"), 0600))

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TASKLOOP_MODEL", "from-env")
	t.Setenv("TASKLOOP_ITERATIONS", "9")
	t.Setenv("TASKLOOP_GATEWAY", "http")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sk-env", cfg.LLM.APIKey)
	require.Equal(t, "from-env", cfg.LLM.Model)
	require.Equal(t, 9, cfg.Loop.Iterations)
	require.Equal(t, GatewayHTTP, cfg.Gateway)
}

func TestFileAPIKeyBeatsOpenAIEnv(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  api_key: sk-file\n"), 0600))
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "sk-file", cfg.LLM.APIKey)
}

func TestBadIterationsEnv(t *testing.T) {
	testutil.SetupConfigHome(t)
	clearEnv(t)
	t.Setenv("TASKLOOP_ITERATIONS", "many")

	_, err := Load("")
	require.ErrorContains(t, err, "TASKLOOP_ITERATIONS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown gateway", mutate: func(c *Config) { c.Gateway = "grpc" }, wantErr: "gateway must be one of"},
		{name: "negative iterations", mutate: func(c *Config) { c.Loop.Iterations = -1 }, wantErr: "loop.iterations"},
		{name: "temperature too high", mutate: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "llm.temperature"},
		{name: "negative rpm", mutate: func(c *Config) { c.LLM.RequestsPerMinute = -5 }, wantErr: "requests_per_minute"},
		{name: "http without url", mutate: func(c *Config) { c.Gateway = GatewayHTTP; c.API.URL = " " }, wantErr: "api.url"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))
	require.Error(t, WriteDefault(path), "second write must not overwrite")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg := Default()
	require.NoError(t, yaml.Unmarshal(data, cfg))
	require.NoError(t, cfg.Validate())
	require.Equal(t, *Default(), *cfg, "default file should describe the built-in defaults")
}
