package cli

import (
	"errors"
	"fmt"

	"github.com/pablasso/taskloop/internal/config"
	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/gateway/claude"
	"github.com/pablasso/taskloop/internal/gateway/httpapi"
	"github.com/pablasso/taskloop/internal/gateway/llm"
)

// errNoAPIKey is returned when the hosted OpenAI endpoint is selected without
// credentials. Self-hosted compatible servers may run without a key.
var errNoAPIKey = errors.New("no API key: set OPENAI_API_KEY or llm.api_key")

// buildGateway creates the gateway selected by cfg.Gateway.
func buildGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Gateway {
	case config.GatewayLLM:
		if cfg.LLM.APIKey == "" && (cfg.LLM.BaseURL == "" || cfg.LLM.BaseURL == llm.DefaultBaseURL) {
			return nil, errNoAPIKey
		}
		return llm.New(llm.Config{
			BaseURL:           cfg.LLM.BaseURL,
			APIKey:            cfg.LLM.APIKey,
			Model:             cfg.LLM.Model,
			Temperature:       cfg.LLM.Temperature,
			Timeout:           cfg.LLM.Timeout,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			Language:          cfg.Language,
		}), nil

	case config.GatewayClaude:
		if !claude.IsAvailable() {
			return nil, fmt.Errorf("claude CLI not found in PATH")
		}
		return claude.New(cfg.Claude.Model, cfg.Language), nil

	case config.GatewayHTTP:
		if cfg.API.URL == "" {
			return nil, fmt.Errorf("api url is required for the http gateway")
		}
		return httpapi.NewClient(cfg.API.URL, cfg.API.Timeout), nil
	}
	return nil, fmt.Errorf("unknown gateway %q", cfg.Gateway)
}
