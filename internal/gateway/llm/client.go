// Package llm implements both gateways on top of an OpenAI-compatible chat
// completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/logging"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultTimeout     = 120 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64 // negative selects DefaultTemperature
	Timeout           time.Duration
	RequestsPerMinute int    // 0 disables pacing
	Language          string // appended to prompts when set
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client talks to a chat completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	language    string
	limiter     *rate.Limiter
	http        *http.Client
	logger      zerolog.Logger
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Client, filling defaults for unset fields.
func New(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		baseURL:     normalizeBaseURL(cfg.BaseURL),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		language:    cfg.Language,
		limiter:     limiter,
		logger:      logging.Component("llm"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// Execute performs one task with the single-task prompt.
func (c *Client) Execute(ctx context.Context, req gateway.ExecuteRequest) (gateway.ExecuteResponse, error) {
	prompt := gateway.ExecutePrompt(req, c.language)
	content, err := c.Chat(ctx, []Message{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	})
	if err != nil {
		return gateway.ExecuteResponse{}, gateway.Wrap(gateway.OpExecute, err)
	}
	return gateway.ExecuteResponse{Response: content}, nil
}

// Generate asks the model for the replacement queue and parses its JSON array.
func (c *Client) Generate(ctx context.Context, req gateway.GenerateRequest) (gateway.GenerateResponse, error) {
	prompt := gateway.GeneratePrompt(req, c.language)
	content, err := c.Chat(ctx, []Message{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	})
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}

	tasks, err := gateway.ParseTaskList(content)
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}
	return gateway.GenerateResponse{Response: tasks}, nil
}

// Chat sends messages and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("llm chat requires at least one message")
	}
	if c.baseURL == "" {
		return "", errors.New("llm base URL is not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	requestID := uuid.NewString()
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(request)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("model", c.model).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("chat completion")

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded chatCompletionResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("status %s: %s", resp.Status, decoded.Error.Message)
		}
		return "", fmt.Errorf("status %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("response missing choices")
	}
	content := decoded.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("response empty")
	}
	return content, nil
}

func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}
