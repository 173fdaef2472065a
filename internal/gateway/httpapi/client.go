// Package httpapi exposes the gateways over HTTP and consumes them remotely.
// Both sides speak the same JSON contracts:
//
//	POST /api/execute {objective, task}                    -> {response: string}
//	POST /api/create  {objective, taskList, task, result}  -> {response: Task[]}
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/task"
)

const (
	ExecutePath = "/api/execute"
	CreatePath  = "/api/create"

	maxResponseBytes = 8 << 20
)

// Client calls a remote taskloop API server.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// NewClient creates a client for the server at baseURL. A zero timeout leaves
// requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Execute posts to /api/execute.
func (c *Client) Execute(ctx context.Context, req gateway.ExecuteRequest) (gateway.ExecuteResponse, error) {
	body, err := c.post(ctx, ExecutePath, req)
	if err != nil {
		return gateway.ExecuteResponse{}, gateway.Wrap(gateway.OpExecute, err)
	}
	resp, err := gateway.DecodeExecuteResponse(body)
	if err != nil {
		return gateway.ExecuteResponse{}, gateway.Wrap(gateway.OpExecute, err)
	}
	return resp, nil
}

// Generate posts to /api/create.
func (c *Client) Generate(ctx context.Context, req gateway.GenerateRequest) (gateway.GenerateResponse, error) {
	if req.TaskList == nil {
		req.TaskList = []task.Task{}
	}
	body, err := c.post(ctx, CreatePath, req)
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}
	resp, err := gateway.DecodeGenerateResponse(body)
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("api url is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("status %s: %s", resp.Status, apiErr.Error)
		}
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	return body, nil
}
