// Package claude implements both gateways by shelling out to the Claude Code
// CLI in print mode.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/logging"
)

// claudeResponse represents the JSON structure returned by Claude Code CLI
// when using --output-format json.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// DefaultTimeout bounds a single invocation when the context has no deadline.
const DefaultTimeout = 5 * time.Minute

// IsAvailable checks if the claude command exists in PATH.
func IsAvailable() bool {
	_, err := exec.LookPath("claude")
	return err == nil
}

// Gateway runs each request as one `claude -p` invocation.
type Gateway struct {
	language string
	model    string
	logger   zerolog.Logger
}

var _ gateway.Gateway = (*Gateway)(nil)

// New creates a Gateway. model may be empty to use the CLI default.
func New(model, language string) *Gateway {
	return &Gateway{
		model:    model,
		language: language,
		logger:   logging.Component("claude"),
	}
}

// Execute performs one task.
func (g *Gateway) Execute(ctx context.Context, req gateway.ExecuteRequest) (gateway.ExecuteResponse, error) {
	out, err := g.invoke(ctx, gateway.ExecutePrompt(req, g.language).Combined())
	if err != nil {
		return gateway.ExecuteResponse{}, gateway.Wrap(gateway.OpExecute, err)
	}
	return gateway.ExecuteResponse{Response: out}, nil
}

// Generate asks for the replacement queue.
func (g *Gateway) Generate(ctx context.Context, req gateway.GenerateRequest) (gateway.GenerateResponse, error) {
	out, err := g.invoke(ctx, gateway.GeneratePrompt(req, g.language).Combined())
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}
	tasks, err := gateway.ParseTaskList(out)
	if err != nil {
		return gateway.GenerateResponse{}, gateway.Wrap(gateway.OpGenerate, err)
	}
	return gateway.GenerateResponse{Response: tasks}, nil
}

func (g *Gateway) invoke(ctx context.Context, prompt string) (string, error) {
	// Apply default timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	args := []string{"-p", prompt, "--output-format", "json"}
	if g.model != "" {
		args = append(args, "--model", g.model)
	}

	start := time.Now()
	cmd := CommandContext(ctx, "claude", args...)
	output, err := cmd.Output()
	g.logger.Debug().Dur("duration", time.Since(start)).Bool("ok", err == nil).Msg("claude invocation")
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("claude command failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("failed to execute claude command: %w", err)
	}

	return extractResult(output)
}

// extractResult unwraps the CLI's JSON envelope. Plain text output is passed
// through unchanged.
func extractResult(data []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.Type == "result" {
		if resp.IsError {
			return "", errors.New("claude returned an error: " + resp.Result)
		}
		return resp.Result, nil
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("claude returned no output")
	}
	return text, nil
}
