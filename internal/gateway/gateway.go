// Package gateway defines the contracts between the orchestration loop and
// the collaborators that execute tasks and regenerate the task queue.
package gateway

import (
	"context"

	"github.com/pablasso/taskloop/internal/task"
)

// ExecuteRequest asks a collaborator to perform one task.
type ExecuteRequest struct {
	Objective string `json:"objective"`
	Task      string `json:"task"`
}

// ExecuteResponse carries the free-text result of a task.
type ExecuteResponse struct {
	Response string `json:"response"`
}

// GenerateRequest asks a collaborator for the next full task queue.
type GenerateRequest struct {
	Objective string      `json:"objective"`
	TaskList  []task.Task `json:"taskList"`
	Task      task.Task   `json:"task"`
	Result    string      `json:"result"`
}

// GenerateResponse carries the replacement queue in priority order.
type GenerateResponse struct {
	Response []task.Task `json:"response"`
}

// Executor performs a single task given the objective.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResponse, error)
}

// Generator produces the next task queue from the latest result.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// Gateway is a collaborator that implements both contracts.
type Gateway interface {
	Executor
	Generator
}
