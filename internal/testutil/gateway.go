package testutil

import (
	"context"
	"sync"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/task"
)

// ExecuteResult scripts one Execute call.
type ExecuteResult struct {
	Response string
	Err      error
}

// GenerateResult scripts one Generate call. A nil Tasks slice with no error
// is returned as-is, which the loop treats as a malformed response.
type GenerateResult struct {
	Tasks []task.Task
	Err   error
}

// FakeGateway is a scripted gateway.Gateway. Calls past the end of a script
// return "ok" for Execute and an empty queue for Generate.
type FakeGateway struct {
	ExecuteResults  []ExecuteResult
	GenerateResults []GenerateResult

	// Hooks run before the scripted result is returned; call is 0-based.
	OnExecute  func(ctx context.Context, call int) error
	OnGenerate func(ctx context.Context, call int) error

	mu            sync.Mutex
	executeCalls  []gateway.ExecuteRequest
	generateCalls []gateway.GenerateRequest
}

var _ gateway.Gateway = (*FakeGateway)(nil)

// Execute records the call and returns the next scripted result.
func (f *FakeGateway) Execute(ctx context.Context, req gateway.ExecuteRequest) (gateway.ExecuteResponse, error) {
	f.mu.Lock()
	call := len(f.executeCalls)
	f.executeCalls = append(f.executeCalls, req)
	f.mu.Unlock()

	if f.OnExecute != nil {
		if err := f.OnExecute(ctx, call); err != nil {
			return gateway.ExecuteResponse{}, err
		}
	}

	if call >= len(f.ExecuteResults) {
		return gateway.ExecuteResponse{Response: "ok"}, nil
	}
	res := f.ExecuteResults[call]
	return gateway.ExecuteResponse{Response: res.Response}, res.Err
}

// Generate records the call and returns the next scripted result.
func (f *FakeGateway) Generate(ctx context.Context, req gateway.GenerateRequest) (gateway.GenerateResponse, error) {
	f.mu.Lock()
	call := len(f.generateCalls)
	f.generateCalls = append(f.generateCalls, req)
	f.mu.Unlock()

	if f.OnGenerate != nil {
		if err := f.OnGenerate(ctx, call); err != nil {
			return gateway.GenerateResponse{}, err
		}
	}

	if call >= len(f.GenerateResults) {
		return gateway.GenerateResponse{Response: []task.Task{}}, nil
	}
	res := f.GenerateResults[call]
	return gateway.GenerateResponse{Response: res.Tasks}, res.Err
}

// ExecuteCalls returns the recorded Execute requests.
func (f *FakeGateway) ExecuteCalls() []gateway.ExecuteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.ExecuteRequest(nil), f.executeCalls...)
}

// GenerateCalls returns the recorded Generate requests.
func (f *FakeGateway) GenerateCalls() []gateway.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.GenerateRequest(nil), f.generateCalls...)
}

// Tasks builds a task slice from alternating id, name pairs.
func Tasks(pairs ...string) []task.Task {
	out := make([]task.Task, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, task.Task{ID: pairs[i], Name: pairs[i+1]})
	}
	return out
}
