// Package orchestrator drives a run from objective to completion: pop the next
// task, execute it, regenerate the queue from the result, repeat.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/logging"
	"github.com/pablasso/taskloop/internal/task"
	"github.com/pablasso/taskloop/internal/transcript"
)

// Observer is called for every transcript event, in order, on the goroutine
// driving the run. It must not block for long.
type Observer func(runID string, ev transcript.Event)

// Loop starts runs against a pair of gateways.
type Loop struct {
	executor  gateway.Executor
	generator gateway.Generator
	logger    zerolog.Logger
	observers []Observer
	newID     func() string
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		if o != nil {
			l.observers = append(l.observers, o)
		}
	}
}

// New creates a Loop. Most callers pass the same gateway.Gateway for both.
func New(executor gateway.Executor, generator gateway.Generator, opts ...Option) *Loop {
	l := &Loop{
		executor:  executor,
		generator: generator,
		logger:    logging.Component("loop"),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start validates the parameters and prepares a run seeded with the single
// list-creation task. Nothing happens until the run's events are consumed.
// An empty or whitespace-only objective, or a negative cap, returns
// ErrInvalidInput.
func (l *Loop) Start(ctx context.Context, objective string, iterationCap int) (*Run, error) {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return nil, fmt.Errorf("%w: objective is required", ErrInvalidInput)
	}
	if iterationCap < 0 {
		return nil, fmt.Errorf("%w: iteration cap must be >= 0, got %d", ErrInvalidInput, iterationCap)
	}
	if l.executor == nil || l.generator == nil {
		return nil, fmt.Errorf("%w: loop requires an executor and a generator", ErrInvalidInput)
	}

	runCtx, cancel := context.WithCancel(ctx)
	id := l.newID()

	return &Run{
		id:         id,
		loop:       l,
		ctx:        runCtx,
		cancel:     cancel,
		logger:     l.logger.With().Str("run_id", id).Logger(),
		transcript: transcript.New(),
		state: LoopState{
			Objective:    objective,
			Queue:        task.Seed(),
			IterationCap: iterationCap,
		},
	}, nil
}
