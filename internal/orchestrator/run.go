package orchestrator

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/task"
	"github.com/pablasso/taskloop/internal/transcript"
)

// Run is a single objective's execution. Events must be consumed from one
// goroutine; RequestCancel and the accessors are safe from any goroutine.
type Run struct {
	id     string
	loop   *Loop
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger

	cancelRequested atomic.Bool
	consumed        atomic.Bool
	transcript      *transcript.Transcript

	mu      sync.Mutex
	state   LoopState
	outcome Outcome
	err     error
}

// ID returns the run's unique identifier.
func (r *Run) ID() string {
	return r.id
}

// Transcript returns the run's event log.
func (r *Run) Transcript() *transcript.Transcript {
	return r.transcript
}

// State returns a snapshot of the loop state.
func (r *Run) State() LoopState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Queue = task.NewQueue(r.state.Queue.Tasks()...)
	return s
}

// Outcome returns how the run ended, or OutcomeRunning.
func (r *Run) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Err returns the gateway failure that ended the run. It is nil for every
// outcome except OutcomeFailed.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// RequestCancel asks the run to stop at its next suspension point and aborts
// any in-flight gateway call. It never touches the queue or the transcript.
func (r *Run) RequestCancel() {
	if r.cancelRequested.CompareAndSwap(false, true) {
		r.logger.Debug().Msg("cancel requested")
	}
	r.cancel()
}

// Events returns the lazy event sequence. Ranging over it drives the run; the
// sequence can be consumed once. Breaking out of the range cancels the run.
func (r *Run) Events() iter.Seq[transcript.Event] {
	return func(yield func(transcript.Event) bool) {
		if !r.consumed.CompareAndSwap(false, true) {
			return
		}
		r.drive(yield)
	}
}

// Wait drives the run to completion, discarding events (they remain in the
// transcript and reach observers). The error is non-nil only on failure.
func (r *Run) Wait() (Outcome, error) {
	for range r.Events() {
	}
	return r.Outcome(), r.Err()
}

func (r *Run) cancelled() bool {
	if r.cancelRequested.Load() {
		return true
	}
	return errors.Is(r.ctx.Err(), context.Canceled)
}

func (r *Run) drive(yield func(transcript.Event) bool) {
	defer r.cancel()

	r.mu.Lock()
	r.state.Running = true
	objective := r.state.Objective
	iterationCap := r.state.IterationCap
	r.mu.Unlock()

	start := time.Now()
	r.logger.Info().Str("objective", objective).Int("iteration_cap", iterationCap).Msg("run started")

	emit := func(iteration int, kind transcript.Kind, text string) bool {
		ev := r.transcript.Append(iteration, kind, text)
		for _, o := range r.loop.observers {
			o(r.id, ev)
		}
		if !yield(ev) {
			r.RequestCancel()
			return false
		}
		return true
	}

	if !emit(0, transcript.KindObjective, objective) {
		r.finish(OutcomeCancelled, nil, start)
		return
	}

	for {
		if r.cancelled() {
			r.finish(OutcomeCancelled, nil, start)
			return
		}
		if err := r.ctx.Err(); err != nil {
			r.finish(OutcomeFailed, err, start)
			return
		}

		state := r.State()
		if state.capReached() {
			r.finish(OutcomeCapReached, nil, start)
			return
		}

		iteration := state.IterationCount + 1
		queue := state.Queue

		if queue.Empty() {
			emit(state.IterationCount, transcript.KindLoopStopped, "All tasks completed.")
			r.finish(OutcomeQueueEmpty, nil, start)
			return
		}

		if !emit(iteration, transcript.KindQueueSnapshot, queue.Format()) {
			r.finish(OutcomeCancelled, nil, start)
			return
		}

		// The popped task is in flight from here on and is never re-enqueued.
		current, _ := queue.Pop()
		r.setQueue(queue)

		if !emit(iteration, transcript.KindTaskStarted, current.String()) {
			r.finish(OutcomeCancelled, nil, start)
			return
		}

		result, ok := r.execute(iteration, objective, current, start)
		if !ok {
			return
		}

		if !emit(iteration, transcript.KindTaskResult, result) {
			r.finish(OutcomeCancelled, nil, start)
			return
		}

		next, ok := r.generate(iteration, objective, queue, current, result, start)
		if !ok {
			return
		}

		r.mu.Lock()
		r.state.Queue = next
		r.state.IterationCount = iteration
		r.mu.Unlock()

		r.logger.Debug().
			Int("iteration", iteration).
			Int("queue_len", next.Len()).
			Msg("queue replaced")
	}
}

// execute runs the current task. It returns false when the run has finished.
func (r *Run) execute(iteration int, objective string, current task.Task, start time.Time) (string, bool) {
	if r.cancelled() {
		r.finish(OutcomeCancelled, nil, start)
		return "", false
	}

	r.logger.Info().
		Int("iteration", iteration).
		Str("task_id", current.ID).
		Str("task", current.Name).
		Msg("executing task")

	resp, err := r.loop.executor.Execute(r.ctx, gateway.ExecuteRequest{
		Objective: objective,
		Task:      current.Name,
	})
	if r.cancelled() {
		r.finish(OutcomeCancelled, nil, start)
		return "", false
	}
	if err != nil {
		r.finish(OutcomeFailed, gateway.Wrap(gateway.OpExecute, err), start)
		return "", false
	}
	return strings.TrimSpace(resp.Response), true
}

// generate asks for the replacement queue. It returns false when the run has
// finished.
func (r *Run) generate(iteration int, objective string, remaining task.Queue, current task.Task, result string, start time.Time) (task.Queue, bool) {
	if r.cancelled() {
		r.finish(OutcomeCancelled, nil, start)
		return task.Queue{}, false
	}

	resp, err := r.loop.generator.Generate(r.ctx, gateway.GenerateRequest{
		Objective: objective,
		TaskList:  remaining.Tasks(),
		Task:      current,
		Result:    result,
	})
	if r.cancelled() {
		r.finish(OutcomeCancelled, nil, start)
		return task.Queue{}, false
	}
	if err != nil {
		r.finish(OutcomeFailed, gateway.Wrap(gateway.OpGenerate, err), start)
		return task.Queue{}, false
	}
	if resp.Response == nil {
		r.finish(OutcomeFailed, gateway.Wrap(gateway.OpGenerate, gateway.ErrMalformedResponse), start)
		return task.Queue{}, false
	}

	r.logger.Debug().Int("iteration", iteration).Int("tasks", len(resp.Response)).Msg("queue generated")
	return task.NewQueue(resp.Response...), true
}

func (r *Run) setQueue(q task.Queue) {
	r.mu.Lock()
	r.state.Queue = q
	r.mu.Unlock()
}

func (r *Run) finish(outcome Outcome, err error, start time.Time) {
	r.mu.Lock()
	r.outcome = outcome
	r.err = err
	r.state.Running = false
	r.state.Cancelled = outcome == OutcomeCancelled
	iterations := r.state.IterationCount
	r.mu.Unlock()

	event := r.logger.Info()
	if err != nil {
		event = r.logger.Error().Err(err)
	}
	event.
		Str("outcome", outcome.String()).
		Int("iterations", iterations).
		Dur("duration", time.Since(start)).
		Msg("run finished")
}
