package orchestrator

import (
	"errors"

	"github.com/pablasso/taskloop/internal/task"
)

// ErrInvalidInput is returned by Start when the run parameters are unusable.
// No events are emitted and no gateway is called.
var ErrInvalidInput = errors.New("invalid input")

// Outcome describes how a run ended.
type Outcome int

const (
	OutcomeRunning    Outcome = iota // Not finished yet
	OutcomeQueueEmpty                // Generator returned an empty queue
	OutcomeCapReached                // Iteration cap hit
	OutcomeCancelled                 // Cancellation observed; not an error
	OutcomeFailed                    // Gateway failure; see Run.Err
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeQueueEmpty:
		return "completed"
	case OutcomeCapReached:
		return "iteration limit reached"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Done reports whether the outcome is terminal.
func (o Outcome) Done() bool {
	return o != OutcomeRunning
}

// LoopState is the mutable state a run owns. Snapshots returned by Run.State
// are copies.
type LoopState struct {
	Objective      string
	Queue          task.Queue
	IterationCount int
	IterationCap   int // 0 means unbounded
	Cancelled      bool
	Running        bool
}

// capReached reports whether another iteration is disallowed.
func (s LoopState) capReached() bool {
	return s.IterationCap > 0 && s.IterationCount >= s.IterationCap
}
