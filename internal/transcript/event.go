// Package transcript records the ordered events a run makes visible to its
// presentation layer.
package transcript

// Kind identifies the type of a transcript event.
type Kind int

const (
	KindObjective     Kind = iota // Objective stated at run start
	KindQueueSnapshot             // Pending tasks before an iteration pops one
	KindTaskStarted               // Task removed from the queue and being executed
	KindTaskResult                // Trimmed execution result
	KindLoopStopped               // Queue drained
)

func (k Kind) String() string {
	switch k {
	case KindObjective:
		return "objective"
	case KindQueueSnapshot:
		return "task-list"
	case KindTaskStarted:
		return "next-task"
	case KindTaskResult:
		return "task-result"
	case KindLoopStopped:
		return "loop-stopped"
	default:
		return "unknown"
	}
}

// Event is a single transcript entry. Events carry no wall-clock data, so two
// runs fed identical gateway responses produce equal transcripts.
type Event struct {
	Seq       int
	Iteration int
	Kind      Kind
	Text      string
}
