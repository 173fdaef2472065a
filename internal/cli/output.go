package cli

import (
	"fmt"
	"io"

	"github.com/pablasso/taskloop/internal/orchestrator"
	"github.com/pablasso/taskloop/internal/transcript"
	"github.com/pablasso/taskloop/internal/tui"
)

// printRun drives run and writes each event as it arrives.
func printRun(w io.Writer, run *orchestrator.Run) (orchestrator.Outcome, error) {
	for ev := range run.Events() {
		printEvent(w, ev)
	}
	return run.Outcome(), run.Err()
}

func printEvent(w io.Writer, ev transcript.Event) {
	switch ev.Kind {
	case transcript.KindObjective:
		fmt.Fprintf(w, "*****OBJECTIVE*****\n%s\n", ev.Text)
	case transcript.KindQueueSnapshot:
		fmt.Fprintf(w, "\n*****TASK LIST*****\n%s\n", ev.Text)
	case transcript.KindTaskStarted:
		fmt.Fprintf(w, "\n*****NEXT TASK*****\n%s\n", ev.Text)
	case transcript.KindTaskResult:
		fmt.Fprintf(w, "\n*****TASK RESULT*****\n%s\n", ev.Text)
	case transcript.KindLoopStopped:
		fmt.Fprintf(w, "\n%s\n", ev.Text)
	}
}

// report prints the closing line for outcome. Cancellation is not an error.
func report(w io.Writer, outcome orchestrator.Outcome, iterationCap int, err error) error {
	switch outcome {
	case orchestrator.OutcomeCancelled:
		fmt.Fprintf(w, "\n%s\n", tui.CanceledMessage)
		return nil
	case orchestrator.OutcomeFailed:
		return fmt.Errorf("run failed: %w", err)
	case orchestrator.OutcomeCapReached:
		fmt.Fprintf(w, "\nIteration limit reached (%d).\n", iterationCap)
	}
	return nil
}
