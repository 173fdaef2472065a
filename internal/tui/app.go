package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/taskloop/internal/orchestrator"
)

// Run drives run on a background goroutine and shows it until the user
// quits. Quitting before the run ends cancels it. The returned outcome is the
// run's final outcome.
func Run(ctx context.Context, run *orchestrator.Run, objective string, iterationCap int) (orchestrator.Outcome, error) {
	events := Pump(run)

	p := tea.NewProgram(
		NewRunModel(objective, iterationCap, events, run),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()

	run.RequestCancel()
	for range events {
	}
	if err != nil && ctx.Err() == nil {
		return run.Outcome(), err
	}
	return run.Outcome(), run.Err()
}

// Pump ranges over the run's events on a new goroutine and forwards them as
// messages, ending with a DoneMsg. The channel is closed afterwards.
func Pump(run *orchestrator.Run) <-chan tea.Msg {
	events := make(chan tea.Msg, 64)
	go func() {
		defer close(events)
		for ev := range run.Events() {
			events <- EventMsg{Event: ev}
		}
		events <- DoneMsg{Outcome: run.Outcome(), Err: run.Err()}
	}()
	return events
}
