package transcript

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// RecordedEvent is a single line of a recorder file.
type RecordedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Event     string    `json:"event"`
	Seq       int       `json:"seq"`
	Iteration int       `json:"iteration"`
	Text      string    `json:"text,omitempty"`
}

// Recorder appends transcript events of a single run to a JSON Lines file.
type Recorder struct {
	mu    sync.Mutex
	path  string
	runID string
	now   func() time.Time
}

// NewRecorder creates a recorder writing to path for the given run.
func NewRecorder(path, runID string) *Recorder {
	return &Recorder{
		path:  path,
		runID: runID,
		now:   time.Now,
	}
}

// Record appends an event to the file.
func (r *Recorder) Record(ev Event) error {
	entry := RecordedEvent{
		Timestamp: r.now(),
		RunID:     r.runID,
		Event:     ev.Kind.String(),
		Seq:       ev.Seq,
		Iteration: ev.Iteration,
		Text:      ev.Text,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// RecordStopped appends a final loop-stopped line carrying the run outcome.
// Every outcome except an emptied queue needs this; that one already produced
// a loop-stopped transcript event.
func (r *Recorder) RecordStopped(outcome string, iteration int) error {
	return r.Record(Event{Iteration: iteration, Kind: KindLoopStopped, Text: outcome})
}
