package transcript

import "sync"

// Transcript is an append-only, ordered event log. It is safe for concurrent
// readers while the owning run appends.
type Transcript struct {
	mu     sync.RWMutex
	events []Event
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append records an event, assigning its sequence number, and returns the
// stored copy.
func (t *Transcript) Append(iteration int, kind Kind, text string) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	ev := Event{
		Seq:       len(t.events) + 1,
		Iteration: iteration,
		Kind:      kind,
		Text:      text,
	}
	t.events = append(t.events, ev)
	return ev
}

// Events returns a copy of all recorded events.
func (t *Transcript) Events() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Len returns the number of recorded events.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// Last returns the most recent event of the given kind.
func (t *Transcript) Last(kind Kind) (Event, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].Kind == kind {
			return t.events[i], true
		}
	}
	return Event{}, false
}

// Count returns how many events of the given kind were recorded.
func (t *Transcript) Count(kind Kind) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, ev := range t.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
