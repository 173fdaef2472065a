package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SeedID and SeedName describe the single task every run starts with.
const (
	SeedID   = "1"
	SeedName = "Create a list of tasks to achieve the objective"
)

// Task is a single unit of work, identified and named.
type Task struct {
	ID   string `json:"taskID"`
	Name string `json:"taskName"`
}

// String renders the task the way it appears in transcripts: "{id}. {name}".
func (t Task) String() string {
	return fmt.Sprintf("%s. %s", t.ID, t.Name)
}

// UnmarshalJSON accepts numeric task ids as well as strings, since models
// frequently emit {"taskID": 2, ...}.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"taskID"`
		Name string          `json:"taskName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Name = raw.Name
	t.ID = ""

	id := bytes.TrimSpace(raw.ID)
	if len(id) == 0 || bytes.Equal(id, []byte("null")) {
		return nil
	}
	if id[0] == '"' {
		return json.Unmarshal(id, &t.ID)
	}

	var num json.Number
	if err := json.Unmarshal(id, &num); err != nil {
		return fmt.Errorf("taskID must be a string or number: %w", err)
	}
	t.ID = num.String()
	return nil
}

// Normalize trims surrounding whitespace from the id and name.
func (t Task) Normalize() Task {
	return Task{
		ID:   strings.TrimSpace(t.ID),
		Name: strings.TrimSpace(t.Name),
	}
}
