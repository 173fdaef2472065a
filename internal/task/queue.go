package task

import (
	"errors"
	"fmt"
	"strings"
)

// Queue is an ordered list of pending tasks. The front is always the next
// task to execute.
type Queue struct {
	tasks []Task
}

// NewQueue builds a queue from tasks in priority order. The slice is copied.
func NewQueue(tasks ...Task) Queue {
	q := Queue{tasks: make([]Task, len(tasks))}
	copy(q.tasks, tasks)
	return q
}

// Seed returns the queue a run starts with.
func Seed() Queue {
	return NewQueue(Task{ID: SeedID, Name: SeedName})
}

// Len returns the number of pending tasks.
func (q Queue) Len() int {
	return len(q.tasks)
}

// Empty reports whether no tasks are pending.
func (q Queue) Empty() bool {
	return len(q.tasks) == 0
}

// Peek returns the front task without removing it.
func (q Queue) Peek() (Task, bool) {
	if len(q.tasks) == 0 {
		return Task{}, false
	}
	return q.tasks[0], true
}

// Pop removes and returns the front task.
func (q *Queue) Pop() (Task, bool) {
	if len(q.tasks) == 0 {
		return Task{}, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Tasks returns a copy of the pending tasks in order.
func (q Queue) Tasks() []Task {
	out := make([]Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}

// Format renders one "{id}. {name}" line per task.
func (q Queue) Format() string {
	lines := make([]string, len(q.tasks))
	for i, t := range q.tasks {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

// Validate reports empty or duplicate ids. The orchestration loop trusts
// generated queues verbatim; this is for diagnostics and tests.
func (q Queue) Validate() error {
	seen := make(map[string]int, len(q.tasks))
	var errs []error
	for i, t := range q.tasks {
		if strings.TrimSpace(t.ID) == "" {
			errs = append(errs, fmt.Errorf("task %d has an empty id", i+1))
			continue
		}
		if prev, ok := seen[t.ID]; ok {
			errs = append(errs, fmt.Errorf("task %d reuses id %q from task %d", i+1, t.ID, prev+1))
			continue
		}
		seen[t.ID] = i
	}
	return errors.Join(errs...)
}
