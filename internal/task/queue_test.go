package task

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSeed(t *testing.T) {
	q := Seed()
	if q.Len() != 1 {
		t.Fatalf("expected 1 seed task, got %d", q.Len())
	}
	first, ok := q.Peek()
	if !ok {
		t.Fatal("expected seed task to be present")
	}
	if first.ID != "1" {
		t.Errorf("expected seed id 1, got %q", first.ID)
	}
	if first.Name != SeedName {
		t.Errorf("expected seed name %q, got %q", SeedName, first.Name)
	}
}

func TestQueue_PopRemovesFront(t *testing.T) {
	q := NewQueue(Task{ID: "2", Name: "book hotel"}, Task{ID: "3", Name: "book flight"})

	got, ok := q.Pop()
	if !ok {
		t.Fatal("expected a task")
	}
	if got.ID != "2" {
		t.Errorf("expected task 2, got %q", got.ID)
	}
	if q.Len() != 1 {
		t.Errorf("expected 1 remaining task, got %d", q.Len())
	}

	q.Pop()
	if _, ok := q.Pop(); ok {
		t.Error("expected Pop on empty queue to report false")
	}
	if !q.Empty() {
		t.Error("expected queue to be empty")
	}
}

func TestQueue_Format(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  string
	}{
		{name: "empty", tasks: nil, want: ""},
		{name: "single", tasks: []Task{{ID: "1", Name: SeedName}}, want: "1. " + SeedName},
		{
			name:  "ordered",
			tasks: []Task{{ID: "2", Name: "book hotel"}, {ID: "3", Name: "book flight"}},
			want:  "2. book hotel\n3. book flight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewQueue(tt.tasks...).Format(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueue_CopiesInput(t *testing.T) {
	tasks := []Task{{ID: "1", Name: "a"}}
	q := NewQueue(tasks...)
	tasks[0].Name = "mutated"

	if q.Tasks()[0].Name != "a" {
		t.Error("queue shares backing array with caller")
	}

	out := q.Tasks()
	out[0].Name = "mutated"
	if first, _ := q.Peek(); first.Name != "a" {
		t.Error("Tasks() exposes internal storage")
	}
}

func TestQueue_Validate(t *testing.T) {
	if err := NewQueue(Task{ID: "1", Name: "a"}, Task{ID: "2", Name: "b"}).Validate(); err != nil {
		t.Errorf("expected valid queue, got %v", err)
	}

	err := NewQueue(Task{ID: "1"}, Task{ID: "1"}, Task{ID: " "}).Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `reuses id "1"`) {
		t.Errorf("expected duplicate id error, got %v", err)
	}
	if !strings.Contains(err.Error(), "empty id") {
		t.Errorf("expected empty id error, got %v", err)
	}
}

func TestTask_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Task
		wantErr bool
	}{
		{name: "string id", input: `{"taskID":"2","taskName":"book hotel"}`, want: Task{ID: "2", Name: "book hotel"}},
		{name: "numeric id", input: `{"taskID":3,"taskName":"book flight"}`, want: Task{ID: "3", Name: "book flight"}},
		{name: "missing id", input: `{"taskName":"x"}`, want: Task{Name: "x"}},
		{name: "bool id", input: `{"taskID":true,"taskName":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Task
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTask_String(t *testing.T) {
	if got := (Task{ID: "7", Name: "pack bags"}).String(); got != "7. pack bags" {
		t.Errorf("String() = %q", got)
	}
}
