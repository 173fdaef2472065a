package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecorder_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	rec := NewRecorder(path, "run-123")
	fixed := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	tr := New()
	if err := rec.Record(tr.Append(0, KindObjective, "plan a trip")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.Record(tr.Append(1, KindTaskResult, "Day 1: fly to Tokyo")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.RecordStopped("cancelled", 1); err != nil {
		t.Fatalf("RecordStopped: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var entries []RecordedEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry RecordedEvent
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(entries))
	}
	if entries[0].Event != "objective" || entries[0].RunID != "run-123" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Text != "Day 1: fly to Tokyo" || entries[1].Seq != 2 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[2].Event != "loop-stopped" || entries[2].Text != "cancelled" {
		t.Errorf("unexpected stop entry: %+v", entries[2])
	}
	if !entries[0].Timestamp.Equal(fixed) {
		t.Errorf("expected fixed timestamp, got %v", entries[0].Timestamp)
	}
}

func TestRecorder_FailsOnMissingDirectory(t *testing.T) {
	rec := NewRecorder(filepath.Join(t.TempDir(), "missing", "run.jsonl"), "run")
	if err := rec.Record(Event{Kind: KindObjective}); err == nil {
		t.Error("expected error for missing directory")
	}
}
