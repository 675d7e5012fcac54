package history

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "history.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)

	runs := []Entry{
		{RecordedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), Files: 2, Rules: 40, Issues: 3, OverallScore: 25, Grade: "B", Passed: true},
		{RecordedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC), Files: 2, Rules: 45, Issues: 7, OverallScore: 48, Grade: "C", Passed: true},
		{RecordedAt: time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC), Files: 3, Rules: 60, Issues: 15, OverallScore: 71, Grade: "D", Passed: false},
	}
	for _, e := range runs {
		if err := store.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	// newest first
	if entries[0].OverallScore != 71 || entries[0].Passed {
		t.Errorf("entries[0] = %+v, want last recorded run", entries[0])
	}
	if entries[2].Grade != "B" || !entries[2].Passed {
		t.Errorf("entries[2] = %+v, want first recorded run", entries[2])
	}
	if !entries[0].RecordedAt.Equal(runs[2].RecordedAt) {
		t.Errorf("RecordedAt = %v, want %v", entries[0].RecordedAt, runs[2].RecordedAt)
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		e := Entry{RecordedAt: time.Now(), OverallScore: i, Grade: "A", Passed: true}
		if err := store.Record(e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := store.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
	if entries[0].OverallScore != 4 {
		t.Errorf("entries[0].OverallScore = %d, want most recent (4)", entries[0].OverallScore)
	}
}

func TestListEmpty(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries from empty store, want 0", len(entries))
	}
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Record(Entry{RecordedAt: time.Now(), Grade: "A", Passed: true}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	store.Close()

	// reopening must keep existing rows
	store, err = Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries after reopen, want 1", len(entries))
	}
}
