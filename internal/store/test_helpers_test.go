package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/recq/internal/ir"
)

const tasksSchema = `
collection: tasks: {
	id:        string
	title:     string
	status:    "todo" | "in_progress" | "done"
	due?:      string @kind(date)
	progress:  int & >=0 & <=100
	estimate?: number
}
`

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTaskStore creates a store with the tasks collection declared.
func createTaskStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if err := s.PutCollection(context.Background(), "tasks", tasksSchema); err != nil {
		t.Fatalf("PutCollection() failed: %v", err)
	}
	return s
}

// createTestTask creates a task record with the required fields.
func createTestTask(id, title, status string, progress int64) ir.Record {
	return ir.Record{
		"id":       ir.String(id),
		"title":    ir.String(title),
		"status":   ir.String(status),
		"progress": ir.Int(progress),
	}
}

func date(s string) ir.Value {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return ir.NewTime(t)
}

func recordIDs(records []ir.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID()
	}
	return ids
}
