package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/schema"
)

func TestImport_InsertsInOrder(t *testing.T) {
	s := createTaskStore(t)
	ctx := context.Background()

	res, err := s.Import(ctx, "tasks", []ir.Record{
		createTestTask("t-1", "Write docs", "done", 100),
		createTestTask("t-2", "Fix login", "todo", 0),
	})
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 0 {
		t.Errorf("Import() = %+v, want 2 inserted", res)
	}

	id, err := uuid.Parse(res.BatchID)
	if err != nil {
		t.Fatalf("batch id %q is not a UUID: %v", res.BatchID, err)
	}
	if id.Version() != 7 {
		t.Errorf("batch id version = %d, want 7", id.Version())
	}

	var inserted, skipped int
	err = s.db.QueryRow("SELECT inserted, skipped FROM imports WHERE batch_id = ?", res.BatchID).Scan(&inserted, &skipped)
	if err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if inserted != 2 || skipped != 0 {
		t.Errorf("batch row = (%d, %d), want (2, 0)", inserted, skipped)
	}
}

func TestImport_Idempotent(t *testing.T) {
	s := createTaskStore(t)
	ctx := context.Background()

	batch := []ir.Record{
		createTestTask("t-1", "Write docs", "done", 100),
		createTestTask("t-2", "Fix login", "todo", 0),
	}
	if _, err := s.Import(ctx, "tasks", batch); err != nil {
		t.Fatalf("first Import() failed: %v", err)
	}

	// Same content, different key order, plus one new record and an in-batch duplicate
	again := []ir.Record{
		{"progress": ir.Int(0), "status": ir.String("todo"), "title": ir.String("Fix login"), "id": ir.String("t-2")},
		createTestTask("t-3", "Deploy", "todo", 0),
		createTestTask("t-3", "Deploy", "todo", 0),
	}
	res, err := s.Import(ctx, "tasks", again)
	if err != nil {
		t.Fatalf("second Import() failed: %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 2 {
		t.Errorf("Import() = %+v, want 1 inserted, 2 skipped", res)
	}

	records, err := s.Load(ctx, "tasks")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got, want := recordIDs(records), []string{"t-1", "t-2", "t-3"}; !equalStrings(got, want) {
		t.Errorf("Load() ids = %v, want %v", got, want)
	}
}

func TestImport_AllOrNothing(t *testing.T) {
	s := createTaskStore(t)
	ctx := context.Background()

	bad := createTestTask("t-2", "Fix login", "blocked", 0)
	_, err := s.Import(ctx, "tasks", []ir.Record{
		createTestTask("t-1", "Write docs", "done", 100),
		bad,
	})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var re *schema.RecordError
	if !errors.As(err, &re) || re.Index != 1 {
		t.Errorf("err = %v, want RecordError at index 1", err)
	}

	records, err := s.Load(ctx, "tasks")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Load() returned %d records after failed import, want 0", len(records))
	}
}

func TestImport_UnknownCollection(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Import(context.Background(), "tasks", []ir.Record{createTestTask("t-1", "x", "todo", 0)})
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("err = %v, want ErrCollectionNotFound", err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
