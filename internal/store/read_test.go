package store

import (
	"context"
	"testing"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
)

func seedTasks(t *testing.T) *Store {
	t.Helper()
	s := createTaskStore(t)

	t1 := createTestTask("t-1", "Design dashboard", "todo", 10)
	t1["due"] = date("2024-03-05")
	t1["estimate"] = ir.Float(2.5)
	t2 := createTestTask("t-2", "Write docs", "done", 100)
	t2["due"] = date("2024-02-01")
	t2["estimate"] = ir.Float(3)
	t3 := createTestTask("t-3", "Dashboard API", "in_progress", 40)
	t4 := createTestTask("t-4", "Fix login", "todo", 0)
	t4["due"] = date("2024-03-01")

	if _, err := s.Import(context.Background(), "tasks", []ir.Record{t1, t2, t3, t4}); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	return s
}

func TestLoad_RestoresKinds(t *testing.T) {
	s := seedTasks(t)

	records, err := s.Load(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Load() returned %d records, want 4", len(records))
	}

	first := records[0]
	if _, ok := first["due"].(ir.Time); !ok {
		t.Errorf("due = %T, want ir.Time", first["due"])
	}
	if got := records[1]["estimate"]; got != ir.Float(3) {
		t.Errorf("estimate = %#v, want ir.Float(3)", got)
	}
	if got := first["progress"]; got != ir.Int(10) {
		t.Errorf("progress = %#v, want ir.Int(10)", got)
	}
	if first.Has("owner") {
		t.Error("Load() invented a field")
	}
}

func TestLoad_EmptyCollection(t *testing.T) {
	s := createTaskStore(t)

	records, err := s.Load(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("Load() = %#v, want empty non-nil slice", records)
	}
}

// Select must agree with in-memory filtering for pushed and unpushed predicates.
func TestSelect_MatchesInMemoryFilter(t *testing.T) {
	s := seedTasks(t)
	ctx := context.Background()

	all, err := s.Load(ctx, "tasks")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	sch, err := s.Collection(ctx, "tasks")
	if err != nil {
		t.Fatalf("Collection() failed: %v", err)
	}

	tests := []struct {
		name  string
		preds []query.Predicate
		want  []string
	}{
		{"equals", []query.Predicate{query.Equals{Field: "status", Value: ir.String("todo")}}, []string{"t-1", "t-4"}},
		{"not equals", []query.Predicate{query.NotEquals{Field: "status", Value: ir.String("todo")}}, []string{"t-2", "t-3"}},
		{"in", []query.Predicate{query.In{Field: "status", Values: []ir.Value{ir.String("done"), ir.String("in_progress")}}}, []string{"t-2", "t-3"}},
		{"numeric range from text", []query.Predicate{query.Range{Field: "progress", Min: ir.String("10"), Max: ir.Int(40)}}, []string{"t-1", "t-3"}},
		{"float range", []query.Predicate{query.Range{Field: "estimate", Min: ir.Int(3)}}, []string{"t-2"}},
		{"date range not pushed", []query.Predicate{query.Range{Field: "due", Min: ir.String("2024-03-01")}}, []string{"t-1", "t-4"}},
		{"is null", []query.Predicate{query.IsNull{Field: "due"}}, []string{"t-3"}},
		{"not null", []query.Predicate{query.NotNull{Field: "estimate"}}, []string{"t-1", "t-2"}},
		{"contains not pushed", []query.Predicate{query.Contains{Field: "title", Substring: "DASH"}}, []string{"t-1", "t-3"}},
		{"not", []query.Predicate{query.Not{Predicate: query.Equals{Field: "status", Value: ir.String("todo")}}}, []string{"t-2", "t-3"}},
		{"mixed and", []query.Predicate{query.And{Predicates: []query.Predicate{
			query.Equals{Field: "status", Value: ir.String("todo")},
			query.Contains{Field: "title", Substring: "login"},
		}}}, []string{"t-4"}},
		{"uncoercible literal", []query.Predicate{query.Equals{Field: "progress", Value: ir.String("lots")}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := s.Select(ctx, "tasks", tt.preds)
			if err != nil {
				t.Fatalf("Select() failed: %v", err)
			}
			if ids := recordIDs(got); !equalStrings(ids, tt.want) {
				t.Errorf("Select() ids = %v, want %v", ids, tt.want)
			}

			mem, err := query.Filter(all, tt.preds, sch)
			if err != nil {
				t.Fatalf("Filter() failed: %v", err)
			}
			if ids := recordIDs(mem); !equalStrings(ids, tt.want) {
				t.Errorf("in-memory ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestSelect_UnknownField(t *testing.T) {
	s := seedTasks(t)

	_, _, err := s.Select(context.Background(), "tasks", []query.Predicate{query.IsNull{Field: "colour"}})
	if !collection.IsFieldNotFound(err) {
		t.Errorf("err = %v, want FIELD_NOT_FOUND", err)
	}
}

func TestRun_FullPipeline(t *testing.T) {
	s := seedTasks(t)

	res, sch, err := s.Run(context.Background(), "tasks", query.Spec{
		Filters: []query.Predicate{query.NotEquals{Field: "status", Value: ir.String("done")}},
		Search:  &query.Search{Query: "dash", Fields: []string{"title"}},
		Sort:    []collection.SortKey{{Field: "progress", Direction: collection.Desc}},
		GroupBy: "status",
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sch.Name != "tasks" {
		t.Errorf("schema = %q, want tasks", sch.Name)
	}
	if ids := recordIDs(res.Items); !equalStrings(ids, []string{"t-3", "t-1"}) {
		t.Errorf("Run() ids = %v, want [t-3 t-1]", ids)
	}
	if counts := res.Counts(); counts["in_progress"] != 1 || counts["todo"] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
}
