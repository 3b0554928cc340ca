package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recq/internal/collection"
	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/query"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func sampleTasks() []Task {
	created := day("2024-01-02")
	return []Task{
		{ID: "t1", ProjectID: "p1", Title: "Design dashboard layout", Status: TaskInProgress, Priority: PriorityHigh,
			Assignees: []string{"ana"}, DueDate: ptr(day("2024-03-01")), EstimatedHours: ptr(8.0), CreatedAt: created, UpdatedAt: created},
		{ID: "t2", ProjectID: "p1", Title: "Write API documentation", Status: TaskTodo, Priority: PriorityMedium,
			DueDate: ptr(day("2024-03-15")), CreatedAt: created, UpdatedAt: created},
		{ID: "t3", ProjectID: "p2", Title: "Dashboard QA pass", Status: TaskTodo, Priority: PriorityHigh,
			Assignees: []string{"ben", "ana"}, DueDate: ptr(day("2024-02-10")), CreatedAt: created, UpdatedAt: created},
		{ID: "t4", ProjectID: "p2", Title: "Ship release", Status: TaskDone, Priority: PriorityUrgent,
			Assignees: []string{"ana"}, CreatedAt: created, UpdatedAt: created},
	}
}

func taskIDs(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSchemasCompile(t *testing.T) {
	all, err := Schemas()
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	assert.Equal(t, []string{CollectionProjects, CollectionTasks, CollectionPeople, CollectionResources}, names)

	_, err = Schema("teams")
	require.Error(t, err)
	assert.Contains(t, Source(), "collection: tasks:")
}

func TestAccessorsMatchSchemas(t *testing.T) {
	tests := []struct {
		collection string
		names      []string
	}{
		{CollectionProjects, ProjectFields.Names()},
		{CollectionTasks, TaskFields.Names()},
		{CollectionPeople, PersonFields.Names()},
		{CollectionResources, ResourceFields.Names()},
	}
	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			s, err := Schema(tt.collection)
			require.NoError(t, err)
			assert.Equal(t, s.Names(), tt.names)
		})
	}
}

func TestRecordsValidate(t *testing.T) {
	tasks, err := Schema(CollectionTasks)
	require.NoError(t, err)
	for _, task := range sampleTasks() {
		assert.NoError(t, tasks.Validate(TaskFields.Record(task)), task.ID)
	}

	projects, err := Schema(CollectionProjects)
	require.NoError(t, err)
	p := Project{ID: "p1", Name: "Website", Status: ProjectActive, StartDate: day("2024-01-01"), Tasks: []string{"t1", "t2"}}
	rec := ProjectFields.Record(p)
	require.NoError(t, projects.Validate(rec))
	assert.Equal(t, ir.Int(2), rec.Get("tasks"))
	assert.Equal(t, ir.Null{}, rec.Get("end_date"))

	people, err := Schema(CollectionPeople)
	require.NoError(t, err)
	ana := Person{ID: "u1", Name: "Ana", Email: "ana@example.com", Active: true, JoinedDate: day("2023-05-01")}
	require.NoError(t, people.Validate(PersonFields.Record(ana)))
	ana.Email = "not-an-email"
	assert.Error(t, people.Validate(PersonFields.Record(ana)))

	resources, err := Schema(CollectionResources)
	require.NoError(t, err)
	doc := Resource{ID: "r1", Name: "Brief", Type: "document", SizeBytes: 2048, CreatedAt: day("2024-01-03"), Tags: []string{"spec"}}
	require.NoError(t, resources.Validate(ResourceFields.Record(doc)))
	doc.Type = "video"
	assert.Error(t, resources.Validate(ResourceFields.Record(doc)))
}

func TestQueryTypedTasks(t *testing.T) {
	tasks := sampleTasks()

	res, err := query.Run(tasks, query.Spec{
		Search: &query.Search{Query: "ship relase", Fields: []string{"title"}, Mode: query.ModeFuzzy},
	}, TaskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"t4"}, taskIDs(res.Items))

	res, err = query.Run(tasks, query.Spec{
		Filters: []query.Predicate{
			query.Equals{Field: "assignee", Value: ir.String("ana")},
			query.Range{Field: "due_date", Max: ir.NewTime(day("2024-03-31"))},
		},
		Sort: []collection.SortKey{{Field: "due_date", Direction: collection.Desc}},
	}, TaskFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, taskIDs(res.Items))

	res, err = query.Run(tasks, query.Spec{
		Sort:    []collection.SortKey{{Field: "id"}},
		GroupBy: "status",
	}, TaskFields)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"in_progress": 1, "todo": 2, "done": 1}, res.Counts())

	_, err = query.Run(tasks, query.Spec{GroupBy: "assignees"}, TaskFields)
	assert.True(t, collection.IsFieldNotFound(err))
}
