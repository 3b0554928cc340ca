package domain

import (
	"time"

	"github.com/roach88/recq/internal/collection"
)

// Field accessors. Names match the collections in schema.cue. List fields
// are exposed through their first element or their length.

var ProjectFields = collection.NewFields[Project]().
	String("id", func(p Project) string { return p.ID }).
	String("name", func(p Project) string { return p.Name }).
	OptionalString("description", func(p Project) string { return p.Description }).
	String("status", func(p Project) string { return string(p.Status) }).
	OptionalString("team_id", func(p Project) string { return p.TeamID }).
	Time("start_date", func(p Project) time.Time { return p.StartDate }).
	OptionalTime("end_date", func(p Project) *time.Time { return p.EndDate }).
	Int("people", func(p Project) int64 { return int64(len(p.AssignedPeople)) }).
	Int("tasks", func(p Project) int64 { return int64(len(p.Tasks)) })

var TaskFields = collection.NewFields[Task]().
	String("id", func(t Task) string { return t.ID }).
	String("project_id", func(t Task) string { return t.ProjectID }).
	String("title", func(t Task) string { return t.Title }).
	OptionalString("description", func(t Task) string { return t.Description }).
	String("status", func(t Task) string { return string(t.Status) }).
	String("priority", func(t Task) string { return string(t.Priority) }).
	OptionalString("assignee", func(t Task) string { return first(t.Assignees) }).
	OptionalTime("due_date", func(t Task) *time.Time { return t.DueDate }).
	OptionalFloat("estimated_hours", func(t Task) *float64 { return t.EstimatedHours }).
	Time("created_at", func(t Task) time.Time { return t.CreatedAt }).
	Time("updated_at", func(t Task) time.Time { return t.UpdatedAt })

var PersonFields = collection.NewFields[Person]().
	String("id", func(p Person) string { return p.ID }).
	String("name", func(p Person) string { return p.Name }).
	String("email", func(p Person) string { return p.Email }).
	OptionalString("role", func(p Person) string { return p.Role }).
	OptionalString("team_id", func(p Person) string { return p.TeamID }).
	Bool("active", func(p Person) bool { return p.Active }).
	Bool("external", func(p Person) bool { return p.External }).
	Time("joined_date", func(p Person) time.Time { return p.JoinedDate }).
	Int("projects", func(p Person) int64 { return int64(len(p.AssignedProjects)) })

var ResourceFields = collection.NewFields[Resource]().
	String("id", func(r Resource) string { return r.ID }).
	String("name", func(r Resource) string { return r.Name }).
	String("type", func(r Resource) string { return r.Type }).
	OptionalString("category", func(r Resource) string { return r.Category }).
	OptionalString("format", func(r Resource) string { return r.Format }).
	OptionalString("url", func(r Resource) string { return r.URL }).
	Int("size_bytes", func(r Resource) int64 { return r.SizeBytes }).
	OptionalString("project_id", func(r Resource) string { return r.ProjectID }).
	OptionalString("created_by", func(r Resource) string { return r.CreatedBy }).
	Time("created_at", func(r Resource) time.Time { return r.CreatedAt }).
	OptionalString("tag", func(r Resource) string { return first(r.Tags) })

func first(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
