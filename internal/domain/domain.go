// Package domain holds the typed records of the project workspace
// (projects, tasks, people and resources) and the field accessors that let
// the query pipeline run on them without converting to ir.Record first.
package domain

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on_hold"
)

// Project groups tasks and the people assigned to them.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	TeamID      string
	StartDate   time.Time
	EndDate     *time.Time

	AssignedPeople []string
	Tasks          []string
}

// Task is one unit of work inside a project.
type Task struct {
	ID             string
	ProjectID      string
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	Assignees      []string
	DueDate        *time.Time
	EstimatedHours *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Person is a workspace member.
type Person struct {
	ID         string
	Name       string
	Email      string
	Role       string
	TeamID     string
	Active     bool
	External   bool
	JoinedDate time.Time

	AssignedProjects []string
	AssignedTasks    []string
}

// Resource is a document or template attached to a project.
type Resource struct {
	ID        string
	Name      string
	Type      string
	Category  string
	Format    string
	URL       string
	SizeBytes int64
	ProjectID string
	CreatedBy string
	CreatedAt time.Time
	Tags      []string
}
