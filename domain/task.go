package domain

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task on the board.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ResourceType qualifies the optional resource annotation on a task.
type ResourceType string

const (
	ResourceValue ResourceType = "value"
	ResourceTime  ResourceType = "time"
)

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p names a known priority.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidResourceType reports whether rt names a known resource type.
func ValidResourceType(rt ResourceType) bool {
	switch rt {
	case ResourceValue, ResourceTime:
		return true
	}
	return false
}

// Markers appended to the title when a task is copied.
const (
	CopySuffix     = " (Cópia)"
	TemplateSuffix = " (Modelo)"
)

// Task represents a single board item. Field names follow the stored row
// shape so backup files stay byte-compatible across versions.
type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	ColumnID      string       `json:"column_id"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Color         string       `json:"color,omitempty"`
	AssignedTo    string       `json:"assigned_to,omitempty"`
	DueDate       *Date        `json:"due_date,omitempty"`
	IsTemplate    bool         `json:"is_template"`
	ResourceTag   string       `json:"resource_tag,omitempty"`
	ResourceType  ResourceType `json:"resource_type,omitempty"`
	ResourceValue string       `json:"resource_value,omitempty"`
	ResourceTime  string       `json:"resource_time,omitempty"`
	UserID        string       `json:"user_id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Copy returns a detached copy of the task with identity and timestamp
// fields stripped, ready to be inserted as a new row.
func (t Task) Copy() Task {
	c := t
	c.ID = ""
	c.CreatedAt = time.Time{}
	c.UpdatedAt = time.Time{}
	return c
}

// MatchesSearch reports whether the query matches the title or
// description, case-insensitively. An empty query matches everything.
func (t Task) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Overdue reports whether the task's due date fell before the start of
// the day containing now. Done tasks are never overdue.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}
