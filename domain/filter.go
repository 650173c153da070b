package domain

import (
	"strings"
	"time"
)

// DateBucket selects tasks by how their due date relates to the current
// wall-clock day.
type DateBucket string

const (
	BucketAll     DateBucket = "all"
	BucketOverdue DateBucket = "overdue"
	BucketToday   DateBucket = "today"
	BucketMonth   DateBucket = "month"
	BucketDone    DateBucket = "done"
	BucketPending DateBucket = "pending"
)

// TaskFilter is the set of predicates applied to the board view. The
// zero value matches every non-template task.
type TaskFilter struct {
	Search     string
	Bucket     DateBucket
	Priority   TaskPriority
	AssignedTo string
}

// Matches reports whether the task is visible under the filter at the
// given wall-clock time. Template tasks never match.
func (f TaskFilter) Matches(t Task, now time.Time) bool {
	if t.IsTemplate {
		return false
	}
	if !t.MatchesSearch(f.Search) {
		return false
	}
	if !f.matchesBucket(t, now) {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if a := strings.TrimSpace(f.AssignedTo); a != "" {
		if !strings.Contains(strings.ToLower(t.AssignedTo), strings.ToLower(a)) {
			return false
		}
	}
	return true
}

func (f TaskFilter) matchesBucket(t Task, now time.Time) bool {
	switch f.Bucket {
	case BucketOverdue:
		return t.Overdue(now)
	case BucketToday:
		return t.DueDate != nil && t.DueDate.SameDay(now)
	case BucketMonth:
		return t.DueDate != nil && t.DueDate.SameMonth(now)
	case BucketDone:
		return t.Status == StatusDone
	case BucketPending:
		return t.Status == StatusTodo
	default:
		return true
	}
}

// VisibleTasks returns tasks matching the filter, preserving input order.
func VisibleTasks(tasks []Task, f TaskFilter, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// Templates returns only template tasks, the copy sources excluded from
// every board view.
func Templates(tasks []Task) []Task {
	out := []Task{}
	for _, t := range tasks {
		if t.IsTemplate {
			out = append(out, t)
		}
	}
	return out
}
