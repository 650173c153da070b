package domain

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// UpdateType distinguishes free-text comments from checklists.
type UpdateType string

const (
	UpdateText      UpdateType = "text"
	UpdateChecklist UpdateType = "checklist"
)

// TaskUpdate is a comment or checklist entry attached to a task.
type TaskUpdate struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	Type      UpdateType `json:"type"`
	CreatedAt time.Time  `json:"created_at"`
}

// ChecklistItem is one entry of a structured checklist.
type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ParseChecklist decodes checklist content. The stored form is a JSON
// array of items; older rows hold newline-delimited "- item" text, which
// is parsed with every item unchecked.
func ParseChecklist(content string) []ChecklistItem {
	if content == "" {
		return nil
	}
	var items []ChecklistItem
	if err := sonic.UnmarshalString(content, &items); err == nil {
		return items
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, ChecklistItem{Text: strings.TrimLeft(strings.TrimPrefix(line, "-"), " ")})
	}
	return items
}

// EncodeChecklist serializes items to the structured stored form, so the
// legacy text representation never survives a write.
func EncodeChecklist(items []ChecklistItem) (string, error) {
	if items == nil {
		items = []ChecklistItem{}
	}
	return sonic.MarshalString(items)
}

// Checklist returns the parsed items for checklist updates and nil for
// plain text updates.
func (u TaskUpdate) Checklist() []ChecklistItem {
	if u.Type != UpdateChecklist {
		return nil
	}
	return ParseChecklist(u.Content)
}
