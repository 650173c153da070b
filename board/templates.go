package board

import (
	"context"

	"github.com/agiliza2b-source/tasks2/domain"
)

// SaveTemplate copies a task into a template and clones the source
// task's updates onto the new template id. The two steps run
// sequentially and are not atomic: a failure after the insert leaves a
// template without its updates. Each step is idempotent under retry
// because the clone targets the template id assigned by the first step.
func (m *Manager) SaveTemplate(ctx context.Context, taskID string) (domain.Task, error) {
	m.mu.Lock()
	idx := m.taskIndexLocked(taskID)
	if idx < 0 {
		m.mu.Unlock()
		return domain.Task{}, ErrNotFound
	}
	src := m.tasks[idx]
	m.mu.Unlock()

	tpl := src.Copy()
	tpl.Title = src.Title + domain.TemplateSuffix
	tpl.IsTemplate = true
	tpl.UserID = m.userID

	created, err := m.store.InsertTask(ctx, tpl)
	if err != nil {
		return domain.Task{}, err
	}

	m.mu.Lock()
	m.tasks = append([]domain.Task{created}, m.tasks...)
	m.mu.Unlock()

	if err := m.cloneUpdates(ctx, taskID, created.ID); err != nil {
		return created, err
	}
	return created, nil
}

// ApplyTemplate copies the template's description onto the target task
// and clones the template's updates as fresh updates on the target.
// Existing updates on the target are kept; the operation is additive.
func (m *Manager) ApplyTemplate(ctx context.Context, targetID, templateID string) error {
	m.mu.Lock()
	tplIdx := m.taskIndexLocked(templateID)
	tgtIdx := m.taskIndexLocked(targetID)
	if tplIdx < 0 || tgtIdx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	tpl := m.tasks[tplIdx]
	target := m.tasks[tgtIdx]
	target.Description = tpl.Description
	m.tasks[tgtIdx] = target
	m.mu.Unlock()

	if err := m.store.UpdateTask(ctx, target); err != nil {
		return err
	}
	return m.cloneUpdates(ctx, templateID, targetID)
}

// cloneUpdates copies every update of srcTaskID onto dstTaskID,
// preserving content and type but not identity or timestamps.
func (m *Manager) cloneUpdates(ctx context.Context, srcTaskID, dstTaskID string) error {
	updates, err := m.store.ListTaskUpdates(ctx, m.userID, srcTaskID)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	clones := make([]domain.TaskUpdate, len(updates))
	for i, u := range updates {
		clones[i] = domain.TaskUpdate{
			TaskID:  dstTaskID,
			UserID:  m.userID,
			Content: u.Content,
			Type:    u.Type,
		}
	}
	return m.store.InsertTaskUpdates(ctx, clones)
}
