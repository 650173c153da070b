package board

import (
	"context"
	"sync"
	"time"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Manager owns the in-memory task and column collections for one owner
// and is the only component that mutates them. Mutations are applied
// optimistically where the operation allows it: the local collection
// changes first, the remote write follows, and a rejected write either
// reverts the touched fields or reloads the canonical state, depending
// on the operation.
type Manager struct {
	mu      sync.Mutex
	store   Store
	userID  string
	tasks   []domain.Task
	columns []domain.Column

	// confirmDelete mirrors the owner's stored preference; when set,
	// destructive operations require an explicit confirmation flag.
	confirmDelete bool

	now func() time.Time
}

// NewManager creates a Manager for the given owner. Call Load before the
// first read.
func NewManager(store Store, userID string, confirmDelete bool) *Manager {
	return &Manager{store: store, userID: userID, confirmDelete: confirmDelete, now: time.Now}
}

// Load replaces the local collections with the store's canonical view.
func (m *Manager) Load(ctx context.Context) error {
	cols, err := m.store.ListColumns(ctx, m.userID)
	if err != nil {
		return err
	}
	tasks, err := m.store.ListTasks(ctx, m.userID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.columns = cols
	m.tasks = tasks
	m.mu.Unlock()
	return nil
}

// reload discards local state after a failed optimistic mutation. The
// original error wins over a reload error.
func (m *Manager) reload(ctx context.Context, cause error) error {
	if err := m.Load(ctx); err != nil {
		return cause
	}
	return cause
}

// Columns returns the columns in board order.
func (m *Manager) Columns() []domain.Column {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Column, len(m.columns))
	copy(out, m.columns)
	return out
}

// Tasks returns every task, templates included.
func (m *Manager) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Templates returns only the template tasks.
func (m *Manager) Templates() []domain.Task {
	return domain.Templates(m.Tasks())
}

// Filter returns the board view: non-template tasks passing the filter.
func (m *Manager) Filter(f domain.TaskFilter) []domain.Task {
	return domain.VisibleTasks(m.Tasks(), f, m.now())
}

// CreateTask inserts the candidate remotely and, once the store has
// assigned its identity, prepends it to the local collection. A rejected
// insert leaves local state untouched: there is no temporary-id scheme,
// so the optimistic apply happens only after the id is known.
func (m *Manager) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.UserID = m.userID
	if t.Status == "" {
		t.Status = domain.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if t.Color == "" {
		t.Color = domain.DefaultColor
	}

	created, err := m.store.InsertTask(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}

	m.mu.Lock()
	m.tasks = append([]domain.Task{created}, m.tasks...)
	m.mu.Unlock()
	return created, nil
}

// UpdateTask replaces the task's editable fields locally, then persists.
// On a rejected write the pre-mutation snapshot is restored and the
// error returned, so the local view never diverges silently.
func (m *Manager) UpdateTask(ctx context.Context, t domain.Task) error {
	m.mu.Lock()
	idx := m.taskIndexLocked(t.ID)
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	prev := m.tasks[idx]
	t.UserID = prev.UserID
	t.CreatedAt = prev.CreatedAt
	m.tasks[idx] = t
	m.mu.Unlock()

	if err := m.store.UpdateTask(ctx, t); err != nil {
		m.mu.Lock()
		if idx := m.taskIndexLocked(t.ID); idx >= 0 {
			m.tasks[idx] = prev
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// MoveTask reassigns the task to another column optimistically. A
// rejected write triggers a full reload, not a field-level undo.
func (m *Manager) MoveTask(ctx context.Context, taskID, columnID string) error {
	m.mu.Lock()
	idx := m.taskIndexLocked(taskID)
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.tasks[idx].ColumnID = columnID
	moved := m.tasks[idx]
	m.mu.Unlock()

	if err := m.store.UpdateTask(ctx, moved); err != nil {
		return m.reload(ctx, err)
	}
	return nil
}

// DeleteTask removes a task. When the owner's preference keeps the
// confirmation gate on, confirmed must be true.
func (m *Manager) DeleteTask(ctx context.Context, taskID string, confirmed bool) error {
	if m.confirmDelete && !confirmed {
		return ErrConfirmationRequired
	}
	if err := m.store.DeleteTask(ctx, m.userID, taskID); err != nil {
		return err
	}
	m.mu.Lock()
	m.tasks = deleteTaskLocked(m.tasks, taskID)
	m.mu.Unlock()
	return nil
}

// DuplicateTask copies a task with a fresh identity and a marked title.
// Duplicates are always plain tasks, even when the source is a template.
func (m *Manager) DuplicateTask(ctx context.Context, taskID string) (domain.Task, error) {
	m.mu.Lock()
	idx := m.taskIndexLocked(taskID)
	if idx < 0 {
		m.mu.Unlock()
		return domain.Task{}, ErrNotFound
	}
	src := m.tasks[idx]
	m.mu.Unlock()

	dup := src.Copy()
	dup.Title = src.Title + domain.CopySuffix
	dup.IsTemplate = false
	return m.CreateTask(ctx, dup)
}

// AddColumn appends a new column at the end of the board.
func (m *Manager) AddColumn(ctx context.Context, title string) (domain.Column, error) {
	if title == "" {
		title = "Nova Coluna"
	}
	m.mu.Lock()
	position := len(m.columns)
	m.mu.Unlock()

	created, err := m.store.InsertColumn(ctx, domain.Column{
		Title:    title,
		Position: position,
		Color:    domain.DefaultColor,
		UserID:   m.userID,
	})
	if err != nil {
		return domain.Column{}, err
	}

	m.mu.Lock()
	m.columns = append(m.columns, created)
	m.mu.Unlock()
	return created, nil
}

// UpdateColumn replaces a column's fields optimistically; a rejected
// write reloads the canonical state.
func (m *Manager) UpdateColumn(ctx context.Context, c domain.Column) error {
	m.mu.Lock()
	idx := m.columnIndexLocked(c.ID)
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	prev := m.columns[idx]
	c.UserID = prev.UserID
	c.Position = prev.Position
	m.columns[idx] = c
	m.mu.Unlock()

	if err := m.store.UpdateColumn(ctx, c); err != nil {
		return m.reload(ctx, err)
	}
	return nil
}

// DeleteColumn removes a column and prunes its tasks from the local
// collection. The store cascades the task deletion on its side; pruning
// here keeps the local view consistent regardless of cascade timing.
func (m *Manager) DeleteColumn(ctx context.Context, columnID string, confirmed bool) error {
	if m.confirmDelete && !confirmed {
		return ErrConfirmationRequired
	}
	if err := m.store.DeleteColumn(ctx, m.userID, columnID); err != nil {
		return err
	}

	m.mu.Lock()
	cols := m.columns[:0]
	for _, c := range m.columns {
		if c.ID != columnID {
			cols = append(cols, c)
		}
	}
	m.columns = cols
	tasks := m.tasks[:0]
	for _, t := range m.tasks {
		if t.ColumnID != columnID {
			tasks = append(tasks, t)
		}
	}
	m.tasks = tasks
	m.mu.Unlock()
	return nil
}

func (m *Manager) taskIndexLocked(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) columnIndexLocked(id string) int {
	for i, c := range m.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func deleteTaskLocked(tasks []domain.Task, id string) []domain.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
