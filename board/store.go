package board

import (
	"context"
	"errors"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Store abstracts the remote table store for the mutation layer. It is
// the sole writer for board entities; reads return the store's canonical
// ordering (columns by position ascending, tasks by creation time
// descending). Deleting a column transitively deletes its tasks; that
// cascade is a contract of the store, not of this package.
type Store interface {
	ListColumns(ctx context.Context, userID string) ([]domain.Column, error)
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)

	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) error
	DeleteTask(ctx context.Context, userID, id string) error

	InsertColumn(ctx context.Context, c domain.Column) (domain.Column, error)
	UpdateColumn(ctx context.Context, c domain.Column) error
	DeleteColumn(ctx context.Context, userID, id string) error

	ListTaskUpdates(ctx context.Context, userID, taskID string) ([]domain.TaskUpdate, error)
	InsertTaskUpdates(ctx context.Context, updates []domain.TaskUpdate) error
}

var (
	// ErrNotFound is returned when an operation names an id absent from
	// the local collections.
	ErrNotFound = errors.New("entity not found")

	// ErrConfirmationRequired is returned by destructive operations when
	// the owner's preference demands an explicit confirmation that was
	// not supplied.
	ErrConfirmationRequired = errors.New("confirmation required")
)
