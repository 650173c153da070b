package api

import (
	"context"

	"github.com/agiliza2b-source/tasks2/board"
	"github.com/agiliza2b-source/tasks2/domain"
)

// Storage abstracts persistence for handlers: the mutation layer's store
// plus the pieces the board manager does not own (profiles, task
// updates, attachments, restore upserts, audit log).
type Storage interface {
	board.Store

	UpsertColumns(ctx context.Context, cols []domain.Column) error
	UpsertTasks(ctx context.Context, tasks []domain.Task) error

	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	TouchProfile(ctx context.Context, userID string) error

	UpdateTaskUpdate(ctx context.Context, u domain.TaskUpdate) error
	DeleteTaskUpdate(ctx context.Context, userID, id string) error

	ListAttachments(ctx context.Context, userID, taskID string) ([]domain.Attachment, error)
	UploadAttachment(ctx context.Context, userID, taskID, fileName, fileType string, data []byte) (domain.Attachment, error)
	DeleteAttachment(ctx context.Context, userID, id string) error

	LogEvent(ctx context.Context, rec domain.SystemLogRecord)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
