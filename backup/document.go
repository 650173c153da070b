package backup

import (
	"time"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Version tags the backup schema. Bump only with a migration path for
// every older file still in the wild.
const Version = "1.0"

// product tag embedded in exported filenames.
const product = "agiliza2b"

// Metadata describes when and for whom a backup was taken.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	UserEmail string    `json:"user_email"`
	UserID    string    `json:"user_id"`
}

// Document is the full exported board snapshot: every column and every
// task (templates included) belonging to one owner. It exists only for
// the duration of an export or import.
type Document struct {
	Metadata Metadata        `json:"metadata"`
	Columns  []domain.Column `json:"columns"`
	Tasks    []domain.Task   `json:"tasks"`
}

// NewDocument assembles an export snapshot for the given owner.
func NewDocument(columns []domain.Column, tasks []domain.Task, owner domain.Owner, now time.Time) Document {
	return Document{
		Metadata: Metadata{
			Timestamp: now.UTC(),
			Version:   Version,
			UserEmail: owner.Email,
			UserID:    owner.ID,
		},
		Columns: columns,
		Tasks:   tasks,
	}
}

// Filename returns the deterministic export name for the given day,
// e.g. "backup-agiliza2b-2026-08-30.enc".
func Filename(now time.Time) string {
	return "backup-" + product + "-" + now.Format("2006-01-02") + ".enc"
}
