package domain

import "time"

// MaxAttachmentSize caps uploads at 15 MiB, enforced before any bytes
// reach object storage.
const MaxAttachmentSize = 15 * 1024 * 1024

// Attachment references a file stored in the object store and linked to
// a task.
type Attachment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	FileName  string    `json:"file_name"`
	FileURL   string    `json:"file_url"`
	FileSize  int64     `json:"file_size"`
	FileType  string    `json:"file_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
