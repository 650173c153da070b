package domain

import "time"

// System log actions recorded for audit purposes.
const (
	ActionLogin   = "LOGIN"
	ActionRestore = "RESTORE"
	ActionBackup  = "BACKUP"
)

// SystemLogRecord is an audit entry. Records are delivered to the log
// queue fire-and-forget; a failed write is never surfaced to the user.
type SystemLogRecord struct {
	UserID    string            `json:"user_id"`
	Action    string            `json:"action"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
