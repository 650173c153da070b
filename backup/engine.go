package backup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agiliza2b-source/tasks2/domain"
)

// Store is the slice of the remote store the restore engine writes
// through. Upserts replace the full row on id conflict.
type Store interface {
	UpsertColumns(ctx context.Context, cols []domain.Column) error
	UpsertTasks(ctx context.Context, tasks []domain.Task) error
}

// AuditLog receives fire-and-forget audit records. Implementations must
// swallow their own failures.
type AuditLog interface {
	LogEvent(ctx context.Context, rec domain.SystemLogRecord)
}

// ConfirmFunc gates a restore whose backup belongs to a different owner.
// Returning false aborts the restore before any write.
type ConfirmFunc func(meta Metadata) bool

// ErrRestoreDeclined is returned when the cross-owner confirmation was
// refused. No state has been touched.
var ErrRestoreDeclined = errors.New("restore declined")

// Restore phases, used to report where a partial restore stopped.
const (
	PhaseColumns = "columns"
	PhaseTasks   = "tasks"
)

// RestoreFailure reports a remote-store rejection during restore. Rows
// upserted before the failure remain persisted; there is no rollback.
type RestoreFailure struct {
	Phase string
	Err   error
}

func (f *RestoreFailure) Error() string {
	return fmt.Sprintf("restore failed while upserting %s: %v", f.Phase, f.Err)
}

func (f *RestoreFailure) Unwrap() error { return f.Err }

// Report summarizes a completed restore.
type Report struct {
	Columns    int  `json:"columns"`
	Tasks      int  `json:"tasks"`
	CrossOwner bool `json:"cross_owner"`
}

// Engine orchestrates full-board export and import.
type Engine struct {
	store Store
	audit AuditLog
	now   func() time.Time
}

// NewEngine creates an Engine. audit may be nil.
func NewEngine(store Store, audit AuditLog) *Engine {
	return &Engine{store: store, audit: audit, now: time.Now}
}

// Export builds the encoded backup blob for the owner's full board.
func (e *Engine) Export(columns []domain.Column, tasks []domain.Task, owner domain.Owner) (string, error) {
	return Encode(NewDocument(columns, tasks, owner, e.now()))
}

// Restore decodes text and upserts its columns and tasks into the
// current owner's board. Every restored row is rewritten to ownerID
// before the upsert, so a restore never impersonates the backup's
// original owner. Columns land first since tasks reference them.
//
// Re-importing the same file is idempotent: rows are matched by id and
// replaced wholesale. Local edits to a row sharing an id with the backup
// are silently overwritten; that is the documented trade-off.
func (e *Engine) Restore(ctx context.Context, text, ownerID string, confirm ConfirmFunc) (Report, error) {
	doc, err := Decode(text)
	if err != nil {
		return Report{}, err
	}

	crossOwner := doc.Metadata.UserID != ownerID
	if crossOwner {
		if confirm == nil || !confirm(doc.Metadata) {
			return Report{}, ErrRestoreDeclined
		}
	}

	cols := make([]domain.Column, len(doc.Columns))
	for i, c := range doc.Columns {
		c.UserID = ownerID
		cols[i] = c
	}
	tasks := make([]domain.Task, len(doc.Tasks))
	for i, t := range doc.Tasks {
		t.UserID = ownerID
		tasks[i] = t
	}

	if len(cols) > 0 {
		if err := e.store.UpsertColumns(ctx, cols); err != nil {
			return Report{}, &RestoreFailure{Phase: PhaseColumns, Err: err}
		}
	}
	if len(tasks) > 0 {
		if err := e.store.UpsertTasks(ctx, tasks); err != nil {
			return Report{}, &RestoreFailure{Phase: PhaseTasks, Err: err}
		}
	}

	if e.audit != nil {
		e.audit.LogEvent(ctx, domain.SystemLogRecord{
			UserID: ownerID,
			Action: domain.ActionRestore,
			Details: map[string]string{
				"source_owner": doc.Metadata.UserID,
				"columns":      strconv.Itoa(len(cols)),
				"tasks":        strconv.Itoa(len(tasks)),
			},
			Timestamp: e.now().UTC(),
		})
	}

	return Report{Columns: len(cols), Tasks: len(tasks), CrossOwner: crossOwner}, nil
}
