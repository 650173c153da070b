package storage

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/agiliza2b-source/tasks2/domain"
)

// LogEvent enqueues an audit record. Delivery is fire-and-forget: a
// failed enqueue is logged and swallowed so audit writes can never break
// a user-facing operation.
func (s *Storage) LogEvent(ctx context.Context, rec domain.SystemLogRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Warn("system log marshal failed")
		return
	}
	if _, err := s.syslog.EnqueueMessage(ctx, string(payload), nil); err != nil {
		log.WithError(err).WithField("action", rec.Action).Warn("system log enqueue failed")
	}
}
