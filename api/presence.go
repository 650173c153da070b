package api

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agiliza2b-source/tasks2/domain"
)

// presenceInterval is how often an active user's last-seen timestamp is
// refreshed. Requests inside the window are free.
const presenceInterval = 5 * time.Minute

type presenceTracker struct {
	store    Storage
	interval time.Duration
	seen     sync.Map // userID -> time.Time of last touch
}

func newPresenceTracker(store Storage) *presenceTracker {
	return &presenceTracker{store: store, interval: presenceInterval}
}

// Touch refreshes the owner's last-seen timestamp at most once per
// interval. The write happens off the request path and failures are
// swallowed; presence is best effort. The first sighting of a user in
// this process doubles as the session's login audit event.
func (p *presenceTracker) Touch(userID string) {
	now := time.Now()
	last, known := p.seen.Load(userID)
	if known && now.Sub(last.(time.Time)) < p.interval {
		return
	}
	p.seen.Store(userID, now)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if !known {
			p.store.LogEvent(ctx, domain.SystemLogRecord{
				UserID:    userID,
				Action:    domain.ActionLogin,
				Timestamp: now.UTC(),
			})
		}
		if err := p.store.TouchProfile(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Debug("presence touch failed")
		}
	}()
}
