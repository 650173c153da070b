package api

import (
	"context"
	"sync"

	"github.com/agiliza2b-source/tasks2/board"
)

// managerPool hands out one board.Manager per owner. The first request
// for an owner loads their profile preference and the canonical board;
// later requests reuse the loaded manager.
type managerPool struct {
	mu       sync.Mutex
	store    Storage
	managers map[string]*board.Manager
}

func newManagerPool(store Storage) *managerPool {
	return &managerPool{store: store, managers: make(map[string]*board.Manager)}
}

func (p *managerPool) get(ctx context.Context, userID string) (*board.Manager, error) {
	p.mu.Lock()
	if m, ok := p.managers[userID]; ok {
		p.mu.Unlock()
		return m, nil
	}
	p.mu.Unlock()

	confirmDelete := false
	profile, err := p.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		confirmDelete = profile.ConfirmBeforeDelete
	}

	m := board.NewManager(p.store, userID, confirmDelete)
	if err := m.Load(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.managers[userID]; ok {
		return existing, nil
	}
	p.managers[userID] = m
	return m, nil
}

// invalidate drops an owner's manager so the next request reloads from
// the store. Used after a restore rewrites the board underneath it.
func (p *managerPool) invalidate(userID string) {
	p.mu.Lock()
	delete(p.managers, userID)
	p.mu.Unlock()
}
