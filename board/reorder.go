package board

import (
	"context"
	"sync"

	"github.com/agiliza2b-source/tasks2/domain"
)

// ReorderColumns moves the source column to the target column's index
// and reassigns position 0..N-1 across the new order. The local apply is
// optimistic; persistence fires one update per column without pairwise
// waiting, since each touches a disjoint row. There is no batch
// transaction behind these writes: a partial failure leaves mixed
// positions persisted, so the first error is returned and the caller
// should reload.
func (m *Manager) ReorderColumns(ctx context.Context, sourceID, targetID string) error {
	m.mu.Lock()
	srcIdx := m.columnIndexLocked(sourceID)
	dstIdx := m.columnIndexLocked(targetID)
	if srcIdx < 0 || dstIdx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}

	next := make([]domain.Column, 0, len(m.columns))
	next = append(next, m.columns[:srcIdx]...)
	next = append(next, m.columns[srcIdx+1:]...)
	moved := m.columns[srcIdx]

	next = append(next, domain.Column{})
	copy(next[dstIdx+1:], next[dstIdx:])
	next[dstIdx] = moved

	for i := range next {
		next[i].Position = i
	}
	m.columns = next
	updates := make([]domain.Column, len(next))
	copy(updates, next)
	m.mu.Unlock()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for _, c := range updates {
		wg.Add(1)
		go func(col domain.Column) {
			defer wg.Done()
			if err := m.store.UpdateColumn(ctx, col); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return firstErr
}
