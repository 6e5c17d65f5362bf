package engine

import (
	"sync"

	"github.com/google/uuid"
)

// betLocks hands out one mutex per bet state so that all operations against
// the same bet are serialized while operations on different bets run freely.
type betLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newBetLocks() *betLocks {
	return &betLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *betLocks) lock(betID uuid.UUID) {
	l.mu.Lock()
	m, ok := l.locks[betID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[betID] = m
	}
	l.mu.Unlock()

	m.Lock()
}

func (l *betLocks) unlock(betID uuid.UUID) {
	l.mu.Lock()
	m := l.locks[betID]
	l.mu.Unlock()

	m.Unlock()
}

// drop forgets a settled bet's mutex. Safe to call once no operation can
// reach the bet anymore (its record is gone, so lookups fail before locking
// matters).
func (l *betLocks) drop(betID uuid.UUID) {
	l.mu.Lock()
	delete(l.locks, betID)
	l.mu.Unlock()
}
