package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedLocks serializes read-modify-write sequences per aggregate ID:
// draft orders for the pricing pass, customers for cart mutation. Duplicate
// webhook deliveries and rapid double-sends from the same customer must not
// interleave either sequence.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock acquires the exclusive lock for one ID and returns the release func.
// Entries are reference-counted so the map does not grow with every ID ever
// locked.
func (l *keyedLocks) Lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
