package session

import "sync"

// Locks hands out one mutex per user id so the engine can serialize
// message handling per user without a global lock. Entries are reference
// counted and removed once the last holder releases them.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocks creates the per-user lock manager.
func NewLocks() *Locks {
	return &Locks{entries: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for userID, blocking while another message for
// the same user is being handled.
func (l *Locks) Lock(userID string) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &lockEntry{}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for userID.
func (l *Locks) Unlock(userID string) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		l.mu.Unlock()
		panic("session: unlock of unheld lock for " + userID)
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, userID)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
