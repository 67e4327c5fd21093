package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/xtaxx12/BGR-SHRIMP/internal/quoting/domain"
	"github.com/xtaxx12/BGR-SHRIMP/platform/config"
)

// MemoryRepository keeps sessions in process memory. Used when Redis is
// not configured and in tests; expiry is checked lazily on read.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
}

// NewMemoryRepository creates the in-process session store.
func NewMemoryRepository(cfg config.SessionConfig) *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*domain.Session),
		ttl:      cfg.GetSessionTTL(),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if s.ExpiredAt(time.Now(), m.ttl) {
		m.mu.Lock()
		delete(m.sessions, userID)
		m.mu.Unlock()
		return nil, nil
	}
	return cloneSession(s)
}

func (m *MemoryRepository) Save(ctx context.Context, s *domain.Session) error {
	copied, err := cloneSession(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[s.UserID] = copied
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// cloneSession copies through JSON so callers never share pointers with
// the store, matching the Redis repository's semantics.
func cloneSession(s *domain.Session) (*domain.Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out domain.Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MemoryDeduper is the in-process dedupe window.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewMemoryDeduper creates the in-process message deduper.
func NewMemoryDeduper(cfg config.SessionConfig) *MemoryDeduper {
	return &MemoryDeduper{
		seen: make(map[string]time.Time),
		ttl:  cfg.GetDedupeTTL(),
	}
}

var _ Deduper = (*MemoryDeduper)(nil)

func (d *MemoryDeduper) MarkProcessed(ctx context.Context, messageID string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiry, ok := d.seen[messageID]; ok && now.Before(expiry) {
		return false, nil
	}

	for id, expiry := range d.seen {
		if now.After(expiry) {
			delete(d.seen, id)
		}
	}

	d.seen[messageID] = now.Add(d.ttl)
	return true, nil
}
