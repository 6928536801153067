package session

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/quotecatalog/pkg/errors"
	"github.com/angelmondragon/quotecatalog/pkg/logger"
)

const DefaultTTL = 24 * time.Hour

// Store persists sessions. Update applies fn to the stored session and saves
// the result; a failing fn leaves the stored session untouched.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "session not found").
		WithDetails(map[string]any{"session_id": id})
}

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Operations are serialized by one lock.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (m *MemoryStore) Create(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	s := New(now)
	m.entries[s.ID] = memoryEntry{session: s, expiresAt: now.Add(m.ttl)}
	return clone(s)
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return clone(entry.session)
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	working, err := clone(entry.session)
	if err != nil {
		return nil, err
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	now := m.now()
	working.UpdatedAt = now
	m.entries[id] = memoryEntry{session: working, expiresAt: now.Add(m.ttl)}
	return clone(working)
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration, logg *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 && logg != nil {
				logg.Debug(logg.WithField(ctx, "removed", n), "session.sweep")
			}
		}
	}
}

func (m *MemoryStore) lookup(id string) (memoryEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, notFound(id)
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		return memoryEntry{}, notFound(id)
	}
	return entry, nil
}
