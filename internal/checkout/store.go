package checkout

import (
	"context"
	"sync"
	"time"
)

// Store persists checkout sessions and their busy flag. A session has a
// single flag: while one asynchronous action holds it no other action may
// start on that session.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	// AcquireBusy claims the session flag for action and reports false when
	// any action already holds it.
	AcquireBusy(ctx context.Context, id string, action Action) (bool, error)
	// ReleaseBusy clears the flag if action still holds it.
	ReleaseBusy(ctx context.Context, id string, action Action) error
	// InFlight reports whether an asynchronous action holds the flag.
	InFlight(ctx context.Context, id string) (bool, error)
}

type busyFlag struct {
	action Action
	until  time.Time
}

type memoryEntry struct {
	session *Session
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Suitable for a single instance.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	busy     map[string]busyFlag
	ttl      time.Duration
	busyTTL  time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl, busyTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		busy:     make(map[string]busyFlag),
		ttl:      ttl,
		busyTTL:  busyTTL,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.ttl > 0 && m.now().After(entry.expires) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return entry.session.clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = memoryEntry{session: sess.clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.busy, busyKey(id))
	return nil
}

func (m *MemoryStore) AcquireBusy(ctx context.Context, id string, action Action) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := busyKey(id)
	if flag, ok := m.busy[key]; ok && m.now().Before(flag.until) {
		return false, nil
	}
	m.busy[key] = busyFlag{action: action, until: m.now().Add(m.busyTTL)}
	return true, nil
}

func (m *MemoryStore) ReleaseBusy(ctx context.Context, id string, action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := busyKey(id)
	if flag, ok := m.busy[key]; ok && flag.action == action {
		delete(m.busy, key)
	}
	return nil
}

func (m *MemoryStore) InFlight(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flag, ok := m.busy[busyKey(id)]
	return ok && m.now().Before(flag.until), nil
}

func sessionKey(id string) string {
	return "checkout:session:" + id
}

func busyKey(id string) string {
	return "checkout:busy:" + id
}
