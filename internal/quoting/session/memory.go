package session

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	slots     map[Slot]string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Sessions expire ttl after their
// last write; a zero ttl never expires.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Set(_ context.Context, sessionID string, slot Slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok || m.expired(sess) {
		sess = &memorySession{slots: make(map[Slot]string, len(Slots))}
		m.sessions[sessionID] = sess
	}
	sess.slots[slot] = value
	if m.ttl > 0 {
		sess.expiresAt = m.now().Add(m.ttl)
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string, slot Slot) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok || m.expired(sess) {
		return "", ErrNotFound
	}
	value, ok := sess.slots[slot]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryStore) Remove(_ context.Context, sessionID string, slot Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[sessionID]; ok {
		delete(sess.slots, slot)
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if m.expired(sess) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) expired(sess *memorySession) bool {
	return !sess.expiresAt.IsZero() && !m.now().Before(sess.expiresAt)
}
