package service

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/azhao/scanpay/internal/allocator"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionManager holds the live split sessions. Each session owns one
// allocator; people and assignments live only as long as the session does.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*allocator.Allocator
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*allocator.Allocator)}
}

// Create starts a new session with a fresh allocator (seeded with one
// person) and returns its id.
func (m *SessionManager) Create() string {
	id := uuid.New().String()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = allocator.New()
	return id
}

// Get returns the allocator for a session id.
func (m *SessionManager) Get(id string) (*allocator.Allocator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return a, nil
}

// Delete removes a session. Unknown ids are a no-op.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
