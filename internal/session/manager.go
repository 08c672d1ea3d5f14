package session

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"tutorchat-backend/internal/assistant"
	"tutorchat-backend/internal/thread"
	"tutorchat-backend/internal/transcript"
)

// Factories builds the per-session component instances. Every session gets
// its own transcript, continuity provider and protocol client; nothing is
// shared between sessions.
type Factories struct {
	// Welcome seeds each new transcript.
	Welcome string
	// NewClient builds the protocol client for a new session.
	NewClient func() assistant.Client
	// NewThreads builds the continuity provider for a new session.
	NewThreads func() thread.Provider
}

// Manager owns the live sessions, keyed by session id. One session maps to
// one chat widget instance.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*Session
	factories Factories
}

// NewManager creates a session manager using the given component factories.
func NewManager(f Factories) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		factories: f,
	}
}

// Create builds a fresh session with fully independent components and
// registers it.
func (m *Manager) Create() *Session {
	s := NewSession(
		m.factories.NewClient(),
		m.factories.NewThreads(),
		transcript.NewStore(m.factories.Welcome),
	)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[SessionManager] Created session %s", s.ID)
	return s
}

// Get returns the session with the given id, if it exists.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops the session with the given id. In-flight work is abandoned:
// its late updates land on a transcript nothing references anymore.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
