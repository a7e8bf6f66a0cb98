package study

import (
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Manager holds the live sessions, keyed by an opaque token handed to the
// client at session start. Sessions are in-memory only; a completed or
// abandoned session is simply dropped.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Start creates a session over the given cards and registers it.
func (m *Manager) Start(userID, classID uint, cards []Card) (string, *Session, error) {
	session, err := NewSession(userID, classID, cards)
	if err != nil {
		return "", nil, err
	}

	token, err := gonanoid.New()
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.sessions[token] = session
	m.mu.Unlock()
	return token, session, nil
}

func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	return session, ok
}

func (m *Manager) Remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
