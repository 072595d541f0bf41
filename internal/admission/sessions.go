package admission

import (
	"sync"
	"time"
)

// SessionManager is the in-process registry of live workflow sessions, keyed
// by the session id embedded in the operator's login token.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
	}
}

// Start registers a fresh session at the Intake stage.
func (m *SessionManager) Start(sessionID string, userID int64) *Session {
	s := &Session{
		ID:        sessionID,
		UserID:    userID,
		Stage:     StageIntake,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()

	return s
}

func (m *SessionManager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Remove(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// Count reports live sessions, for health reporting.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
