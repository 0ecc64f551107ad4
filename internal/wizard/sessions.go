package wizard

import (
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live wizard sessions by id. Sessions are per-user; lookup
// checks ownership so one user cannot drive another's wizard.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Wizard
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Wizard)}
}

func (m *Manager) Add(w *Wizard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[w.ID] = w
}

func (m *Manager) Get(id, userID uuid.UUID) (*Wizard, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.sessions[id]
	if !ok || w.UserID != userID {
		return nil, false
	}
	return w, true
}

// Remove closes the session and drops it from the registry.
func (m *Manager) Remove(id, userID uuid.UUID) bool {
	m.mu.Lock()
	w, ok := m.sessions[id]
	if !ok || w.UserID != userID {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, id)
	m.mu.Unlock()
	w.Close()
	return true
}
