// Package session holds the process-wide login state, the inactivity
// watchdog and the view navigator of the terminal.
package session

import (
	"sync"

	"bazarpos/internal/model"

	"github.com/google/uuid"
)

// Identity is the logged-in user. ID changes on every login so tokens issued
// for an earlier login can be told apart from the live one.
type Identity struct {
	ID      string
	Usuario string
	Rol     string
}

func (i Identity) EsAdmin() bool { return i.Rol == model.RolAdmin }

// Session is the single login slot of the terminal. It is safe for concurrent
// reads; writes happen only from the terminal's serialized paths.
type Session struct {
	mu       sync.RWMutex
	identity *Identity
}

func New() *Session { return &Session{} }

// Set records a successful login and returns the new identity.
func (s *Session) Set(usuario, rol string) Identity {
	id := Identity{ID: uuid.NewString(), Usuario: usuario, Rol: rol}
	s.mu.Lock()
	s.identity = &id
	s.mu.Unlock()
	return id
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}

// Current returns the logged-in identity, if any.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// IsCurrent reports whether sessionID belongs to the live login.
func (s *Session) IsCurrent(sessionID string) bool {
	id, ok := s.Current()
	return ok && id.ID == sessionID
}
