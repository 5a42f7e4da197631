// Package session keeps the per-user conversation state between chat messages.
package session

import (
	"slices"
	"sync"
)

// Session is the in-memory conversation state of one user. It mirrors the
// user's stored addresses and adds the volatile current address and search flag.
type Session struct {
	emails         []string
	current        string
	awaitingSearch bool
}

// Emails returns a copy of the owned addresses in creation order
func (s *Session) Emails() []string {
	return slices.Clone(s.emails)
}

// Current returns the active address, if any
func (s *Session) Current() (string, bool) {
	return s.current, s.current != ""
}

// SetCurrent makes addr the active address. Addresses the user does not own are rejected.
func (s *Session) SetCurrent(addr string) bool {
	if !slices.Contains(s.emails, addr) {
		return false
	}
	s.current = addr
	return true
}

// AppendEmail records a newly created address and makes it current. Appending
// an address that is already owned only changes the current address.
func (s *Session) AppendEmail(addr string) {
	if addr == "" {
		return
	}
	if !slices.Contains(s.emails, addr) {
		s.emails = append(s.emails, addr)
	}
	s.current = addr
}

// Sync replaces the owned list with the stored one. When no valid current
// address remains, the most recent stored address becomes current.
func (s *Session) Sync(stored []string) {
	s.emails = dedupe(stored)
	if s.current != "" && !slices.Contains(s.emails, s.current) {
		s.current = ""
	}
	if s.current == "" && len(s.emails) > 0 {
		s.current = s.emails[len(s.emails)-1]
	}
}

// Reset starts the conversation over from the stored list
func (s *Session) Reset(stored []string) {
	s.current = ""
	s.awaitingSearch = false
	s.Sync(stored)
}

// EnterSearchMode makes the next text message be read as an address to search
func (s *Session) EnterSearchMode() {
	s.awaitingSearch = true
}

// ExitSearchMode returns the session to menu handling
func (s *Session) ExitSearchMode() {
	s.awaitingSearch = false
}

// AwaitingSearch reports whether the next text message is a search address
func (s *Session) AwaitingSearch() bool {
	return s.awaitingSearch
}

func dedupe(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// Manager hands out one Session per user id. Sessions live until the process exits.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session of userID, creating an empty one on first use
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	return s
}

// Len returns the number of sessions created so far
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
