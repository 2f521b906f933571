// Package conversation holds per-session chat history in memory.
//
// Sessions are created lazily on first append and live for the process
// lifetime unless explicitly deleted. Turn order within a session is the
// LLM's context window, so appends to the same session are serialized.
package conversation

import "sync"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single immutable conversation entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Stats summarizes all active sessions.
type Stats struct {
	Sessions           int     `json:"total_sessions"`
	Turns              int     `json:"total_messages"`
	AvgTurnsPerSession float64 `json:"average_messages_per_session"`
}

// Store keeps ordered turn history keyed by session id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string][]Turn)}
}

// Append adds one turn to the session, creating it if absent.
func (s *Store) Append(sessionID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], Turn{Role: role, Content: content})
}

// History returns a copy of the session's turns in insertion order.
// Unknown ids yield an empty slice, not an error.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Count returns the number of turns in the session (0 for unknown ids).
func (s *Store) Count(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionID])
}

// Delete removes a session. It reports whether the session existed.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

// Sessions returns the ids of all active sessions.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Stats returns aggregate counts over all sessions.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, turns := range s.sessions {
		total += len(turns)
	}
	st := Stats{Sessions: len(s.sessions), Turns: total}
	if st.Sessions > 0 {
		st.AvgTurnsPerSession = float64(total) / float64(st.Sessions)
	}
	return st
}
