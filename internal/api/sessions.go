package api

import (
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
	"github.com/google/uuid"
)

// DefaultMaxSessions bounds memory held by uploaded tables.
const DefaultMaxSessions = 100

// Session is one user's workspace: at most one dataset at a time.
type Session struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	LastAccessed time.Time     `json:"last_accessed"`
	Table        *ingest.Table `json:"-"`
}

// SessionStore keeps sessions in memory. Nothing is persisted.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	now         func() time.Time
}

// NewSessionStore creates a store holding at most maxSessions sessions
// (DefaultMaxSessions when <= 0). The least recently used session is evicted
// when the limit is reached.
func NewSessionStore(maxSessions int) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create starts an empty session.
func (s *SessionStore) Create() Session {
	now := s.now()
	sess := &Session{ID: uuid.New().String(), CreatedAt: now, LastAccessed: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a snapshot of the session and marks it accessed.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.LastAccessed = s.now()
	return *sess, true
}

// SetTable replaces the session's dataset wholesale.
func (s *SessionStore) SetTable(id string, t *ingest.Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Table = t
	sess.LastAccessed = s.now()
	return true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupOlderThan drops sessions idle for longer than maxAge and returns how many were removed.
func (s *SessionStore) CleanupOlderThan(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastAccessed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) evictOldestLocked() {
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].LastAccessed.Before(s.sessions[ids[j]].LastAccessed)
	})
	for len(s.sessions) >= s.maxSessions && len(ids) > 0 {
		delete(s.sessions, ids[0])
		ids = ids[1:]
	}
}
