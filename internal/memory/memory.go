// Package memory implements the per-session conversation memory store.
package memory

import (
	"sync"
	"time"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

// Transcript holds the ordered prior turns of one session. It is not
// internally synchronized: the store's single-flight guard ensures at most
// one submission mutates a transcript at a time.
type Transcript struct {
	turns []domain.Turn
}

// AppendUser appends a user turn.
func (t *Transcript) AppendUser(content string) {
	t.turns = append(t.turns, domain.Turn{Role: domain.RoleUser, Content: content})
}

// AppendAssistant appends an assistant turn.
func (t *Transcript) AppendAssistant(content string) {
	t.turns = append(t.turns, domain.Turn{Role: domain.RoleAssistant, Content: content})
}

// Turns returns a copy of the recorded turns in order.
func (t *Transcript) Turns() []domain.Turn {
	out := make([]domain.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

type entry struct {
	transcript *Transcript
	lastUsed   time.Time
	busy       bool
}

// Store maps session ids to transcripts. Entries are created lazily and
// evicted by TTL and by an LRU bound so the map does not grow for the
// process lifetime.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewStore creates a session store. A non-positive ttl disables TTL
// eviction; a non-positive maxEntries disables the LRU bound.
func NewStore(ttl time.Duration, maxEntries int) *Store {
	return &Store{
		sessions:   make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// GetOrCreate returns the transcript for a session id, creating an empty one
// on first reference.
func (s *Store) GetOrCreate(sessionID string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{transcript: &Transcript{}}
		s.sessions[sessionID] = e
	}
	e.lastUsed = s.now()
	return e.transcript
}

// Acquire marks a session as having a submission in flight and returns a
// release function. It returns domain.ErrSessionBusy when a prior submission
// for the same session has not released yet.
func (s *Store) Acquire(sessionID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{transcript: &Transcript{}}
		s.sessions[sessionID] = e
	}
	if e.busy {
		return nil, domain.ErrSessionBusy
	}
	e.busy = true
	e.lastUsed = s.now()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.sessions[sessionID]; ok {
			cur.busy = false
			cur.lastUsed = s.now()
		}
	}, nil
}

// Reset drops the transcript for a session id.
func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictLocked drops expired entries, then trims to the LRU bound. Busy
// entries are never evicted.
func (s *Store) evictLocked() {
	now := s.now()

	if s.ttl > 0 {
		for id, e := range s.sessions {
			if !e.busy && now.Sub(e.lastUsed) > s.ttl {
				delete(s.sessions, id)
			}
		}
	}

	if s.maxEntries <= 0 {
		return
	}
	for len(s.sessions) >= s.maxEntries {
		oldestID := ""
		var oldest time.Time
		for id, e := range s.sessions {
			if e.busy {
				continue
			}
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID = id
				oldest = e.lastUsed
			}
		}
		if oldestID == "" {
			return
		}
		delete(s.sessions, oldestID)
	}
}
