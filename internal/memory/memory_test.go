package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

func TestGetOrCreateReturnsSameTranscript(t *testing.T) {
	s := NewStore(time.Hour, 0)

	tr := s.GetOrCreate("s1")
	tr.AppendUser("hello")

	again := s.GetOrCreate("s1")
	turns := again.Turns()
	if len(turns) != 1 || turns[0].Content != "hello" || turns[0].Role != domain.RoleUser {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Len())
	}
}

func TestReset(t *testing.T) {
	s := NewStore(time.Hour, 0)
	s.GetOrCreate("s1").AppendUser("hello")
	s.Reset("s1")

	if got := s.GetOrCreate("s1").Turns(); len(got) != 0 {
		t.Fatalf("expected empty transcript after reset, got %+v", got)
	}
}

func TestAcquireRejectsOverlap(t *testing.T) {
	s := NewStore(time.Hour, 0)

	release, err := s.Acquire("s1")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := s.Acquire("s1"); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}

	release()
	release2, err := s.Acquire("s1")
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	release2()
}

func TestTTLEviction(t *testing.T) {
	s := NewStore(time.Minute, 0)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.GetOrCreate("old").AppendUser("hello")

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	s.GetOrCreate("fresh")

	if s.Len() != 1 {
		t.Fatalf("expected expired session to be evicted, have %d", s.Len())
	}
	if got := s.GetOrCreate("old").Turns(); len(got) != 0 {
		t.Fatalf("expected recreated transcript to be empty, got %+v", got)
	}
}

func TestLRUEviction(t *testing.T) {
	s := NewStore(0, 2)

	now := time.Now()
	s.now = func() time.Time { return now }
	s.GetOrCreate("a")
	s.now = func() time.Time { return now.Add(time.Second) }
	s.GetOrCreate("b")
	s.now = func() time.Time { return now.Add(2 * time.Second) }
	s.GetOrCreate("c")

	if s.Len() != 2 {
		t.Fatalf("expected store bounded at 2 entries, got %d", s.Len())
	}
	// "a" was least recently used.
	s.GetOrCreate("a")
	if s.Len() != 2 {
		t.Fatalf("expected store to stay bounded, got %d", s.Len())
	}
}

func TestBusySessionSurvivesEviction(t *testing.T) {
	s := NewStore(time.Minute, 0)

	now := time.Now()
	s.now = func() time.Time { return now }
	release, err := s.Acquire("busy")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	s.now = func() time.Time { return now.Add(time.Hour) }
	s.GetOrCreate("other")

	if s.Len() != 2 {
		t.Fatalf("busy session must not be evicted, have %d", s.Len())
	}
	release()
}
