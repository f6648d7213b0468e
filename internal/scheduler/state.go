package scheduler

import (
	"sync"
	"time"
)

// State holds the mutable run state shared between the publish loop, the
// ingestion pipeline, and the administrative surface. Counters are
// per-session: a restart resets them, while the SQLite archive keeps the
// durable history.
type State struct {
	mu            sync.Mutex
	paused        bool
	posted        int
	filtered      int
	lastPostAt    time.Time
	lastMessageID int
}

// Snapshot is a read-only copy of the run state.
type Snapshot struct {
	Paused        bool
	Posted        int
	Filtered      int
	LastPostAt    time.Time
	LastMessageID int
}

// NewState creates a State in the RUNNING position.
func NewState() *State {
	return &State{}
}

// Pause suspends publishing. Ingestion and the timer loop keep running.
func (s *State) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume re-enables publishing.
func (s *State) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports whether publishing is suspended.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// IncFiltered counts one message rejected by the relevance filter.
func (s *State) IncFiltered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtered++
}

// RecordPublish counts one successful publication.
func (s *State) RecordPublish(messageID int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted++
	s.lastMessageID = messageID
	s.lastPostAt = at
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Paused:        s.paused,
		Posted:        s.posted,
		Filtered:      s.filtered,
		LastPostAt:    s.lastPostAt,
		LastMessageID: s.lastMessageID,
	}
}
