package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"alias-heaven-calculator/internal/models"
)

// Store keeps each visitor's calculator input in memory. Nothing is
// persisted; everything is gone when the process exits.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	input   models.Input
	touched time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create starts a session with a zero Input and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{touched: s.now()}
	return id
}

// Get returns a copy of the session's input and refreshes its idle timer.
func (s *Store) Get(id string) (models.Input, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return models.Input{}, false
	}
	e.touched = s.now()
	return e.input, true
}

// Update applies fn to the session's input under the store lock and returns
// the new value. fn must go through the Input setters so counters stay clamped.
func (s *Store) Update(id string, fn func(*models.Input)) (models.Input, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return models.Input{}, false
	}
	fn(&e.input)
	e.touched = s.now()
	return e.input, true
}

// Delete removes a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for id, e := range s.sessions {
		if e.touched.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// StartJanitor sweeps every interval until ctx is done. onSweep, if set,
// is called after each pass with the number removed and the number left.
func (s *Store) StartJanitor(ctx context.Context, every, ttl time.Duration, onSweep func(removed, left int)) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				removed := s.Sweep(ttl)
				if onSweep != nil {
					onSweep(removed, s.Count())
				}
			}
		}
	}()
}
