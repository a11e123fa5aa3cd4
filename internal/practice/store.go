package practice

import (
	"sync"
	"time"

	"github.com/example/hamprep/pkg/models"
)

// Test is an active practice test
type Test struct {
	ID        string            `json:"id"` // study session id
	UserID    string            `json:"-"`
	Questions []models.Question `json:"-"`
	StartedAt time.Time         `json:"startedAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Store keeps at most one active test per user. Entries expire after a TTL;
// expired entries are invisible to readers and dropped by Sweep.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	tests map[string]*Test
}

// NewStore creates a store. A nil clock uses time.Now.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{ttl: ttl, now: now, tests: make(map[string]*Test)}
}

// Put makes t the user's active test, replacing any previous one, and sets
// its expiry.
func (s *Store) Put(t *Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ExpiresAt = s.now().Add(s.ttl)
	s.tests[t.UserID] = t
}

// Get returns the user's active test.
func (s *Store) Get(userID string) (*Test, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[userID]
	if !ok || s.expired(t) {
		return nil, false
	}
	return t, true
}

// Take removes and returns the user's active test.
func (s *Store) Take(userID string) (*Test, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[userID]
	if !ok {
		return nil, false
	}
	delete(s.tests, userID)
	if s.expired(t) {
		return nil, false
	}
	return t, true
}

// Restore puts back a test removed by Take without touching its expiry,
// unless the user has started another test in the meantime.
func (s *Store) Restore(t *Test) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tests[t.UserID]; !ok {
		s.tests[t.UserID] = t
	}
}

// Sweep drops expired tests and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, t := range s.tests {
		if s.expired(t) {
			delete(s.tests, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored tests, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tests)
}

func (s *Store) expired(t *Test) bool {
	return !s.now().Before(t.ExpiresAt)
}
