// Package session holds the answers of in-progress intake forms. Each
// session is keyed by a random UUID and isolated from the others; the store
// is safe for concurrent use by the HTTP handlers and the idle sweeper.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giygas/fiche-dentaire/form"
	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
	"github.com/giygas/fiche-dentaire/metrics"
)

// Compile-time check to ensure Store implements SessionStore
var _ interfaces.SessionStore = (*Store)(nil)

// ErrNotFound is returned for an unknown or expired session id
var ErrNotFound = errors.New("session not found")

type entry struct {
	answers    form.Answers
	generated  string
	lastAccess time.Time
}

// Store is an in-memory session map
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates an empty store. Sessions idle longer than ttl are
// dropped by Expire; a ttl of zero keeps them forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a session on a fresh form and returns its id
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &entry{answers: form.Defaults(), lastAccess: s.now()}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	logging.Debug("Session created", "session_id", id)
	return id
}

// touch returns the entry for id and refreshes its access time.
// Callers must hold the write lock.
func (s *Store) touch(id string) (*entry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.lastAccess = s.now()
	return e, nil
}

// Get is Snapshot under the name used by the handlers
func (s *Store) Get(id string) (form.Answers, error) {
	return s.Snapshot(id)
}

// Snapshot returns the current answers of id. The result is a copy and is
// not affected by later merges.
func (s *Store) Snapshot(id string) (form.Answers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return form.Answers{}, err
	}
	return form.NewAnswers(e.answers.Map()), nil
}

// Merge sets every answer in values, overwriting previous ones. An empty
// answer removes the field. Values are validated first; on error nothing
// is applied.
func (s *Store) Merge(id string, values map[string]form.Answer) (form.Answers, error) {
	for name, v := range values {
		if err := form.Validate(name, v); err != nil {
			return form.Answers{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return form.Answers{}, err
	}

	answers := e.answers
	for name, v := range values {
		answers = answers.With(name, v)
	}
	e.answers = answers
	return answers, nil
}

// Reset brings id back to the state of a freshly created session
func (s *Store) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return err
	}
	e.answers = form.Defaults()
	e.generated = ""
	return nil
}

// Delete drops id
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.SessionsActive.Set(float64(count))
	return nil
}

// SetGeneratedText keeps the last text report generated for id
func (s *Store) SetGeneratedText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return err
	}
	e.generated = text
	return nil
}

// GeneratedText returns the last text report generated for id, empty if none
func (s *Store) GeneratedText(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return "", err
	}
	return e.generated, nil
}

// LastAccess reports when id was last used, without refreshing it
func (s *Store) LastAccess(id string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.lastAccess, nil
}

// Count is the number of open sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire drops the sessions idle longer than the ttl and returns how many
// were removed
func (s *Store) Expire() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	if removed > 0 {
		logging.Info("Expired idle sessions", "removed", removed, "remaining", count)
	}
	return removed
}
