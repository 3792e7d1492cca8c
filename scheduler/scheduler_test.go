package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/giygas/fiche-dentaire/form"
)

// mockSessionStore counts the sweeps it receives
type mockSessionStore struct {
	expireCalls atomic.Int32
	expired     int
	count       int
}

func (m *mockSessionStore) Create() string { return "id" }
func (m *mockSessionStore) Delete(id string) error { return nil }
func (m *mockSessionStore) Count() int { return m.count }
func (m *mockSessionStore) Reset(id string) error { return nil }
func (m *mockSessionStore) SetGeneratedText(id, text string) error {
	return nil
}
func (m *mockSessionStore) GeneratedText(id string) (string, error) { return "", nil }
func (m *mockSessionStore) LastAccess(id string) (time.Time, error) {
	return time.Time{}, nil
}
func (m *mockSessionStore) Snapshot(id string) (form.Answers, error) {
	return form.Answers{}, nil
}
func (m *mockSessionStore) Merge(id string, values map[string]form.Answer) (form.Answers, error) {
	return form.Answers{}, nil
}

func (m *mockSessionStore) Expire() int {
	m.expireCalls.Add(1)
	return m.expired
}

func TestNewScheduler(t *testing.T) {
	store := &mockSessionStore{}
	s := NewScheduler(store, time.Minute)

	if s.sessions != store {
		t.Error("scheduler should keep the injected session store")
	}
	if s.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", s.interval)
	}
	if s.scheduler == nil {
		t.Error("gocron scheduler should be initialized")
	}
}

func TestSweep(t *testing.T) {
	store := &mockSessionStore{expired: 3, count: 2}
	s := NewScheduler(store, time.Minute)

	if removed := s.sweep(); removed != 3 {
		t.Errorf("sweep() = %d, want 3", removed)
	}
	if calls := store.expireCalls.Load(); calls != 1 {
		t.Errorf("Expire called %d times, want 1", calls)
	}
}

func TestStartRunsSweeps(t *testing.T) {
	store := &mockSessionStore{}
	s := NewScheduler(store, 20*time.Millisecond)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for store.expireCalls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls := store.expireCalls.Load(); calls < 2 {
		t.Errorf("expected repeated sweeps, got %d", calls)
	}
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		s := NewScheduler(&mockSessionStore{}, interval)
		if err := s.Start(); err == nil {
			t.Errorf("Start() with interval %v should fail", interval)
			s.Stop()
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	s := NewScheduler(&mockSessionStore{}, time.Minute)
	s.Stop()
}
