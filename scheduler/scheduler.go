// Package scheduler runs the background jobs of the intake service. Its only
// job today is the idle session sweeper: sessions untouched for longer than
// the store ttl are dropped at a fixed interval.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/fiche-dentaire/interfaces"
	"github.com/giygas/fiche-dentaire/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler sweeps expired sessions using dependency injection
type Scheduler struct {
	sessions  interfaces.SessionStore
	interval  time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler sweeping sessions every interval
func NewScheduler(sessions interfaces.SessionStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		sessions:  sessions,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the sweep and starts the scheduler in the background
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).Do(s.sweep)
	if err != nil {
		logging.Error("Failed to schedule session sweep", "error", err)
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Session sweeper started", "interval", s.interval.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweep drops the expired sessions
func (s *Scheduler) sweep() int {
	start := time.Now()
	removed := s.sessions.Expire()
	logging.Debug("Session sweep completed",
		"removed", removed,
		"remaining", s.sessions.Count(),
		"duration", time.Since(start).String(),
	)
	return removed
}
