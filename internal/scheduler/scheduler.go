// Package scheduler triggers recurring sync passes per sport on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/engine"
	"github.com/yourusername/line-edge/internal/models"
)

// DefaultPassTimeout bounds one scheduled pass. A pass that cannot finish in
// this window is aborted; the next trigger starts clean.
const DefaultPassTimeout = 30 * time.Minute

// PassRunner executes one sync pass for a sport
type PassRunner interface {
	Run(ctx context.Context, opts engine.RunOptions) (*engine.RunSummary, error)
}

// Scheduler manages the per-sport cron jobs. Each sport gets its own
// schedule and its own overlap guard: a trigger that fires while the
// previous pass for that sport is still running is skipped, not queued.
type Scheduler struct {
	cron        *cron.Cron
	runner      PassRunner
	logger      *logrus.Logger
	passTimeout time.Duration
	mu          sync.RWMutex
	isRunning   bool
	jobIDs      map[models.Sport]cron.EntryID
}

// NewScheduler creates a scheduler. All cron expressions evaluate in UTC.
func NewScheduler(runner PassRunner, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		runner:      runner,
		logger:      logger,
		passTimeout: DefaultPassTimeout,
		jobIDs:      make(map[models.Sport]cron.EntryID),
	}
}

// SetPassTimeout overrides the per-pass deadline
func (s *Scheduler) SetPassTimeout(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timeout > 0 {
		s.passTimeout = timeout
	}
}

// ScheduleSport registers a recurring sync pass for one sport
func (s *Scheduler) ScheduleSport(sport models.Sport, cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, ok := s.jobIDs[sport]; ok {
		return fmt.Errorf("sport %s is already scheduled", sport)
	}

	busy := make(chan struct{}, 1)
	entryID, err := s.cron.AddFunc(cronExpression, func() {
		s.runPass(sport, busy)
	})
	if err != nil {
		return fmt.Errorf("failed to add job for %s: %w", sport, err)
	}

	s.jobIDs[sport] = entryID
	s.logger.WithFields(logrus.Fields{
		"sport":    sport,
		"schedule": cronExpression,
	}).Info("Scheduled recurring sync pass")

	return nil
}

// runPass executes one triggered pass, skipping when the previous pass for
// the same sport has not finished
func (s *Scheduler) runPass(sport models.Sport, busy chan struct{}) {
	select {
	case busy <- struct{}{}:
	default:
		s.logger.WithField("sport", sport).Warn("Previous sync pass still running, skipping trigger")
		return
	}
	defer func() { <-busy }()

	s.mu.RLock()
	timeout := s.passTimeout
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	summary, err := s.runner.Run(ctx, engine.RunOptions{Sport: sport})
	if err != nil {
		s.logger.WithError(err).WithField("sport", sport).Error("Scheduled sync pass failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"sport":           sport,
		"duration":        summary.Duration,
		"games_processed": summary.GamesProcessed,
		"predictions":     summary.Predictions,
	}).Info("Scheduled sync pass completed")
}

// Start starts the cron loop
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the cron loop and waits for in-flight passes to finish, up to
// the pass timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
	case <-time.After(s.passTimeout):
		s.logger.Warn("Timed out waiting for in-flight passes to finish")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest upcoming trigger across all sports, zero when
// nothing is scheduled
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// Sports returns the sports with a registered schedule
func (s *Scheduler) Sports() []models.Sport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sports := make([]models.Sport, 0, len(s.jobIDs))
	for sport := range s.jobIDs {
		sports = append(sports, sport)
	}
	return sports
}
