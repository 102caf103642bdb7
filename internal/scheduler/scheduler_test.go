package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/line-edge/internal/engine"
	"github.com/yourusername/line-edge/internal/models"
)

type fakeRunner struct {
	mu        sync.Mutex
	calls     int
	err       error
	block     chan struct{}
	startOnce sync.Once
	started   chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{started: make(chan struct{})}
}

func (r *fakeRunner) Run(ctx context.Context, opts engine.RunOptions) (*engine.RunSummary, error) {
	r.mu.Lock()
	r.calls++
	block := r.block
	r.mu.Unlock()

	r.startOnce.Do(func() { close(r.started) })
	if block != nil {
		<-block
	}
	if r.err != nil {
		return nil, r.err
	}
	return &engine.RunSummary{Sport: opts.Sport}, nil
}

func (r *fakeRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestScheduleSportRejectsBadExpression(t *testing.T) {
	s := NewScheduler(newFakeRunner(), quietLogger())
	if err := s.ScheduleSport(models.SportNFL, "not a cron spec"); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestScheduleSportRejectsDuplicate(t *testing.T) {
	s := NewScheduler(newFakeRunner(), quietLogger())
	if err := s.ScheduleSport(models.SportNFL, "0 11 * * *"); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if err := s.ScheduleSport(models.SportNFL, "0 15 * * *"); err == nil {
		t.Fatalf("expected error for duplicate sport")
	}
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(newFakeRunner(), quietLogger())
	if err := s.Start(); err == nil {
		t.Fatalf("expected error when starting with no jobs")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewScheduler(newFakeRunner(), quietLogger())
	if err := s.ScheduleSport(models.SportNFL, "0 11 * * *"); err != nil {
		t.Fatalf("failed to schedule: %v", err)
	}
	if err := s.ScheduleSport(models.SportNBA, "30 11 * * *"); err != nil {
		t.Fatalf("failed to schedule second sport: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	if !s.IsRunning() {
		t.Errorf("expected scheduler running")
	}
	if err := s.Start(); err == nil {
		t.Errorf("expected error on double start")
	}
	if s.NextRun().IsZero() {
		t.Errorf("expected a next run while running")
	}
	if err := s.ScheduleSport(models.SportNHL, "0 12 * * *"); err == nil {
		t.Errorf("expected error scheduling while running")
	}
	if len(s.Sports()) != 2 {
		t.Errorf("expected 2 scheduled sports, got %d", len(s.Sports()))
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("failed to stop: %v", err)
	}
	if s.IsRunning() {
		t.Errorf("expected scheduler stopped")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}
}

func TestRunPassSkipsOverlappingTrigger(t *testing.T) {
	runner := newFakeRunner()
	runner.block = make(chan struct{})
	s := NewScheduler(runner, quietLogger())

	busy := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		s.runPass(models.SportNFL, busy)
		close(done)
	}()
	<-runner.started

	// A trigger firing mid-pass must return without starting another run
	s.runPass(models.SportNFL, busy)
	if runner.Calls() != 1 {
		t.Fatalf("expected overlapping trigger skipped, got %d runs", runner.Calls())
	}

	close(runner.block)
	<-done

	// Once the pass finishes the guard releases
	runner.mu.Lock()
	runner.block = nil
	runner.mu.Unlock()
	s.runPass(models.SportNFL, busy)
	if runner.Calls() != 2 {
		t.Errorf("expected next trigger to run, got %d runs", runner.Calls())
	}
}

func TestRunPassSurvivesFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("pass blew up")
	s := NewScheduler(runner, quietLogger())

	busy := make(chan struct{}, 1)
	s.runPass(models.SportNFL, busy)
	if runner.Calls() != 1 {
		t.Fatalf("expected one attempted run, got %d", runner.Calls())
	}

	// The failure must not leave the guard held
	s.runPass(models.SportNFL, busy)
	if runner.Calls() != 2 {
		t.Errorf("expected guard released after failure, got %d runs", runner.Calls())
	}
}

func TestSetPassTimeout(t *testing.T) {
	s := NewScheduler(newFakeRunner(), quietLogger())
	s.SetPassTimeout(5 * time.Minute)
	if s.passTimeout != 5*time.Minute {
		t.Errorf("expected timeout updated, got %v", s.passTimeout)
	}
	s.SetPassTimeout(0)
	if s.passTimeout != 5*time.Minute {
		t.Errorf("expected zero timeout ignored, got %v", s.passTimeout)
	}
}
