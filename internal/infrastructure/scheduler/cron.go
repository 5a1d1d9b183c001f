package scheduler

import (
	"fmt"
	"sync"
	"time"

	"organizer/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron jobs.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger
	mu   sync.Mutex // To protect access to job management
}

// NewScheduler creates and starts a cron scheduler with seconds precision
// evaluating specs in loc.
func NewScheduler(loc *time.Location, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))
	c.Start()
	log.Info(fmt.Sprintf("Cron scheduler started (location %s).", loc))
	return &Scheduler{
		cron: c,
		log:  log,
	}
}

// AddJob adds a new job to the scheduler.
// spec follows the cron format with seconds (e.g., "0 30 9 * * *").
// Returns the EntryID of the added job and an error if any.
func (s *Scheduler) AddJob(spec string, cmd func()) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, cmd)
	if err != nil {
		s.log.Error("Failed to add cron job", err)
		return 0, fmt.Errorf("failed to add cron job: %w", err)
	}
	s.log.Debug(fmt.Sprintf("Added cron job with ID %d, spec: %s", id, spec))
	return id, nil
}

// AddSchedule adds a job driven by an arbitrary cron.Schedule.
func (s *Scheduler) AddSchedule(schedule cron.Schedule, cmd func()) cron.EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.cron.Schedule(schedule, cron.FuncJob(cmd))
	s.log.Debug(fmt.Sprintf("Added scheduled job with ID %d", id))
	return id
}

// RemoveJob removes a job from the scheduler by its EntryID.
func (s *Scheduler) RemoveJob(id cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Remove(id)
	s.log.Debug(fmt.Sprintf("Removed cron job with ID %d", id))
}

// Next returns the next activation time of the job, or zero if unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entry(id).Next
}

// Stop stops the cron scheduler and waits for running jobs to complete.
// Running jobs may call RemoveJob, so the lock is released before waiting.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	ctx := s.cron.Stop()
	s.mu.Unlock()

	<-ctx.Done()
	s.log.Info("Cron scheduler stopped.")
}

// GetEntries returns the list of scheduled entries. Useful for debugging.
func (s *Scheduler) GetEntries() []cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entries()
}
