package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/tasks"
)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// SweepScheduler periodically removes dangling references from the catalog.
// With a queue attached each tick enqueues a sweep task, so retries and
// status tracking come from backlite; otherwise the sweep runs inline.
type SweepScheduler struct {
	schedule string
	queue    Enqueuer
	sweeper  tasks.Sweeper
	log      logrus.FieldLogger

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSweepScheduler creates a scheduler for schedule. queue may be nil.
func NewSweepScheduler(schedule string, queue Enqueuer, sweeper tasks.Sweeper, log logrus.FieldLogger) *SweepScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SweepScheduler{
		schedule: schedule,
		queue:    queue,
		sweeper:  sweeper,
		log:      log.WithField("component", "sweep_scheduler"),
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler. It stops on its own once ctx is done.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.queue == nil && s.sweeper == nil {
		return fmt.Errorf("sweep scheduler needs a queue or a sweeper")
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(cancelCtx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunAfter(s.schedule, time.Now())
	s.log.WithFields(logrus.Fields{
		"schedule":    s.schedule,
		"description": Describe(s.schedule),
		"next_run":    next,
	}).Info("Sweep scheduler started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancelFunc()
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.cancelFunc = nil
	s.log.Info("Sweep scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *SweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur, nil when stopped.
func (s *SweepScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow triggers one sweep immediately, outside the schedule.
func (s *SweepScheduler) RunNow(ctx context.Context) {
	s.run(ctx)
}

func (s *SweepScheduler) run(ctx context.Context) {
	if s.queue != nil {
		id, err := s.queue.Enqueue(tasks.SweepReferencesTask{Trigger: "schedule"})
		if err != nil {
			s.log.WithError(err).Error("Failed to enqueue reference sweep")
			return
		}
		s.log.WithField("task_id", id).Debug("Reference sweep enqueued")
		return
	}

	report, err := s.sweeper.SweepDanglingReferences(ctx)
	if err != nil {
		s.log.WithError(err).Error("Reference sweep failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"levels_scanned": report.LevelsScanned,
		"books_scanned":  report.BooksScanned,
		"refs_removed":   report.RefsRemoved,
	}).Info("Reference sweep complete")
}
