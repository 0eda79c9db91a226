package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/tasks"
)

// TaskEnqueuer puts a task on the background queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

type job struct {
	name     string
	schedule string
	task     func() backlite.Task
	entryID  cron.EntryID
}

// MaintenanceScheduler periodically enqueues index rebuilds and audit
// cleanups. The work itself runs on the task queue.
type MaintenanceScheduler struct {
	enqueuer TaskEnqueuer
	cron     *cron.Cron
	jobs     []*job

	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler builds a scheduler from config. Empty schedules
// disable the corresponding job.
func NewMaintenanceScheduler(enqueuer TaskEnqueuer, cfg config.Scheduler, auditRetentionDays int) *MaintenanceScheduler {
	s := &MaintenanceScheduler{
		enqueuer: enqueuer,
		cron:     cron.New(cron.WithParser(parser)),
	}
	if cfg.IndexRebuildSchedule != "" {
		s.jobs = append(s.jobs, &job{
			name:     "rebuild_index",
			schedule: cfg.IndexRebuildSchedule,
			task:     func() backlite.Task { return tasks.RebuildIndexTask{} },
		})
	}
	if cfg.AuditCleanupSchedule != "" {
		s.jobs = append(s.jobs, &job{
			name:     "cleanup_audit_events",
			schedule: cfg.AuditCleanupSchedule,
			task: func() backlite.Task {
				return tasks.CleanupAuditEventsTask{RetentionDays: auditRetentionDays}
			},
		})
	}
	return s
}

// Start registers the jobs and starts cron. It stops on its own when ctx is
// cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("[SCHEDULER] No maintenance jobs configured")
		return nil
	}

	for _, j := range s.jobs {
		if err := ValidateSchedule(j.schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", j.schedule, j.name, err)
		}
		j := j
		entryID, err := s.cron.AddFunc(j.schedule, func() { s.run(j) })
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
		j.entryID = entryID
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	for _, j := range s.jobs {
		next, _ := NextRunAfter(j.schedule, time.Now())
		log.Printf("[SCHEDULER] %s scheduled '%s' (%s). Next run: %v", j.name, j.schedule, Describe(j.schedule), next)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	for _, j := range s.jobs {
		s.cron.Remove(j.entryID)
	}

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] Stopped")
}

func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRuns reports the next activation per job while running.
func (s *MaintenanceScheduler) NextRuns() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]time.Time, len(s.jobs))
	if !s.isRunning {
		return out
	}
	for _, j := range s.jobs {
		out[j.name] = s.cron.Entry(j.entryID).Next
	}
	return out
}

// RunNow enqueues every job immediately.
func (s *MaintenanceScheduler) RunNow() {
	for _, j := range s.jobs {
		s.run(j)
	}
}

func (s *MaintenanceScheduler) run(j *job) {
	id, err := s.enqueuer.Enqueue(j.task())
	if err != nil {
		log.Printf("[SCHEDULER] Failed to enqueue %s: %v", j.name, err)
		return
	}
	log.Printf("[SCHEDULER] Enqueued %s (task %s)", j.name, id)
}
