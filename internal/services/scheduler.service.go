package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-co-op/gocron"
)

type Schedule int

const (
	Hourly           Schedule = iota
	Daily                     // 02:00 UTC every day
	DailyMaintenance          // 03:00 UTC every day
	Monthly                   // 04:00 UTC on the first day of the month
)

// Job is a scheduled task run by the scheduler.
type Job interface {
	Name() string
	// Execute runs the job; ctx is cancelled when the scheduler stops.
	Execute(ctx context.Context) error
	Schedule() Schedule
}

type SchedulerService struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	log       logger.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSchedulerService() *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())

	return &SchedulerService{
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      make([]Job, 0),
		log:       logger.New("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *SchedulerService) executeJob(job Job, log logger.Logger) {
	ctx := logger.ContextWithTraceID(s.ctx, fmt.Sprintf("job-%s-%d", job.Name(), time.Now().Unix()))

	log.Info("Executing scheduled job", "job", job.Name())
	if err := job.Execute(ctx); err != nil {
		_ = log.Err("Job execution failed", err, "job", job.Name())
		return
	}
	log.Info("Job execution completed successfully", "job", job.Name())
}

func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("AddJob")

	run := func() { s.executeJob(job, log) }

	var err error
	switch job.Schedule() {
	case Hourly:
		_, err = s.scheduler.Every(1).Hour().Do(run)
	case Daily:
		_, err = s.scheduler.Every(1).Day().At("02:00").Do(run)
	case DailyMaintenance:
		_, err = s.scheduler.Every(1).Day().At("03:00").Do(run)
	case Monthly:
		_, err = s.scheduler.Every(1).Month(1).At("04:00").Do(run)
	default:
		err = fmt.Errorf("unknown schedule %d", job.Schedule())
	}

	if err != nil {
		return log.Err("failed to register job with scheduler", err, "job", job.Name())
	}

	s.jobs = append(s.jobs, job)
	log.Info("Job registered successfully", "job", job.Name())

	return nil
}

func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Start")

	if s.started {
		log.Info("Scheduler already started")
		return nil
	}

	if len(s.jobs) == 0 {
		log.Info("No jobs registered, scheduler will not start")
		return nil
	}

	log.Info("Starting scheduler", "jobCount", len(s.jobs))
	s.scheduler.StartAsync()
	s.started = true

	for _, job := range s.scheduler.Jobs() {
		log.Info("Job scheduled", "nextRun", job.NextRun())
	}

	return nil
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Stop")

	if !s.started {
		log.Info("Scheduler not started, nothing to stop")
		return nil
	}

	log.Info("Stopping scheduler")
	s.cancel()
	s.scheduler.Stop()
	s.started = false

	log.Info("Scheduler stopped successfully")
	return nil
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *SchedulerService) GetJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// TriggerJobByName runs a registered job synchronously outside its schedule.
func (s *SchedulerService) TriggerJobByName(ctx context.Context, jobName string) error {
	s.mu.Lock()
	var target Job
	for _, job := range s.jobs {
		if job.Name() == jobName {
			target = job
			break
		}
	}
	s.mu.Unlock()

	log := s.log.TraceFromContext(ctx).Function("TriggerJobByName")

	if target == nil {
		return log.Error("job not found", "job", jobName)
	}

	log.Info("Manually triggering job", "job", jobName)
	if err := target.Execute(ctx); err != nil {
		return log.Err("manual job execution failed", err, "job", jobName)
	}

	return nil
}
