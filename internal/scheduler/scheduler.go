package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo is a snapshot of a scheduled job and its run history.
type JobInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Schedule   string    `json:"schedule"`
	Status     JobStatus `json:"status"`
	LastRun    time.Time `json:"last_run"`
	NextRun    time.Time `json:"next_run"`
	RunCount   int       `json:"run_count"`
	ErrorCount int       `json:"error_count"`
	LastError  string    `json:"last_error,omitempty"`
}

// JobFunc is the unit of work a job runs. The context is cancelled on Stop.
type JobFunc func(ctx context.Context) error

type job struct {
	info   JobInfo
	gocron gocron.Job
}

// Scheduler runs background jobs and records how each run went.
type Scheduler struct {
	gocron gocron.Scheduler
	mu     sync.Mutex
	jobs   map[string]*job
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func New(log *zap.Logger) (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger(log)))
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With(zap.String("component", "scheduler")),
	}, nil
}

func (s *Scheduler) Start() {
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, j := range s.jobs {
		if nextRun, err := j.gocron.NextRun(); err == nil {
			j.info.NextRun = nextRun
			s.log.Debug("Job scheduled", zap.String("job", id), zap.Time("next_run", nextRun))
		}
	}
	s.log.Info("Job scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddJob registers a singleton job: a run that is still going when the next
// one is due causes that next run to be skipped.
func (s *Scheduler) AddJob(id, name, schedule string, definition gocron.JobDefinition, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already registered", id)
	}

	gocronJob, err := s.gocron.NewJob(definition,
		gocron.NewTask(s.wrapJobFunc(id, fn)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create job %s: %w", id, err)
	}

	s.jobs[id] = &job{
		info: JobInfo{
			ID:       id,
			Name:     name,
			Schedule: schedule,
			Status:   JobStatusScheduled,
		},
		gocron: gocronJob,
	}
	s.log.Info("Added job to scheduler", zap.String("job", id), zap.String("schedule", schedule))
	return nil
}

// RunJobNow triggers a job outside its schedule.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.Lock()
	j, exists := s.jobs[id]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	if err := j.gocron.RunNow(); err != nil {
		return fmt.Errorf("trigger job %s: %w", id, err)
	}
	return nil
}

// Job returns a copy of the job's current state.
func (s *Scheduler) Job(id string) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[id]
	if !exists {
		return JobInfo{}, false
	}
	return j.info, true
}

// Jobs returns every registered job, ordered by ID.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		infos = append(infos, j.info)
	}
	slices.SortFunc(infos, func(a, b JobInfo) int { return strings.Compare(a.ID, b.ID) })
	return infos
}

func (s *Scheduler) wrapJobFunc(id string, fn JobFunc) func() {
	return func() {
		s.mu.Lock()
		j := s.jobs[id]
		if j == nil {
			s.mu.Unlock()
			return
		}
		j.info.Status = JobStatusRunning
		j.info.LastRun = time.Now()
		j.info.RunCount++
		name := j.info.Name
		s.mu.Unlock()

		s.log.Info("Starting job", zap.String("job", id), zap.String("name", name))
		start := time.Now()
		err := fn(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if nextRun, nextErr := j.gocron.NextRun(); nextErr == nil {
			j.info.NextRun = nextRun
		}
		if err != nil {
			s.log.Error("Job failed",
				zap.String("job", id),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			j.info.Status = JobStatusFailed
			j.info.ErrorCount++
			j.info.LastError = err.Error()
			return
		}

		s.log.Info("Job completed",
			zap.String("job", id),
			zap.Duration("duration", time.Since(start)))
		j.info.Status = JobStatusCompleted
		j.info.LastError = ""
	}
}
