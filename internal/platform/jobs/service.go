package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Func is one unit of background work. The returned details are logged.
type Func func(ctx context.Context) (any, error)

// Run is the outcome of one job execution.
type Run struct {
	Type     string        `json:"type"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Details  any           `json:"details,omitempty"`
	Err      string        `json:"error,omitempty"`
}

type job struct {
	Type string
	Run  Func
}

// Service runs queued jobs on a single worker so scheduled work never
// overlaps with itself.
type Service struct {
	logger *slog.Logger
	queue  chan job

	mu   sync.Mutex
	last map[string]Run
}

func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		queue:  make(chan job, 32),
		last:   map[string]Run{},
	}
}

// Start launches the worker; it stops when ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Enqueue(jobType string, run Func) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		s.logger.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run Func) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Every enqueues run each interval until ctx is canceled.
func (s *Service) Every(ctx context.Context, jobType string, interval time.Duration, run Func) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(jobType, run)
			}
		}
	}()
}

// Last returns the most recent run of jobType.
func (s *Service) Last(jobType string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.last[jobType]
	return run, ok
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.logger.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	started := time.Now()
	details, err := j.Run(ctx)
	run := Run{Type: j.Type, Started: started, Duration: time.Since(started), Details: details}
	if err != nil {
		run.Err = err.Error()
	}

	s.mu.Lock()
	s.last[j.Type] = run
	s.mu.Unlock()

	s.logger.Info("job run finished", "jobType", j.Type, "durationMs", run.Duration.Milliseconds(), "failed", err != nil)
	return details, err
}
