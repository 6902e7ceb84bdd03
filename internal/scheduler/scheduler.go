// Package scheduler runs the periodic background tasks such as catalog
// refresh, feed import, market table reload and cache pruning.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/david/syncscout/internal/logging"
	"github.com/david/syncscout/internal/metrics"
)

// DefaultInterval matches the catalog refresh cadence.
const DefaultInterval = 30 * time.Minute

// Task is one named unit of periodic work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type TaskResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Scheduler runs its tasks on a fixed interval. A failing task is logged
// and counted; it never stops the other tasks or later cycles.
type Scheduler struct {
	interval   time.Duration
	tasks      []Task
	runOnStart bool
	log        zerolog.Logger

	runMu  sync.Mutex
	last   []TaskResult
	lastAt time.Time
}

type Option func(*Scheduler)

// RunOnStart makes Serve run a cycle before the first tick.
func RunOnStart() Option {
	return func(s *Scheduler) { s.runOnStart = true }
}

func New(interval time.Duration, tasks []Task, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		tasks:    tasks,
		log:      logging.Component("scheduler"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunOnce runs every task in order and returns their results. Concurrent
// calls are serialized.
func (s *Scheduler) RunOnce(ctx context.Context) []TaskResult {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	results := make([]TaskResult, 0, len(s.tasks))
	for _, t := range s.tasks {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.runTask(ctx, t))
	}
	s.last = results
	s.lastAt = time.Now()
	return results
}

func (s *Scheduler) runTask(ctx context.Context, t Task) (res TaskResult) {
	start := time.Now()
	res.Name = t.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.New("task panicked")
			s.log.Error().Str("task", t.Name).Interface("panic", r).Msg("RefreshFailure")
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		metrics.RecordTaskRun(t.Name, res.Duration, res.Err)
	}()

	if err := t.Run(ctx); err != nil {
		res.Err = err
		s.log.Error().Err(err).Str("task", t.Name).Msg("RefreshFailure")
		return res
	}
	s.log.Debug().Str("task", t.Name).Dur("took", time.Since(start)).Msg("task completed")
	return res
}

// LastRun returns the results of the most recent cycle.
func (s *Scheduler) LastRun() (time.Time, []TaskResult) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.lastAt, append([]TaskResult(nil), s.last...)
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Int("tasks", len(s.tasks)).Msg("scheduler started")

	if s.runOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Scheduler) String() string {
	return "refresh-scheduler"
}
