// Package scheduler runs the recurring newsroom jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/newsroom/internal/logbook"
)

// Job is one schedulable unit of newsroom work.
type Job func(ctx context.Context) error

type entry struct {
	name string
	spec string
	job  Job
}

// Scheduler registers named jobs against cron expressions and runs them
// until its context is cancelled.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]entry
	log     *logbook.Logbook
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogbook attaches a logbook for job diagnostics.
func WithLogbook(log *logbook.Logbook) Option {
	return func(s *Scheduler) {
		s.log = log.With("scheduler")
	}
}

// New builds an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{entries: map[string]entry{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a job under a unique name. The cron expression is
// validated immediately, not at start time.
func (s *Scheduler) Register(name, spec string, job Job) error {
	if name == "" {
		return fmt.Errorf("scheduler: job name is required")
	}
	if job == nil {
		return fmt.Errorf("scheduler: job %s is nil", name)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("scheduler: job %s has invalid schedule %q: %w", name, spec, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("scheduler: job %s already registered", name)
	}
	s.entries[name] = entry{name: name, spec: spec, job: job}
	return nil
}

// Names returns the registered job names, sorted.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob fires one registered job immediately, outside its schedule.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %s", name)
	}
	return e.job(ctx)
}

// Start runs the scheduler until ctx is cancelled. A failing job is
// logged and waits for its next slot; it never stops the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	entries := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	runner := cron.New()
	for _, e := range entries {
		e := e
		if _, err := runner.AddFunc(e.spec, func() {
			s.log.Info("job started: %s", e.name)
			if err := e.job(ctx); err != nil {
				s.log.Error("job failed: %s: %v", e.name, err)
				return
			}
			s.log.Info("job finished: %s", e.name)
		}); err != nil {
			return fmt.Errorf("scheduler: schedule job %s: %w", e.name, err)
		}
		s.log.Info("job scheduled: %s (%s)", e.name, e.spec)
	}

	runner.Start()
	<-ctx.Done()
	stopCtx := runner.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}
