package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"coupon-marketplace/internal/metrics"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/errs"
)

var (
	ErrUnknownTask    = errs.New("unknown worker task")
	ErrAlreadyStarted = errs.New("supervisor already started")
	ErrBadInterval    = errs.New("worker task interval must be positive")
	ErrTaskPanicked   = errs.New("worker task panicked")
)

type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Heartbeat struct {
	Task                string        `json:"task"`
	Interval            time.Duration `json:"interval_ns"`
	LastRunAt           *time.Time    `json:"last_run_at,omitempty"`
	LastSuccessAt       *time.Time    `json:"last_success_at,omitempty"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	Runs                int64         `json:"runs"`
}

// Supervisor runs each task on its own ticker until stopped. A failing or
// panicking run is recorded in the task's heartbeat and the loop keeps going.
type Supervisor struct {
	clock clock.Clock
	tasks []Task

	mu        sync.RWMutex
	beats     map[string]*Heartbeat
	startedAt time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewSupervisor(clk clock.Clock, tasks ...Task) *Supervisor {
	beats := make(map[string]*Heartbeat, len(tasks))
	for _, t := range tasks {
		beats[t.Name] = &Heartbeat{Task: t.Name, Interval: t.Interval}
	}
	return &Supervisor{
		clock:     clk,
		tasks:     tasks,
		beats:     beats,
		startedAt: clk.Now(),
	}
}

func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	for _, t := range s.tasks {
		if t.Interval <= 0 {
			return errs.Wrap(ErrBadInterval, t.Name)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.startedAt = s.clock.Now()

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(runCtx, t)
	}
	slog.Info("worker supervisor started", "tasks", len(s.tasks))
	return nil
}

// Stop cancels every loop and waits for in-flight runs, bounded by ctx.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("worker supervisor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, t)
		}
	}
}

// RunOnce executes the named task synchronously and records its heartbeat.
func (s *Supervisor) RunOnce(ctx context.Context, name string) error {
	idx := slices.IndexFunc(s.tasks, func(t Task) bool { return t.Name == name })
	if idx < 0 {
		return errs.Wrap(ErrUnknownTask, name)
	}
	return s.execute(ctx, s.tasks[idx])
}

func (s *Supervisor) execute(ctx context.Context, t Task) (err error) {
	startedAt := s.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errs.Wrap(ErrTaskPanicked, fmt.Sprintf("%s: %v", t.Name, r))
			slog.Error("worker task panicked",
				"task", t.Name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
		s.record(t.Name, startedAt, err)
	}()

	return t.Run(ctx)
}

func (s *Supervisor) record(name string, at time.Time, err error) {
	metrics.RecordWorkerRun(name, err, at)

	s.mu.Lock()
	defer s.mu.Unlock()

	hb := s.beats[name]
	hb.Runs++
	hb.LastRunAt = &at
	if err != nil {
		hb.ConsecutiveFailures++
		hb.LastError = err.Error()
		slog.Warn("worker task failed",
			"task", name,
			"consecutive_failures", hb.ConsecutiveFailures,
			"error", err.Error())
		return
	}
	hb.ConsecutiveFailures = 0
	hb.LastError = ""
	hb.LastSuccessAt = &at
}

func (s *Supervisor) Heartbeats() []Heartbeat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Heartbeat, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *s.beats[t.Name])
	}
	return out
}

// StaleTasks lists tasks with no successful run within 2*maxCycle. A task that
// never succeeded is measured from supervisor start.
func (s *Supervisor) StaleTasks(maxCycle time.Duration) []string {
	now := s.clock.Now()
	limit := 2 * maxCycle

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []string
	for _, t := range s.tasks {
		last := s.startedAt
		if hb := s.beats[t.Name]; hb.LastSuccessAt != nil {
			last = *hb.LastSuccessAt
		}
		if now.Sub(last) > limit {
			stale = append(stale, t.Name)
		}
	}
	return stale
}
