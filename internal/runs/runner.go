package runs

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Executor runs one queued export to completion.
type Executor interface {
	Execute(ctx context.Context, run *Run) error
}

// Runner polls for queued runs and executes up to maxConcurrent of them at
// once, each with its own export session.
type Runner struct {
	executor      Executor
	repo          Repository
	logger        *slog.Logger
	pollInterval  time.Duration
	maxConcurrent int

	group   errgroup.Group
	wake    chan struct{}
	running atomic.Bool
	paused  atomic.Bool
	active  atomic.Int32

	mu      sync.Mutex
	claimed map[string]bool
}

func NewRunner(executor Executor, repo Repository, maxConcurrent int, logger *slog.Logger) *Runner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	r := &Runner{
		executor:      executor,
		repo:          repo,
		logger:        logger,
		pollInterval:  5 * time.Second,
		maxConcurrent: maxConcurrent,
		wake:          make(chan struct{}, 1),
		claimed:       make(map[string]bool),
	}
	r.group.SetLimit(maxConcurrent)
	return r
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("run runner started", "max_concurrent", r.maxConcurrent)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("run runner stopping")
			r.group.Wait()
			r.running.Store(false)
			return
		case <-ticker.C:
		case <-r.wake:
		}
		if !r.paused.Load() {
			r.dispatch(ctx)
		}
	}
}

// Notify asks the runner to look for queued runs without waiting for the
// next poll.
func (r *Runner) Notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("run runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("run runner resumed")
	r.Notify()
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

// ActiveRuns returns the number of exports currently executing.
func (r *Runner) ActiveRuns() int {
	return int(r.active.Load())
}

// Drain executes every queued run and waits for them to finish.
func (r *Runner) Drain(ctx context.Context) {
	for r.dispatch(ctx) > 0 {
		r.group.Wait()
	}
	r.group.Wait()
}

// dispatch starts queued runs until the concurrency limit is reached and
// returns how many it started.
func (r *Runner) dispatch(ctx context.Context) int {
	queued, err := r.repo.ListQueuedRuns(ctx)
	if err != nil {
		r.logger.Error("failed to list queued runs", "error", err)
		return 0
	}

	started := 0
	for _, run := range queued {
		run := run
		if ctx.Err() != nil {
			break
		}
		if !r.claim(run.ID) {
			continue
		}
		if !r.group.TryGo(func() error {
			r.execute(ctx, run)
			return nil
		}) {
			r.release(run.ID)
			break
		}
		started++
	}
	return started
}

func (r *Runner) execute(ctx context.Context, run *Run) {
	r.active.Add(1)
	defer func() {
		r.active.Add(-1)
		r.release(run.ID)
	}()

	r.logger.Info("processing run", "run_id", run.ID, "title", run.Title)
	if err := r.executor.Execute(ctx, run); err != nil {
		r.logger.Error("run failed", "run_id", run.ID, "error", err)
	}
}

func (r *Runner) claim(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed[id] {
		return false
	}
	r.claimed[id] = true
	return true
}

func (r *Runner) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, id)
}
