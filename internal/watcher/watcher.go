// Package watcher polls a drop folder for timeline documents and queues an
// export run whenever one appears or changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/heimdex/pagexport/internal/logging"
	"github.com/heimdex/pagexport/internal/runs"
	"github.com/heimdex/pagexport/internal/session"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	}
	return "unknown"
}

// PollingWatcher compares directory listings at a fixed interval. Only the
// top level of the folder is watched.
type PollingWatcher struct {
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	dir      string
	seen     map[string]time.Time
	callback func(path string, event EventType)
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewPollingWatcher(interval time.Duration, logger *slog.Logger) *PollingWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &PollingWatcher{logger: logger, interval: interval, seen: make(map[string]time.Time)}
}

// Watch creates the folder if needed, reports every document already in it
// as created and keeps polling until ctx ends or Stop is called.
func (w *PollingWatcher) Watch(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}

	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return fmt.Errorf("already watching %s", w.dir)
	}
	ctx, cancel := context.WithCancel(ctx)
	w.dir = path
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("watching drop folder", "path", logging.SanitizePath(path), "interval", w.interval)
	w.Scan()

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Scan()
			}
		}
	}()
	return nil
}

func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	w.logger.Info("drop folder watcher stopped")
	return nil
}

func (w *PollingWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
}

// Scan lists the folder once and reports the differences to the last scan.
func (w *PollingWatcher) Scan() {
	w.mu.Lock()
	dir, callback := w.dir, w.callback
	w.mu.Unlock()
	if dir == "" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("failed to read drop folder", "error", err)
		return
	}

	current := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if e.IsDir() || !runs.IsDocumentFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		current[filepath.Join(dir, e.Name())] = info.ModTime()
	}

	type change struct {
		path  string
		event EventType
	}
	var changes []change

	w.mu.Lock()
	for path, mtime := range current {
		prev, ok := w.seen[path]
		switch {
		case !ok:
			changes = append(changes, change{path, EventCreate})
		case !prev.Equal(mtime):
			changes = append(changes, change{path, EventModify})
		}
	}
	for path := range w.seen {
		if _, ok := current[path]; !ok {
			changes = append(changes, change{path, EventDelete})
		}
	}
	w.seen = current
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, c := range changes {
		callback(c.path, c.event)
	}
}

// Submitter queues export runs.
type Submitter interface {
	Submit(ctx context.Context, path string, rootID uint32, opts *session.Options) (*runs.Run, error)
}

// DocumentFinder looks up the latest run of a document version.
type DocumentFinder interface {
	FindRunByDocument(ctx context.Context, path string, mtime time.Time) (*runs.Run, error)
}

// QueueRuns returns a change callback that submits a run for every created
// or modified document that has no run for its current modification time
// yet. notify, when set, is called after each submission.
func QueueRuns(ctx context.Context, submitter Submitter, finder DocumentFinder, notify func(), logger *slog.Logger) func(path string, event EventType) {
	return func(path string, event EventType) {
		if event == EventDelete {
			return
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return
		}
		existing, err := finder.FindRunByDocument(ctx, absPath, info.ModTime())
		if err != nil {
			logger.Warn("failed to look up document runs", "path", logging.SanitizePath(path), "error", err)
			return
		}
		if existing != nil {
			return
		}

		run, err := submitter.Submit(ctx, absPath, 0, nil)
		if err != nil {
			logger.Warn("failed to queue document", "path", logging.SanitizePath(path), "error", err)
			return
		}
		logger.Info("queued dropped document", "run_id", run.ID, "event", event.String())
		if notify != nil {
			notify()
		}
	}
}
