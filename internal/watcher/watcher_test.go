package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/heimdex/pagexport/internal/runs"
	"github.com/heimdex/pagexport/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type event struct {
	name  string
	event EventType
}

func recordEvents(w *PollingWatcher) *[]event {
	var events []event
	w.OnChange(func(path string, e EventType) {
		events = append(events, event{filepath.Base(path), e})
	})
	return &events
}

func sortedEvents(events []event) []event {
	sort.Slice(events, func(i, j int) bool { return events[i].name < events[j].name })
	return events
}

func TestPollingWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	w := NewPollingWatcher(time.Hour, testLogger())
	events := recordEvents(w)

	writeFile(t, dir, "a.yaml")
	writeFile(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	if err := w.Watch(context.Background(), dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Stop()

	got := sortedEvents(*events)
	if len(got) != 1 || got[0] != (event{"a.yaml", EventCreate}) {
		t.Fatalf("initial events = %v, want a.yaml create", got)
	}

	*events = nil
	writeFile(t, dir, "b.yml")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "a.yaml"), past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}
	w.Scan()

	got = sortedEvents(*events)
	want := []event{{"a.yaml", EventModify}, {"b.yml", EventCreate}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}

	*events = nil
	if err := os.Remove(filepath.Join(dir, "b.yml")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	w.Scan()
	if got := *events; len(got) != 1 || got[0] != (event{"b.yml", EventDelete}) {
		t.Fatalf("events = %v, want b.yml delete", got)
	}

	*events = nil
	w.Scan()
	if len(*events) != 0 {
		t.Errorf("unchanged folder produced events %v", *events)
	}
}

func TestPollingWatcher_WatchTwice(t *testing.T) {
	w := NewPollingWatcher(time.Hour, testLogger())
	dir := filepath.Join(t.TempDir(), "inbox")

	if err := w.Watch(context.Background(), dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("watch directory not created: %v", err)
	}
	if err := w.Watch(context.Background(), dir); err == nil {
		t.Error("second Watch() should return error")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

type fakeRuns struct {
	submitted []string
	existing  map[string]bool
}

func (f *fakeRuns) Submit(ctx context.Context, path string, rootID uint32, opts *session.Options) (*runs.Run, error) {
	f.submitted = append(f.submitted, filepath.Base(path))
	return &runs.Run{ID: "run-" + filepath.Base(path), DocumentPath: path}, nil
}

func (f *fakeRuns) FindRunByDocument(ctx context.Context, path string, mtime time.Time) (*runs.Run, error) {
	if f.existing[filepath.Base(path)] {
		return &runs.Run{ID: "old"}, nil
	}
	return nil, nil
}

func TestQueueRuns(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml")
	b := writeFile(t, dir, "b.yaml")

	fake := &fakeRuns{existing: map[string]bool{"b.yaml": true}}
	notified := 0
	queue := QueueRuns(context.Background(), fake, fake, func() { notified++ }, testLogger())

	queue(a, EventCreate)
	queue(b, EventModify)
	queue(a, EventDelete)
	queue(filepath.Join(dir, "gone.yaml"), EventCreate)

	if len(fake.submitted) != 1 || fake.submitted[0] != "a.yaml" {
		t.Errorf("submitted = %v, want [a.yaml]", fake.submitted)
	}
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("root: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
