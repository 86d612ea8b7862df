// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// recorder collects OnChange batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 16)} }

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.batches = append(r.batches, changed)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnChange")
	}
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

// safeBuffer guards a bytes.Buffer written from the watcher goroutines.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newPackageDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"src", "dist", "node_modules/react"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// startWatcher runs w in the background and returns a stop function that
// cancels it and returns Run's error.
func startWatcher(t *testing.T, w *Watcher) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the event loop a moment to start.
	time.Sleep(20 * time.Millisecond)
	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
			return nil
		}
	}
}

func TestWatcherBatchesBurst(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.ts"},
		Debounce: 150 * time.Millisecond,
		OnChange: rec.onChange,
		Stdout:   &safeBuffer{},
		Stderr:   &safeBuffer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "src", "b.ts"), "export const b = 1\n")
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1\n")
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "export const a = 2\n")
	rec.wait(t)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := rec.snapshot()
	want := [][]string{{"src/a.ts", "src/b.ts"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcherFiltersPaths(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.js"},
		Ignore:   []string{"dist/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
		Stdout:   &safeBuffer{},
		Stderr:   &safeBuffer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "dist", "index.js"), "built")
	writeFile(t, filepath.Join(dir, "src", "notes.md"), "notes")
	writeFile(t, filepath.Join(dir, "src", "index.js"), "export default 1")
	rec.wait(t)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, batch := range rec.snapshot() {
		for _, rel := range batch {
			if rel != "src/index.js" {
				t.Errorf("unexpected changed path %q", rel)
			}
		}
	}
}

func TestWatcherSkipsNodeModules(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	w, err := New(Config{BaseDir: dir, Stdout: &safeBuffer{}, Stderr: &safeBuffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = w.fsw.Close() }()

	for _, path := range w.fsw.WatchList() {
		if strings.Contains(filepath.ToSlash(path), "node_modules") {
			t.Errorf("node_modules directory %q is watched", path)
		}
	}
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/**/*.ts"},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
		Stdout:   &safeBuffer{},
		Stderr:   &safeBuffer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	nested := filepath.Join(dir, "src", "components")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	// Let the Create event register the directory first.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(nested, "button.ts"), "export {}")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-rec.ch:
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
		found := false
		for _, batch := range rec.snapshot() {
			for _, rel := range batch {
				found = found || rel == "src/components/button.ts"
			}
		}
		if found {
			break
		}
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcherCallbackErrorKeepsWatching(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	stderr := &safeBuffer{}
	calls := make(chan struct{}, 4)
	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 30 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			calls <- struct{}{}
			return errors.New("compile failed")
		},
		Stdout: &safeBuffer{},
		Stderr: stderr,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	for i := range 2 {
		writeFile(t, filepath.Join(dir, "src", "index.js"), strings.Repeat("x", i+1))
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("change %d was not reported", i+1)
		}
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(stderr.String(), "watch: callback error: compile failed") {
		t.Errorf("stderr = %q, want callback error", stderr.String())
	}
}

func TestWatcherSkipsWhileBusy(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	stderr := &safeBuffer{}
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 20 * time.Millisecond,
		OnChange: func(ctx context.Context, _ []string) error {
			started <- struct{}{}
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
		Stdout: &safeBuffer{},
		Stderr: stderr,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "src", "index.js"), "1")
	<-started
	writeFile(t, filepath.Join(dir, "src", "index.js"), "2")

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stderr.String(), "previous build still in progress") {
		if time.Now().After(deadline) {
			t.Fatalf("stderr = %q, want busy notice", stderr.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	close(release)

	// The change that arrived while busy is delivered afterwards.
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("pending change was dropped")
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := newPackageDir(t)
	stdout := &safeBuffer{}
	rec := newRecorder()
	w, err := New(Config{
		BaseDir:     dir,
		Debounce:    30 * time.Millisecond,
		ClearScreen: true,
		OnChange:    rec.onChange,
		Stdout:      stdout,
		Stderr:      &safeBuffer{},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(dir, "src", "index.js"), "1")
	rec.wait(t)
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), clearScreen) {
		t.Errorf("stdout = %q, want clear sequence", stdout.String())
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: newPackageDir(t), Stdout: &safeBuffer{}, Stderr: &safeBuffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)
	if err := w.Run(t.Context()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"src/[*.js"}})
	if !errors.Is(err, ErrInvalidWatchConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidWatchConfig", err)
	}
}
