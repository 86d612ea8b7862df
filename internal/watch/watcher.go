// SPDX-License-Identifier: MPL-2.0

// Package watch reports source changes below a package directory.
//
// A Watcher registers every directory that is not ignored, filters events
// through doublestar patterns and calls OnChange once per burst of changes
// with the sorted, de-duplicated list of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the quiet period used when Config.Debounce is not set.
const defaultDebounce = 100 * time.Millisecond

// clearScreen is the ANSI sequence that clears the terminal and homes the cursor.
const clearScreen = "\033[2J\033[H"

var (
	// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
	ErrInvalidWatchConfig = errors.New("invalid watch config")
	// ErrWatcherBroken is the sentinel error wrapped by FatalWatchError.
	ErrWatcherBroken = errors.New("file watcher cannot continue")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the watched directory. Empty means the working directory.
		BaseDir string

		// Patterns select the paths, relative to BaseDir, that trigger
		// OnChange (e.g. "src/**/*.ts"). Empty selects every path.
		Patterns []string

		// Ignore patterns are excluded in addition to DefaultIgnores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// runs. Zero or negative uses 100ms.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before every
		// OnChange call. The caller decides whether Stdout is a terminal.
		ClearScreen bool

		// OnChange receives the changed paths relative to BaseDir. Its error
		// is reported on Stderr and watching continues.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout and Stderr default to the process streams.
		Stdout io.Writer
		Stderr io.Writer
	}

	// FatalWatchError is returned when the operating system refuses to
	// keep watching, typically because a watch or descriptor limit was hit.
	FatalWatchError struct {
		Err  error
		Hint string
	}

	// InvalidWatchConfigError collects the field errors of a Config.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// Watcher monitors one directory tree. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		dir      string
		match    matcher
		debounce time.Duration
		stdout   io.Writer
		stderr   io.Writer
		fsw      *fsnotify.Watcher
		started  atomic.Bool
	}
)

// New validates cfg and registers every directory below BaseDir that is
// not ignored.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir := cfg.BaseDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		dir:      dir,
		match:    newMatcher(cfg.Patterns, cfg.Ignore),
		debounce: cfg.Debounce,
		stdout:   cfg.Stdout,
		stderr:   cfg.Stderr,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.stderr == nil {
		w.stderr = os.Stderr
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.addTree(); err != nil {
		if closeErr := w.fsw.Close(); closeErr != nil {
			fmt.Fprintf(w.stderr, "watch: close after init failure: %v\n", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled, which returns nil. Fatal
// watcher errors are returned as *FatalWatchError.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := newBatch(w.debounce, func(changed []string) {
		if ctx.Err() != nil {
			return
		}
		w.notify(ctx, changed)
	}, func() {
		fmt.Fprintln(w.stderr, "watch: skipping rebuild (previous build still in progress)")
	})
	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if rel, ok := w.relevant(evt); ok {
				b.add(rel)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if fatal := fatalError(err); fatal != nil {
				return fatal
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// relevant filters evt and returns its path relative to the watched
// directory. Directories created after New are registered on the way.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	// Attribute changes (Spotlight, antivirus, chmod) leave sources intact.
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.dir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	if evt.Has(fsnotify.Create) {
		w.addCreatedDir(evt.Name, rel)
	}
	if !w.match.selected(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) notify(ctx context.Context, changed []string) {
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, clearScreen)
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
	}
}

// addTree registers the watched directory and its subdirectories.
// Unreadable directories are reported and skipped.
func (w *Watcher) addTree() error {
	err := filepath.WalkDir(w.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fmt.Fprintf(w.stderr, "watch: skipping inaccessible path %q: %v\n", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(w.dir, path); relErr == nil && rel != "." && w.match.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if fatal := fatalError(err); fatal != nil {
				return fatal
			}
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) addCreatedDir(path, rel string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.match.ignoredDir(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		fmt.Fprintf(w.stderr, "watch: add new directory %q: %v\n", path, err)
	}
}

// Validate reports every empty or malformed pattern and a whitespace-only
// BaseDir. The zero Config is valid.
func (c Config) Validate() error {
	errs := validatePatterns(c.Patterns, "watch")
	errs = append(errs, validatePatterns(c.Ignore, "ignore")...)
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, fmt.Errorf("watch: base directory %q is blank", c.BaseDir))
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid watch config: %d field errors", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// fatalError wraps err in a FatalWatchError when it leaves the watcher
// unusable, and returns nil otherwise.
func fatalError(err error) error {
	hint, ok := fatalHint(err)
	if !ok {
		return nil
	}
	return &FatalWatchError{Err: err, Hint: hint}
}

// Error implements the error interface.
func (e *FatalWatchError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("watch: %v", e.Err)
	}
	return fmt.Sprintf("watch: %v (%s)", e.Err, e.Hint)
}

// Unwrap returns ErrWatcherBroken and the underlying error.
func (e *FatalWatchError) Unwrap() []error { return []error{ErrWatcherBroken, e.Err} }
