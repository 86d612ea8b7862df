// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jvdx/jvdx/internal/sizeinfo"
)

var (
	// ErrCompile is the sentinel wrapped by CompileError.
	ErrCompile = errors.New("compile failed")
	// ErrUnsafeClean is returned when --clean would remove the package itself.
	ErrUnsafeClean = errors.New("refusing to clean the package directory")
)

type (
	// Compiler compiles one target. cache is nil for targets that must not
	// reuse earlier resolutions.
	Compiler interface {
		Compile(ctx context.Context, t *Target, cache *Cache) (*Result, error)
	}

	// CompilerFunc adapts a function to Compiler.
	CompilerFunc func(ctx context.Context, t *Target, cache *Cache) (*Result, error)

	// OutputFile is one file produced by a compilation.
	OutputFile struct {
		Path     string
		Contents []byte
	}

	// Result is the outcome of compiling one target.
	Result struct {
		Files []OutputFile
		// MangleCache is the updated identifier mapping, when mangling ran.
		MangleCache map[string]any
		// Warnings are compiler diagnostics that did not fail the build.
		Warnings []string
	}

	// CompileError reports a failed target compilation.
	CompileError struct {
		Entry    string
		Format   string
		Messages []string
		Err      error
	}

	// Summary describes a finished build.
	Summary struct {
		Elapsed time.Duration
		// Bundles lists the sizes of every JavaScript file written, in
		// target order.
		Bundles []sizeinfo.Info
		// Written is every file written, in target order.
		Written []string
	}

	// Orchestrator compiles the targets of a plan.
	Orchestrator struct {
		Compiler Compiler
		// Logger receives progress and warnings. A nil Logger discards them.
		Logger *log.Logger
		// now is replaced in tests.
		now func() time.Time
	}
)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, t *Target, cache *Cache) (*Result, error) {
	return f(ctx, t, cache)
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("build %s (%s) failed", e.Entry, e.Format)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrCompile and the underlying cause.
func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompile}
	}
	return []error{ErrCompile, e.Err}
}

// NewOrchestrator returns an Orchestrator for compiler.
func NewOrchestrator(compiler Compiler, logger *log.Logger) *Orchestrator {
	return &Orchestrator{Compiler: compiler, Logger: logger}
}

// Run compiles every target of p in order. The Cache produced by the first
// compilation is handed to every following non-modern target. The name
// cache is persisted after the First target.
func (o *Orchestrator) Run(ctx context.Context, p *Plan) (*Summary, error) {
	start := o.clock()
	o.report(p)

	if p.Options.Clean {
		if err := cleanOutput(p); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	cache := NewCache()
	for _, t := range p.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		infos, written, err := o.compile(ctx, p, t, cache)
		if err != nil {
			return nil, err
		}
		summary.Bundles = append(summary.Bundles, infos...)
		summary.Written = append(summary.Written, written...)
	}
	summary.Elapsed = o.clock().Sub(start)
	return summary, nil
}

// compile builds one target, writes its files and returns their sizes.
func (o *Orchestrator) compile(ctx context.Context, p *Plan, t *Target, cache *Cache) ([]sizeinfo.Info, []string, error) {
	c := cache
	if t.Modern() {
		c = nil
	}

	o.logger().Debug("compiling", "entry", p.Rel(t.Entry), "format", t.Format, "output", p.Rel(t.Output.Path))
	res, err := o.Compiler.Compile(ctx, t, c)
	if err != nil {
		var cerr *CompileError
		if errors.As(err, &cerr) {
			return nil, nil, err
		}
		return nil, nil, &CompileError{Entry: p.Rel(t.Entry), Format: string(t.Format), Err: err}
	}
	for _, w := range res.Warnings {
		o.logger().Warn(w)
	}

	var (
		infos   []sizeinfo.Info
		written []string
	)
	for _, f := range res.Files {
		if err := writeFile(f); err != nil {
			return nil, nil, err
		}
		written = append(written, f.Path)
		if isScript(f.Path) {
			infos = append(infos, sizeinfo.Measure(p.Rel(f.Path), f.Contents))
		}
	}

	if t.First && res.MangleCache != nil && t.NameCache != nil {
		if err := t.NameCache.Update(res.MangleCache); err != nil {
			return nil, nil, fmt.Errorf("update name cache: %w", err)
		}
		if err := t.NameCache.Save(); err != nil {
			return nil, nil, fmt.Errorf("write name cache %s: %w", p.Rel(t.NameCache.Path), err)
		}
	}
	return infos, written, nil
}

// report logs the plan's notices and warnings.
func (o *Orchestrator) report(p *Plan) {
	for _, n := range p.Notices {
		o.logger().Info(n)
	}
	for _, w := range p.Warnings {
		o.logger().Warn(w)
	}
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

func (o *Orchestrator) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

func writeFile(f OutputFile) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(f.Path, f.Contents, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

func isScript(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs":
		return true
	default:
		return false
	}
}

// cleanOutput removes the output directory. It refuses directories that
// contain the package directory.
func cleanOutput(p *Plan) error {
	dir := p.OutputDir()
	rel, err := filepath.Rel(dir, p.Cwd)
	if err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return fmt.Errorf("%w: %s", ErrUnsafeClean, dir)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean %s: %w", p.Rel(dir), err)
	}
	return nil
}
