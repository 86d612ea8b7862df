// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jvdx/jvdx/internal/watch"
)

// sourcePatterns selects the files whose changes trigger a rebuild.
var sourcePatterns = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts,css,json}"}

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce is the quiet period before a rebuild. Zero uses the watcher default.
	Debounce time.Duration
	// ClearScreen clears the terminal before each rebuild.
	ClearScreen bool
	// Stdout and Stderr receive watcher diagnostics.
	Stdout io.Writer
	Stderr io.Writer

	// OnStart, OnBuild and OnError are optional hooks invoked around every
	// rebuild of an entry.
	OnStart func(entry string)
	OnBuild func(entry string, s *Summary)
	OnError func(entry string, err error)
}

// Watch builds every entry and rebuilds it on source changes until ctx is
// cancelled. The plan is resolved once; each entry gets its own watcher and
// they run concurrently. A failed rebuild is reported and watching goes on.
func (o *Orchestrator) Watch(ctx context.Context, p *Plan, opts WatchOptions) error {
	o.report(p)
	o.logger().Info(fmt.Sprintf("Watching source, compiling to %s (Ctrl + C to stop)", p.Rel(p.OutputDir())))

	ignores := watchIgnores(p)
	g, ctx := errgroup.WithContext(ctx)
	for _, entry := range p.Entries {
		targets := p.TargetsFor(entry)
		rebuild := func(ctx context.Context, _ []string) error {
			o.rebuild(ctx, p, entry, targets, opts)
			return nil
		}

		w, err := watch.New(watch.Config{
			BaseDir:     p.Cwd,
			Patterns:    sourcePatterns,
			Ignore:      ignores,
			Debounce:    opts.Debounce,
			ClearScreen: opts.ClearScreen,
			Stdout:      opts.Stdout,
			Stderr:      opts.Stderr,
			OnChange:    rebuild,
		})
		if err != nil {
			return err
		}

		g.Go(func() error {
			o.rebuild(ctx, p, entry, targets, opts)
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

// rebuild compiles the targets of one entry with a fresh cache.
func (o *Orchestrator) rebuild(ctx context.Context, p *Plan, entry string, targets []*Target, opts WatchOptions) {
	if opts.OnStart != nil {
		opts.OnStart(entry)
	}

	start := o.clock()
	summary := &Summary{}
	cache := NewCache()
	for _, t := range targets {
		infos, written, err := o.compile(ctx, p, t, cache)
		if err != nil {
			o.logger().Error(err.Error())
			if opts.OnError != nil {
				opts.OnError(entry, err)
			}
			return
		}
		summary.Bundles = append(summary.Bundles, infos...)
		summary.Written = append(summary.Written, written...)
	}
	summary.Elapsed = o.clock().Sub(start)

	for _, b := range summary.Bundles {
		o.logger().Info(fmt.Sprintf("Wrote %s (%s; %s)", b.Base(p.Options.Raw), b.GzipLine(p.Options.Raw), b.BrotliLine(p.Options.Raw)))
	}
	if opts.OnBuild != nil {
		opts.OnBuild(entry, summary)
	}
}

// watchIgnores keeps build products from retriggering the watchers.
func watchIgnores(p *Plan) []string {
	var ignores []string
	if rel, ok := within(p.Cwd, p.OutputDir()); ok && rel != "." {
		ignores = append(ignores, rel+"/**")
	}
	for _, t := range p.Targets {
		for _, path := range []string{t.Output.Path, t.Output.Path + ".map", t.CSSFile} {
			if rel, ok := within(p.Cwd, path); ok && path != "" && rel != "." && !slices.Contains(ignores, rel) {
				ignores = append(ignores, rel)
			}
		}
	}
	if p.NameCache != nil {
		if rel, ok := within(p.Cwd, p.NameCache.Path); ok && !slices.Contains(ignores, rel) {
			ignores = append(ignores, rel)
		}
	}
	return ignores
}

func within(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
