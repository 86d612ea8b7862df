// SPDX-License-Identifier: MPL-2.0

// Package bundler compiles build targets with esbuild.
//
// A build.Target carries everything resolved from the manifest and the
// command line; BuildOptions maps it onto esbuild options and Esbuild runs
// the compilation in memory, returning the files for the orchestrator to
// write. UMD bundles are CommonJS output wrapped in a factory that falls
// back to browser globals.
package bundler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/jvdx/jvdx/internal/build"
)

// Esbuild implements build.Compiler.
type Esbuild struct {
	// Declarer emits type declarations for targets that request them.
	// A nil Declarer skips declarations.
	Declarer Declarer
}

var _ build.Compiler = (*Esbuild)(nil)

// New returns an Esbuild that emits declarations with tsc.
func New() *Esbuild {
	return &Esbuild{Declarer: TSC{}}
}

// Compile builds t. Compiler errors are returned as a *build.CompileError
// carrying the formatted diagnostics.
func (e *Esbuild) Compile(ctx context.Context, t *build.Target, cache *build.Cache) (*build.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ret := api.Build(BuildOptions(t, cache))
	if len(ret.Errors) > 0 {
		return nil, &build.CompileError{
			Entry:    relTo(t.Cwd, t.Entry),
			Format:   string(t.Format),
			Messages: formatMessages(ret.Errors, api.ErrorMessage),
		}
	}

	res := &build.Result{
		Files:    outputFiles(t, ret.OutputFiles),
		Warnings: formatMessages(ret.Warnings, api.WarningMessage),
	}
	if len(ret.MangleCache) > 0 {
		res.MangleCache = ret.MangleCache
	}

	if t.Declarations && e.Declarer != nil {
		warnings, err := e.Declarer.Declare(ctx, t)
		if err != nil {
			return nil, &build.CompileError{Entry: relTo(t.Cwd, t.Entry), Format: string(t.Format), Err: err}
		}
		res.Warnings = append(res.Warnings, warnings...)
	}
	return res, nil
}

// outputFiles keeps the bundle and its map. An emitted stylesheet is moved
// to the target's CSS file, or dropped when the target extracts none.
func outputFiles(t *build.Target, files []api.OutputFile) []build.OutputFile {
	out := make([]build.OutputFile, 0, len(files))
	for _, f := range files {
		path, contents := f.Path, f.Contents
		switch {
		case strings.HasSuffix(path, ".css"):
			if t.CSSFile == "" {
				continue
			}
			contents = relinkSourceMap(contents, filepath.Base(path), filepath.Base(t.CSSFile))
			path = t.CSSFile
		case strings.HasSuffix(path, ".css.map"):
			if t.CSSFile == "" {
				continue
			}
			path = t.CSSFile + ".map"
		}
		out = append(out, build.OutputFile{Path: path, Contents: contents})
	}
	return out
}

// relinkSourceMap points the sourceMappingURL comment of a renamed
// stylesheet at its renamed map.
func relinkSourceMap(css []byte, from, to string) []byte {
	if from == to {
		return css
	}
	return []byte(strings.Replace(string(css), "sourceMappingURL="+from+".map", "sourceMappingURL="+to+".map", 1))
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	out := make([]string, 0, len(formatted))
	for _, m := range formatted {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
