// SPDX-License-Identifier: MPL-2.0

package toolrun

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"github.com/jvdx/jvdx/pkg/jsonobj"
	"github.com/jvdx/jvdx/pkg/manifest"
)

// Placement says where positional paths go relative to the flags.
type Placement int

const (
	// PathsBeforeArgs puts positional paths first (eslint).
	PathsBeforeArgs Placement = iota
	// PathsAfterArgs puts positional paths last (prettier, jest).
	PathsAfterArgs
)

// Tool describes one wrapped executable.
type Tool struct {
	// Name is the npm package name of the executable.
	Name string
	// DefaultPaths are used when no positional path is given.
	DefaultPaths []string
	Placement    Placement
	Options      Options
}

var (
	// ESLint lints ./src.
	ESLint = Tool{
		Name:         "eslint",
		DefaultPaths: []string{"./src"},
		Placement:    PathsBeforeArgs,
		Options:      Options{Defaults: []string{"--ext", ".js,.jsx,.ts,.tsx"}},
	}

	// Prettier formats the sources in place.
	Prettier = Tool{
		Name:         "prettier",
		DefaultPaths: []string{"./src/**/*.+(js|json|less|css|ts|tsx|md)"},
		Placement:    PathsAfterArgs,
		Options:      Options{Defaults: []string{"--write", "--loglevel", "silent"}},
	}

	// TSC type checks without emitting.
	TSC = Tool{
		Name:      "tsc",
		Placement: PathsAfterArgs,
		Options:   Options{Required: []string{"--noEmit", "--incremental", "false"}},
	}

	// LintStaged runs the pre-commit tasks.
	LintStaged = Tool{
		Name:      "lint-staged",
		Placement: PathsAfterArgs,
	}

	// Jest runs the test suite with the built-in configuration.
	Jest = Tool{
		Name:      "jest",
		Placement: PathsAfterArgs,
		Options:   Options{Required: []string{"--config", mustJSON(jestConfig)}},
	}

	jestConfig = map[string]any{
		"testEnvironment": "node",
		"testURL":         "http://localhost",
	}

	// lintStagedConfig is used when the project carries no configuration.
	lintStagedConfig = map[string][]string{
		"{src,tests}/**/*.js":               {"jvdx lint", "jvdx format"},
		"{*,{src,tests}/**/*}.+(js|jsx|css)": {"jvdx format"},
		"*.md":                              {"jvdx format"},
	}

	lintStagedFiles = []string{".lintstagedrc", "lint-staged.config.js"}
)

// Command builds the invocation of t in dir from raw command line
// arguments.
func (t Tool) Command(dir string, raw []string) (Command, []string, error) {
	bin, err := ResolveBin(dir, t.Name)
	if err != nil {
		return Command{}, nil, err
	}

	fs, paths := ParseFlags(raw)
	if len(paths) == 0 {
		paths = slices.Clone(t.DefaultPaths)
	}
	args := Args(fs, t.Options)

	var all []string
	if t.Placement == PathsBeforeArgs {
		all = append(slices.Clone(paths), args...)
	} else {
		all = append(args, paths...)
	}
	return Command{Bin: bin, Args: all, Dir: dir}, paths, nil
}

// PreCommit returns LintStaged configured for dir. The built-in task list
// is written below node_modules/.cache and passed with --config unless the
// caller or the project provides a configuration.
func PreCommit(dir string, raw []string) (Tool, error) {
	tool := LintStaged
	fs, _ := ParseFlags(raw)
	if _, ok := fs.Lookup("config"); ok || hasLintStagedConfig(dir) {
		return tool, nil
	}

	path := filepath.Join(dir, "node_modules", ".cache", "jvdx", "lint-staged.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return tool, err
	}
	if err := os.WriteFile(path, []byte(mustJSON(lintStagedConfig)), 0o644); err != nil {
		return tool, err
	}
	tool.Options.Required = []string{"--config", path}
	return tool, nil
}

func hasLintStagedConfig(dir string) bool {
	for _, name := range lintStagedFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	if err != nil {
		return false
	}
	obj, err := jsonobj.Parse(data)
	return err == nil && obj.Has("lint-staged")
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
