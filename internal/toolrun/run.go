// SPDX-License-Identifier: MPL-2.0

package toolrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jvdx/jvdx/pkg/jsname"
	"github.com/jvdx/jvdx/pkg/types"
)

// binDir is the package manager's executable directory.
const binDir = "node_modules/.bin"

var (
	// ErrBinNotFound is the sentinel wrapped by BinNotFoundError.
	ErrBinNotFound = errors.New("executable not found")
	// ErrToolFailed is the sentinel wrapped by ToolError.
	ErrToolFailed = errors.New("tool failed")
)

type (
	// BinNotFoundError is returned when a tool is neither on PATH nor
	// installed in a node_modules/.bin directory.
	BinNotFoundError struct {
		Name string
		Dir  string
	}

	// ToolError is returned when a tool exits with a non-zero status.
	ToolError struct {
		Bin      string
		ExitCode types.ExitCode
	}

	// Command is one tool invocation.
	Command struct {
		Bin  string
		Args []string
		// Dir is the working directory; empty uses the current one.
		Dir string
		// Stdin, Stdout and Stderr default to the process streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// Error implements the error interface.
func (e *BinNotFoundError) Error() string {
	return fmt.Sprintf("%s not found on PATH or in %s", e.Name, filepath.Join(e.Dir, binDir))
}

// Unwrap returns ErrBinNotFound.
func (e *BinNotFoundError) Unwrap() error { return ErrBinNotFound }

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with status %s", filepath.Base(e.Bin), e.ExitCode)
}

// Unwrap returns ErrToolFailed.
func (e *ToolError) Unwrap() error { return ErrToolFailed }

// ResolveBin locates the executable of the npm package name. The unscoped
// package name is looked up on PATH first, then in node_modules/.bin of dir
// and each of its parents.
func ResolveBin(dir, name string) (string, error) {
	executable := jsname.RemoveScope(name)
	if p, err := exec.LookPath(executable); err == nil {
		return p, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for d := abs; ; d = filepath.Dir(d) {
		for _, candidate := range binCandidates(filepath.Join(d, binDir, executable)) {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	return "", &BinNotFoundError{Name: executable, Dir: abs}
}

func binCandidates(path string) []string {
	if runtime.GOOS == "windows" {
		return []string{path + ".cmd", path + ".exe", path}
	}
	return []string{path}
}

// Run executes c and waits for it. A non-zero exit status is returned as a
// *ToolError carrying the exit code.
func Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Bin, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	}
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	if c.Stderr != nil {
		cmd.Stderr = c.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ToolError{Bin: c.Bin, ExitCode: types.ExitCode(exitErr.ExitCode())}
		}
		return fmt.Errorf("run %s: %w", filepath.Base(c.Bin), err)
	}
	return nil
}

// DefaultCleanPaths are removed by Clean when no path is given.
var DefaultCleanPaths = []string{"./node_modules", "./dist"}

// Clean removes paths relative to dir. Each path may be a doublestar glob.
// It returns the paths that matched, in order.
func Clean(ctx context.Context, dir string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = DefaultCleanPaths
	}

	var removed []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		pattern := p
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return removed, fmt.Errorf("invalid clean pattern %q: %w", p, err)
		}
		for _, m := range matches {
			if err := os.RemoveAll(m); err != nil {
				return removed, fmt.Errorf("remove %s: %w", m, err)
			}
			removed = append(removed, m)
		}
	}
	return removed, nil
}
