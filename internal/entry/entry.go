// SPDX-License-Identifier: MPL-2.0

// Package entry determines the ordered set of entry files of a build.
package entry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoEntry is the sentinel wrapped by NoEntryError.
var ErrNoEntry = errors.New("no entry module found")

// conventionalExtensions is the lookup order for src/index and index.
var conventionalExtensions = []string{".ts", ".tsx", ".js"}

type (
	// Request describes where entries may come from, in priority order.
	Request struct {
		// Explicit holds entries given on the command line (paths or globs).
		Explicit []string
		// Cwd is the package directory every relative path is resolved against.
		Cwd string
		// Source is the manifest "source" field.
		Source []string
		// Module is the manifest "module" field, used as the last resort.
		Module string
	}

	// NoEntryError is returned when no entry file can be resolved.
	NoEntryError struct {
		Cwd      string
		Patterns []string
	}
)

// Error implements the error interface.
func (e *NoEntryError) Error() string {
	if len(e.Patterns) == 0 {
		return fmt.Sprintf("no entry module found in %s", e.Cwd)
	}
	return fmt.Sprintf("no entry module found in %s (tried %s)", e.Cwd, strings.Join(e.Patterns, ", "))
}

// Unwrap returns ErrNoEntry so callers can use errors.Is for programmatic detection.
func (e *NoEntryError) Unwrap() error { return ErrNoEntry }

// Resolve returns the absolute, de-duplicated entry paths for req. The first
// populated source wins: explicit entries, the manifest "source" field,
// src/index.{ts,tsx,js} (when src/ exists), index.{ts,tsx,js}, then the
// manifest "module" field. Each candidate is expanded as a glob and a
// directory match is replaced by its index.js.
func Resolve(ctx context.Context, req Request) ([]string, error) {
	cwd, err := filepath.Abs(req.Cwd)
	if err != nil {
		return nil, err
	}

	patterns := candidates(cwd, req)
	var entries []string
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches, err := expand(cwd, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand entry %q: %w", pattern, err)
		}
		for _, match := range matches {
			if isDir(match) {
				match = filepath.Join(match, "index.js")
			}
			if !slices.Contains(entries, match) {
				entries = append(entries, match)
			}
		}
	}

	if len(entries) == 0 {
		return nil, &NoEntryError{Cwd: cwd, Patterns: patterns}
	}
	return entries, nil
}

func candidates(cwd string, req Request) []string {
	switch {
	case len(req.Explicit) > 0:
		return req.Explicit
	case len(req.Source) > 0:
		return req.Source
	}

	if isDir(filepath.Join(cwd, "src")) {
		if file := conventional(cwd, filepath.Join("src", "index")); file != "" {
			return []string{file}
		}
	}
	if file := conventional(cwd, "index"); file != "" {
		return []string{file}
	}
	if req.Module != "" {
		return []string{req.Module}
	}
	return nil
}

// conventional returns the first existing base+extension, or "".
func conventional(cwd, base string) string {
	for _, ext := range conventionalExtensions {
		file := filepath.Join(cwd, base+ext)
		if isFile(file) {
			return file
		}
	}
	return ""
}

func expand(cwd, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(cwd, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	for i, match := range matches {
		matches[i] = filepath.Clean(match)
	}
	return matches, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
