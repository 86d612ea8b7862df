// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnores are excluded from every watch: VCS metadata, installed
// packages, coverage reports, TypeScript build info, editor scratch files
// and Finder metadata.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/coverage/**",
	"**/*.tsbuildinfo",
	"**/.#*",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// matcher decides which paths, relative to the watched directory, are
// relevant. Paths are matched with forward slashes.
type matcher struct {
	include []string
	exclude []string
}

func newMatcher(include, ignore []string) matcher {
	exclude := make([]string, 0, len(defaultIgnores)+len(ignore))
	exclude = append(exclude, defaultIgnores...)
	exclude = append(exclude, ignore...)
	return matcher{include: include, exclude: exclude}
}

// ignored reports whether rel matches an exclude pattern.
func (m matcher) ignored(rel string) bool {
	return anyMatch(m.exclude, filepath.ToSlash(rel))
}

// ignoredDir reports whether the directory rel and everything below it is
// excluded. "node_modules" itself does not match "**/node_modules/**", so
// the directory is also tested as a prefix.
func (m matcher) ignoredDir(rel string) bool {
	return m.ignored(rel) || m.ignored(strings.TrimSuffix(filepath.ToSlash(rel), "/")+"/")
}

// selected reports whether rel should trigger a callback. No include
// patterns select every path that is not ignored.
func (m matcher) selected(rel string) bool {
	if m.ignored(rel) {
		return false
	}
	return len(m.include) == 0 || anyMatch(m.include, filepath.ToSlash(rel))
}

func anyMatch(patterns []string, path string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return true
		}
	}
	return false
}

// validatePatterns reports every empty or malformed pattern. kind names the
// pattern list in messages.
func validatePatterns(patterns []string, kind string) []error {
	var errs []error
	for _, pat := range patterns {
		switch {
		case pat == "":
			errs = append(errs, fmt.Errorf("watch: empty %s pattern", kind))
		case !doublestar.ValidatePattern(pat):
			errs = append(errs, fmt.Errorf("watch: invalid %s pattern %q: %w", kind, pat, doublestar.ErrBadPattern))
		}
	}
	return errs
}

// DefaultIgnores returns a copy of the patterns every Watcher excludes.
func DefaultIgnores() []string {
	return append([]string(nil), defaultIgnores...)
}
