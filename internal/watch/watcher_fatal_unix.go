// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// fatalHint reports whether err leaves the inotify watcher unusable, and
// how the user can lift the limit behind it. Every directory of the package
// (node_modules excluded) costs one inotify watch.
func fatalHint(err error) (string, bool) {
	switch {
	case errors.Is(err, syscall.ENOSPC):
		return "raise fs.inotify.max_user_watches or watch a smaller directory", true
	case errors.Is(err, syscall.EMFILE):
		return "raise the open file limit with ulimit -n", true
	case errors.Is(err, syscall.ENFILE):
		return "the system file table is full", true
	}
	return "", false
}
