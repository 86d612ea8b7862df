// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errnoTooManyOpenFiles = syscall.Errno(4)
	errnoInvalidHandle    = syscall.Errno(6)
	errnoNotEnoughMemory  = syscall.Errno(8)
)

// fatalHint reports whether err leaves the watcher unusable, and what the
// user can do about it.
func fatalHint(err error) (string, bool) {
	switch {
	case errors.Is(err, errnoTooManyOpenFiles):
		return "too many open handles; close other watchers", true
	case errors.Is(err, errnoInvalidHandle):
		return "the package directory was removed or unmounted", true
	case errors.Is(err, errnoNotEnoughMemory):
		return "not enough memory for the change buffer", true
	}
	return "", false
}
