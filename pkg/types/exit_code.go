// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

const (
	// ExitSuccess is the status of a run that succeeded.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure status.
	ExitFailure ExitCode = 1
)

type (
	// ExitCode is a process exit status. Portable statuses are 0-255.
	ExitCode int

	// InvalidExitCodeError reports a status outside 0-255, such as the -1
	// os/exec reports for a process killed by a signal.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is() compatibility.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if c is outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// ForFailure returns the status jvdx exits with after a failure that
// reported c. Success and out-of-range values become ExitFailure so a
// failed run never exits 0.
func (c ExitCode) ForFailure() ExitCode {
	if c.IsSuccess() || c.Validate() != nil {
		return ExitFailure
	}
	return c
}

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
