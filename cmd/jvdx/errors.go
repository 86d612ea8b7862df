// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/config"
	"github.com/jvdx/jvdx/internal/entry"
	"github.com/jvdx/jvdx/internal/format"
	"github.com/jvdx/jvdx/internal/issue"
	"github.com/jvdx/jvdx/internal/mapping"
	"github.com/jvdx/jvdx/internal/toolrun"
	"github.com/jvdx/jvdx/internal/watch"
	"github.com/jvdx/jvdx/pkg/types"
)

// classifyError maps a command failure to its issue catalog entry. It
// returns 0 for errors without a catalog entry.
func classifyError(err error) issue.Id {
	if id := issue.IssueOf(err); id != 0 {
		return id
	}
	switch {
	case errors.Is(err, entry.ErrNoEntry):
		return issue.NoEntryId
	case errors.Is(err, build.ErrUnsafeClean):
		return issue.UnsafeCleanId
	case errors.Is(err, build.ErrCompile):
		return issue.CompileFailedId
	case errors.Is(err, toolrun.ErrBinNotFound):
		return issue.ToolNotFoundId
	case errors.Is(err, toolrun.ErrToolFailed):
		return issue.ToolFailedId
	case errors.Is(err, format.ErrInvalidFormat),
		errors.Is(err, build.ErrInvalidSourcemap),
		errors.Is(err, build.ErrInvalidTarget),
		errors.Is(err, mapping.ErrMalformedPair):
		return issue.InvalidOptionId
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrInvalidLoadOptions):
		return issue.ConfigLoadFailedId
	case errors.Is(err, watch.ErrWatcherBroken):
		return issue.WatchFailedId
	}
	return 0
}

// formatErrorForDisplay renders ActionableErrors with their suggestions.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue prints the catalog entry matching err. Only verbose runs get
// the long-form help; everyone else sees the error line printed by fang.
func renderIssue(stderr io.Writer, err error, verbose bool, style string) {
	if !verbose {
		return
	}
	id := classifyError(err)
	if id == 0 {
		return
	}

	catalogEntry := issue.Get(id)
	if catalogEntry == nil {
		return
	}
	rendered, renderErr := catalogEntry.Render(style)
	if renderErr != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", id, "error", renderErr)
		return
	}
	fmt.Fprint(stderr, rendered)
}

// commandError finalizes the error returned from a RunE handler: it renders
// the matching issue and carries a tool's exit status through ExitError.
func (a *App) commandError(err error, s *session) error {
	if err == nil {
		return nil
	}

	style := string(config.ColorSchemeAuto)
	verbose := false
	if s != nil {
		style = string(s.cfg.UI.ColorScheme)
		verbose = s.verbose
		if verbose {
			fmt.Fprintln(a.stderr, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, true))
		}
	}
	renderIssue(a.stderr, err, verbose, style)

	var toolErr *toolrun.ToolError
	if errors.As(err, &toolErr) {
		return &ExitError{Code: toolErr.ExitCode.ForFailure(), Err: err}
	}
	return err
}

// ExitError makes Execute exit with Code. RunE handlers return it instead
// of calling os.Exit so deferred cleanup still runs.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + e.Code.String()
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
