// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "resolve entries"},
			want: "failed to resolve entries",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "read manifest", Resource: "package.json"},
			want: "failed to read manifest: package.json",
		},
		{
			name: "with resource and cause",
			err: &ActionableError{
				Operation: "load configuration",
				Resource:  "jvdx.toml",
				Cause:     errors.New("unexpected '='"),
			},
			want: "failed to load configuration: jvdx.toml: unexpected '='",
		},
		{
			name: "cause without resource",
			err:  &ActionableError{Operation: "compile", Cause: errors.New("syntax error")},
			want: "failed to compile: syntax error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("open jvdx.toml: %w", fs.ErrPermission)
	err := NewErrorContext().
		WithOperation("load configuration").
		WithResource("jvdx.toml").
		WithSuggestion("Check file permissions").
		WithSuggestion("Run jvdx config path").
		Wrap(inner).
		BuildError()

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("BuildError() = %T, want *ActionableError", err)
	}

	short := ae.Format(false)
	if !strings.Contains(short, "\n  • Check file permissions\n  • Run jvdx config path") {
		t.Errorf("Format(false) is missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not list the chain:\n%s", short)
	}

	long := ae.Format(true)
	for _, want := range []string{"Error chain:", "1. open jvdx.toml: permission denied", "2. permission denied"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestBuildErrorRequiresOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("src").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}
}

func TestBuildErrorSnapshotsSuggestions(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("bundle").WithSuggestion("first")
	first := ctx.BuildError()
	second := ctx.WithSuggestion("second").BuildError()

	var a, b *ActionableError
	errors.As(first, &a)
	errors.As(second, &b)
	if len(a.Suggestions) != 1 || len(b.Suggestions) != 2 {
		t.Errorf("suggestions = %v and %v, want 1 and 2 entries", a.Suggestions, b.Suggestions)
	}
}

func TestIssueOf(t *testing.T) {
	t.Parallel()

	linked := NewErrorContext().WithOperation("load configuration").WithIssue(ConfigLoadFailedId).
		Wrap(errors.New("bad")).BuildError()
	outer := NewErrorContext().WithOperation("build package").Wrap(linked).BuildError()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 0},
		{"linked", linked, ConfigLoadFailedId},
		{"wrapped with fmt", fmt.Errorf("jvdx: %w", linked), ConfigLoadFailedId},
		{"unlinked outer error", outer, ConfigLoadFailedId},
		{"unlinked", NewErrorContext().WithOperation("x").BuildError(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IssueOf(tt.err); got != tt.want {
				t.Errorf("IssueOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
