// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/toolrun"
)

type (
	// Declarer emits type declarations for a target. It returns warnings
	// for conditions that do not fail the build.
	Declarer interface {
		Declare(ctx context.Context, t *build.Target) ([]string, error)
	}

	// TSC emits declarations with the TypeScript compiler installed in the
	// package.
	TSC struct {
		Stdout io.Writer
		Stderr io.Writer
	}
)

// Declare runs tsc in declaration-only mode on the target entry. A missing
// tsc is reported as a warning.
func (d TSC) Declare(ctx context.Context, t *build.Target) ([]string, error) {
	bin, err := toolrun.ResolveBin(t.Cwd, toolrun.TSC.Name)
	if errors.Is(err, toolrun.ErrBinNotFound) {
		rel, _ := filepath.Rel(t.Cwd, t.Entry)
		return []string{fmt.Sprintf("tsc not found, skipping type declarations for %s", rel)}, nil
	}
	if err != nil {
		return nil, err
	}

	args := []string{
		"--declaration",
		"--emitDeclarationOnly",
		"--allowJs",
		"--skipLibCheck",
		"--jsx", "preserve",
		"--declarationDir", t.DeclarationDir,
		t.Entry,
	}
	err = toolrun.Run(ctx, toolrun.Command{
		Bin:    bin,
		Args:   args,
		Dir:    t.Cwd,
		Stdout: d.Stdout,
		Stderr: d.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("emit type declarations: %w", err)
	}
	return nil, nil
}
