// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jvdx/jvdx/internal/toolrun"
)

// toolSpec describes a pass-through command.
type toolSpec struct {
	use   string
	short string
	// banner is printed before the tool runs.
	banner string
	// verb starts the summary line, e.g. "Linted".
	verb string
	// heading titles the list of processed paths; empty omits the list.
	heading string
	// tool returns the tool configured for dir and the raw arguments.
	tool func(dir string, raw []string) (toolrun.Tool, error)
}

// static adapts a fixed tool to toolSpec.tool.
func static(t toolrun.Tool) func(string, []string) (toolrun.Tool, error) {
	return func(string, []string) (toolrun.Tool, error) { return t, nil }
}

var toolCommands = []toolSpec{
	{
		use:     "lint [paths...]",
		short:   "Lint your source code using eslint",
		banner:  "Linting sources",
		verb:    "Linted",
		heading: "Glob(s) processed",
		tool:    static(toolrun.ESLint),
	},
	{
		use:     "format [paths...]",
		short:   "Format your source code using prettier",
		banner:  "Formatting sources",
		verb:    "Formatted",
		heading: "Glob(s) processed",
		tool:    static(toolrun.Prettier),
	},
	{
		use:    "test [paths...]",
		short:  "Test your source code using jest",
		banner: "Running unit tests",
		verb:   "Tested",
		tool:   static(toolrun.Jest),
	},
	{
		use:    "typecheck",
		short:  "Type check your source code using tsc",
		banner: "Type checking sources",
		verb:   "Typechecked",
		tool:   static(toolrun.TSC),
	},
	{
		use:    "pre-commit",
		short:  "Run pre-commit tasks using lint-staged",
		banner: "Running pre-commit tasks",
		verb:   "Checked",
		tool:   toolrun.PreCommit,
	},
}

// newToolCommand creates a command that forwards its arguments to an
// external tool. Flag parsing is disabled so every flag reaches the tool.
func newToolCommand(app *App, spec toolSpec) *cobra.Command {
	return &cobra.Command{
		Use:                spec.use,
		Short:              spec.short,
		Long:               spec.short + ".\n\nEvery argument is passed through to the tool.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTool(cmd, spec, args)
		},
	}
}

func (a *App) runTool(cmd *cobra.Command, spec toolSpec, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render(spec.banner))
	start := time.Now()

	tool, err := spec.tool(dir, args)
	if err != nil {
		return a.commandError(err, nil)
	}
	c, paths, err := tool.Command(dir, args)
	if err != nil {
		return a.commandError(err, nil)
	}
	c.Stdout, c.Stderr = a.stdout, a.stderr
	if err := toolrun.Run(cmd.Context(), c); err != nil {
		return a.commandError(err, nil)
	}

	fmt.Fprintf(a.stdout, "%s in %s\n", spec.verb, ElapsedStyle.Render(seconds(time.Since(start))))
	if spec.heading != "" && len(paths) > 0 {
		fmt.Fprintf(a.stdout, "\n%s\n%s\n", HeadingStyle.Render(spec.heading), VerboseStyle.Render(strings.Join(paths, "\n")))
	}
	return nil
}

// newCleanCommand creates `jvdx clean`.
func newCleanCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Remove ./node_modules and ./dist",
		Long: `Clean the repository by removing ./node_modules and ./dist.

Pass paths or doublestar glob patterns to remove those instead.`,
		Example: "  jvdx clean\n  jvdx clean 'coverage' '**/*.tsbuildinfo'",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runClean(cmd, flags, args)
		},
	}
}

func (a *App) runClean(cmd *cobra.Command, flags *globalFlags, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	s, err := a.newSession(cmd.Context(), flags, dir)
	if err != nil {
		return a.commandError(err, s)
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render("Cleaning directories"))
	start := time.Now()

	patterns := args
	if len(patterns) == 0 {
		patterns = toolrun.DefaultCleanPaths
	}
	removed, err := toolrun.Clean(cmd.Context(), dir, patterns)
	for _, path := range removed {
		s.logger.Debug("removed", "path", path)
	}
	if err != nil {
		return a.commandError(err, s)
	}

	fmt.Fprintf(a.stdout, "Cleaned in %s\n\n%s\n%s\n",
		ElapsedStyle.Render(seconds(time.Since(start))),
		HeadingStyle.Render("Directories removed"),
		VerboseStyle.Render(strings.Join(patterns, "\n")))
	return nil
}
