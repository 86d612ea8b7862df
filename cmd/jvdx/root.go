// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the jvdx command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "jvdx",
		Short: "Zero-configuration bundler for small JavaScript libraries",
		Long: TitleStyle.Render("jvdx") + SubtitleStyle.Render(" - zero-configuration bundler for small JavaScript libraries") + `

jvdx reads package.json, finds your entry modules and builds every
requested module format (modern, es, cjs, umd) into the files your
manifest points at. It also wraps the usual tooling of a library:
eslint, prettier, jest, tsc and lint-staged.

` + SubtitleStyle.Render("Examples:") + `
  jvdx build                       Build every format of every entry
  jvdx build src/a.js src/b.js     Build two entries
  jvdx build -f cjs --target node  Build a Node.js CommonJS bundle
  jvdx watch                       Rebuild on every change
  jvdx build --dry-run             Show the resolved build plan
  jvdx clean                       Remove ./node_modules and ./dist
  jvdx config show                 Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/jvdx/config.cue)")

	rootCmd.AddCommand(newBuildCommand(app, flags, false))
	rootCmd.AddCommand(newBuildCommand(app, flags, true))
	rootCmd.AddCommand(newCleanCommand(app, flags))
	for _, spec := range toolCommands {
		rootCmd.AddCommand(newToolCommand(app, spec))
	}
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(app.newLogger(false)))

	// fang replaces rootCmd.Version, so the version is passed explicitly.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
