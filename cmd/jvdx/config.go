// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvdx/jvdx/internal/config"
	"github.com/jvdx/jvdx/pkg/types"
)

// newConfigCommand creates the `jvdx config` command tree.
func newConfigCommand(app *App, flags *globalFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jvdx configuration",
		Long: `Manage jvdx configuration.

User configuration is stored in:
  - Linux: ~/.config/jvdx/config.cue
  - macOS: ~/Library/Application Support/jvdx/config.cue
  - Windows: %APPDATA%\jvdx\config.cue

A jvdx.toml next to package.json overrides it for one project, and
JVDX_* environment variables override both.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd, flags, showFormat)
		},
	}
	showCmd.Flags().StringVar(&showFormat, "format", "cue", "output format (cue, toml)")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath()
		},
	})

	return cfgCmd
}

func (a *App) showConfig(cmd *cobra.Command, flags *globalFlags, format string) error {
	if format != "cue" && format != "toml" {
		return fmt.Errorf("invalid format %q: must be 'cue' or 'toml'", format)
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	s, err := a.newSession(cmd.Context(), flags, dir)
	if err != nil {
		return a.commandError(err, s)
	}

	sources, err := config.Sources(cmd.Context(), config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(flags.configPath),
		ProjectDir:     types.FilesystemPath(dir),
	})
	if err != nil {
		return a.commandError(err, s)
	}

	fmt.Fprintln(a.stderr, TitleStyle.Render("Current Configuration"))
	if len(sources) == 0 {
		fmt.Fprintf(a.stderr, "%s: %s\n", CmdStyle.Render("Sources"), SubtitleStyle.Render("(using defaults)"))
	}
	for _, src := range sources {
		fmt.Fprintf(a.stderr, "%s: %s\n", CmdStyle.Render("Source"), src)
	}
	fmt.Fprintln(a.stderr)

	if format == "toml" {
		out, err := config.GenerateTOML(s.cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(a.stdout, out)
		return nil
	}
	fmt.Fprint(a.stdout, config.GenerateCUE(s.cfg))
	return nil
}

func (a *App) initConfig() error {
	cfgPath, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(a.stdout, "%s Configuration file at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func (a *App) showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.UserConfigPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Config file: %s\n", cfgPath)
	fmt.Fprintf(a.stdout, "Project file: %s\n", config.ProjectFileName)
	return nil
}
