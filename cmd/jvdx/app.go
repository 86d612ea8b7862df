// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/bundler"
	"github.com/jvdx/jvdx/internal/config"
	"github.com/jvdx/jvdx/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and delegate
	// to its services.
	App struct {
		Config   ConfigProvider
		Compiler build.Compiler
		Resolver *build.Resolver
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp. Tests can supply their own
	// compiler or config source.
	Dependencies struct {
		Config   ConfigProvider
		Compiler build.Compiler
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// globalFlags are the persistent flags shared by every command.
	globalFlags struct {
		verbose    bool
		configPath string
	}

	// session is the per-invocation state derived from flags and configuration.
	session struct {
		cfg     *config.Config
		verbose bool
		logger  *log.Logger
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Compiler == nil {
		esbuild := bundler.New()
		esbuild.Declarer = bundler.TSC{Stdout: deps.Stdout, Stderr: deps.Stderr}
		deps.Compiler = esbuild
	}

	return &App{
		Config:   deps.Config,
		Compiler: deps.Compiler,
		Resolver: &build.Resolver{},
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// newSession loads the configuration for a command running in dir. The
// project configuration is read from dir; --verbose wins over ui.verbose.
func (a *App) newSession(ctx context.Context, flags *globalFlags, dir string) (*session, error) {
	opts := config.LoadOptions{ConfigFilePath: types.FilesystemPath(flags.configPath)}
	projectDir, err := types.FilesystemPath(dir).Abs()
	if err != nil {
		return nil, err
	}
	opts.ProjectDir = projectDir

	cfg, err := a.Config.Load(ctx, opts)
	if err != nil {
		return &session{cfg: config.DefaultConfig(), verbose: flags.verbose, logger: a.newLogger(flags.verbose)}, err
	}

	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &session{cfg: cfg, verbose: verbose, logger: a.newLogger(verbose)}, nil
}

// newLogger returns the stderr logger used for build progress and warnings.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
