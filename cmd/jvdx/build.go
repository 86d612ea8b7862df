// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jvdx/jvdx/internal/build"
	"github.com/jvdx/jvdx/internal/config"
)

// buildFlags holds the raw values of the build and watch flags. Options
// that have a configuration key are applied only when the flag was set.
type buildFlags struct {
	entries        []string
	output         string
	format         string
	watch          bool
	pkgMain        bool
	noPkgMain      bool
	target         string
	external       string
	globals        string
	define         string
	alias          string
	compress       string
	noCompress     bool
	strict         bool
	name           string
	cwd            string
	sourcemap      string
	noSourcemap    bool
	css            string
	cssModules     string
	jsx            string
	tsconfig       string
	generateTypes  bool
	noGenerateType bool
	clean          bool
	raw            bool
	dryRun         bool
	workers        bool
}

// newBuildCommand creates `jvdx build`, or `jvdx watch` when watch is set.
func newBuildCommand(app *App, flags *globalFlags, watch bool) *cobra.Command {
	f := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [entries...]",
		Short: "Build the package once",
		Long: `Build every entry module in every requested format.

Entries default to package.json "source", then src/index.{ts,tsx,js},
then index.{ts,tsx,js}, then package.json "module". Output file names
follow package.json "main", "module", "exports", "umd:main" and friends
unless --pkg-main=false is given.

Boolean and optional-value flags take their value with "=", for example
--compress=false or --sourcemap=inline. --no-<flag> is accepted for
--compress, --sourcemap, --pkg-main and --generate-types.`,
		Example: `  jvdx build
  jvdx build --clean
  jvdx build --globals react=React,jquery=$
  jvdx build --define API_KEY=1234
  jvdx build --alias react=preact
  jvdx build --no-sourcemap
  jvdx build --tsconfig tsconfig.build.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runBuild(cmd, flags, f, args)
		},
	}
	if watch {
		cmd.Use = "watch [entries...]"
		cmd.Short = "Rebuild the package on every change"
		cmd.Long = "Build every entry module, then rebuild it whenever a source file changes.\n\n" +
			"Watch accepts every build flag."
		cmd.Example = "  jvdx watch\n  jvdx watch --format es --no-compress"
		f.watch = true
	}

	f.register(cmd.Flags(), watch)

	return cmd
}

// register defines the build flags on fs. Watch commands have no --watch.
func (f *buildFlags) register(fs *pflag.FlagSet, watch bool) {
	fs.StringArrayVarP(&f.entries, "entry", "i", nil, "entry module(s)")
	fs.StringVarP(&f.output, "output", "o", "", "directory or file to place build files into")
	fs.StringVarP(&f.format, "format", "f", "", `formats to build, any of modern,es,cjs,umd (default "modern,es,cjs,umd")`)
	if !watch {
		fs.BoolVarP(&f.watch, "watch", "w", false, "rebuild on any change")
	}
	fs.BoolVar(&f.pkgMain, "pkg-main", true, "derive output file names from package.json fields")
	fs.StringVar(&f.target, "target", "", `target environment, web or node (default "web")`)
	fs.StringVar(&f.external, "external", "", "external dependencies, or 'none'")
	fs.StringVarP(&f.globals, "globals", "g", "", "global names of external dependencies, or 'none'")
	fs.StringVar(&f.define, "define", "", "replace constants with hard-coded values")
	fs.StringVarP(&f.alias, "alias", "a", "", "map imports to different modules")
	fs.StringVar(&f.compress, "compress", "", "minify the output (default true for web, false for node)")
	fs.Lookup("compress").NoOptDefVal = "true"
	fs.BoolVar(&f.strict, "strict", false, `enforce an undefined global context and add "use strict"`)
	fs.StringVarP(&f.name, "name", "n", "", "name exposed in UMD builds")
	fs.StringVar(&f.cwd, "cwd", ".", "use an alternative working directory")
	fs.StringVar(&f.sourcemap, "sourcemap", "", `generate source maps: true, false or inline (default "true")`)
	fs.Lookup("sourcemap").NoOptDefVal = "true"
	fs.StringVar(&f.css, "css", "", `where to put stylesheets: external or inline (default "external")`)
	fs.StringVar(&f.cssModules, "css-modules", "", "turn on CSS modules for all .css imports; a string sets the scoped name pattern")
	fs.Lookup("css-modules").NoOptDefVal = "true"
	fs.StringVar(&f.jsx, "jsx", "", "JSX factory function name, e.g. h")
	fs.StringVar(&f.tsconfig, "tsconfig", "", "path to a custom tsconfig.json")
	fs.BoolVar(&f.generateTypes, "generate-types", false, `emit type declarations (default: when package.json has "types")`)
	fs.BoolVarP(&f.clean, "clean", "c", false, "clean the output directory before building")
	fs.BoolVar(&f.raw, "raw", false, "show raw byte sizes")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print the resolved build plan without building")

	fs.BoolVar(&f.noPkgMain, "no-pkg-main", false, "")
	fs.BoolVar(&f.noCompress, "no-compress", false, "")
	fs.BoolVar(&f.noSourcemap, "no-sourcemap", false, "")
	fs.BoolVar(&f.noGenerateType, "no-generate-types", false, "")
	for _, name := range []string{"no-pkg-main", "no-compress", "no-sourcemap", "no-generate-types"} {
		_ = fs.MarkHidden(name)
	}
	fs.BoolVar(&f.workers, "workers", false, "")
	_ = fs.MarkDeprecated("workers", "compilation runs in-process; the flag has no effect")
}

// runBuild resolves the plan and builds, watches or prints it.
func (a *App) runBuild(cmd *cobra.Command, flags *globalFlags, f *buildFlags, args []string) error {
	ctx := cmd.Context()

	s, err := a.newSession(ctx, flags, f.cwd)
	if err != nil {
		return a.commandError(err, s)
	}

	opts := buildOptions(cmd.Flags(), f, s.cfg, args)
	plan, err := a.Resolver.Resolve(ctx, opts)
	if err != nil {
		return a.commandError(err, s)
	}

	if f.dryRun {
		for _, w := range plan.Warnings {
			s.logger.Warn(w)
		}
		renderPlan(a.stdout, plan)
		return nil
	}

	orchestrator := build.NewOrchestrator(a.Compiler, s.logger)

	if opts.Watch {
		debounce, _ := s.cfg.Watch.Debounce.Duration()
		err := orchestrator.Watch(ctx, plan, build.WatchOptions{
			Debounce:    debounce,
			ClearScreen: s.cfg.Watch.ClearScreen,
			Stdout:      a.stdout,
			Stderr:      a.stderr,
			OnBuild: func(entry string, _ *build.Summary) {
				s.logger.Debug("rebuilt", "entry", plan.Rel(entry))
			},
		})
		return a.commandError(err, s)
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render("Creating an optimized production build"))
	summary, err := orchestrator.Run(ctx, plan)
	if err != nil {
		return a.commandError(err, s)
	}
	renderSummary(a.stdout, summary, opts.Raw)
	return nil
}

// buildOptions layers the defaults, the configuration and the flags that
// were set on the command line.
func buildOptions(fs *pflag.FlagSet, f *buildFlags, cfg *config.Config, args []string) build.Options {
	opts := build.DefaultOptions(cfg.Build.Modern)

	opts.Format = cfg.Build.Formats()
	opts.Target = string(cfg.Build.Target)
	opts.Sourcemap = build.Sourcemap(cfg.Build.Sourcemap)
	opts.Compress = cfg.Build.Compress
	opts.PkgMain = cfg.Build.PkgMain
	opts.CSS = string(cfg.Build.CSS)

	opts.Entries = append(append([]string{}, f.entries...), args...)
	opts.Output = f.output
	opts.Watch = f.watch
	opts.External = f.external
	opts.Globals = f.globals
	opts.Define = f.define
	opts.Alias = f.alias
	opts.Strict = f.strict
	opts.Name = f.name
	opts.Cwd = f.cwd
	opts.CSSModules = f.cssModules
	opts.JSX = f.jsx
	opts.TSConfig = f.tsconfig
	opts.Clean = f.clean
	opts.Raw = f.raw

	if fs.Changed("format") {
		opts.Format = f.format
	}
	if fs.Changed("target") {
		opts.Target = strings.TrimSpace(f.target)
	}
	if fs.Changed("css") {
		opts.CSS = strings.TrimSpace(f.css)
	}
	if fs.Changed("pkg-main") {
		opts.PkgMain = f.pkgMain
	}
	if f.noPkgMain {
		opts.PkgMain = false
	}

	switch {
	case f.noCompress:
		opts.Compress = new(bool)
	case fs.Changed("compress"):
		compress := build.ParseCompress(f.compress)
		opts.Compress = &compress
	}

	switch {
	case f.noSourcemap:
		opts.Sourcemap = build.SourcemapNone
	case fs.Changed("sourcemap"):
		opts.Sourcemap = build.ParseSourcemap(f.sourcemap)
	}

	switch {
	case f.noGenerateType:
		opts.GenerateTypes = new(bool)
	case fs.Changed("generate-types"):
		generate := f.generateTypes
		opts.GenerateTypes = &generate
	}

	return opts
}

// renderSummary prints the elapsed time and the size of every bundle.
func renderSummary(w io.Writer, s *build.Summary, raw bool) {
	fmt.Fprintf(w, "Built in %s\n\n", ElapsedStyle.Render(seconds(s.Elapsed)))
	fmt.Fprintln(w, HeadingStyle.Render("Bundle(s)"))
	for _, b := range s.Bundles {
		fmt.Fprintln(w, b.Base(raw))
		if line := b.GzipLine(raw); line != "" {
			fmt.Fprintln(w, VerboseStyle.Render("  -> ")+line)
		}
		if line := b.BrotliLine(raw); line != "" {
			fmt.Fprintln(w, VerboseStyle.Render("  -> ")+line)
		}
	}
}

// renderPlan prints the resolved targets of a dry run.
func renderPlan(w io.Writer, p *build.Plan) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Build plan for"), CmdStyle.Render(fmt.Sprintf("%q", p.Name.Global)))
	fmt.Fprintf(w, "%s %s\n\n", SubtitleStyle.Render("package directory:"), p.Cwd)

	for _, entry := range p.Entries {
		fmt.Fprintln(w, p.Rel(entry))
		for _, t := range p.TargetsFor(entry) {
			fmt.Fprintf(w, "  %s %s\n", CmdStyle.Render(fmt.Sprintf("%-7s", t.Format)), p.Rel(t.Output.Path))
			if t.CSSFile != "" {
				fmt.Fprintf(w, "  %s %s\n", VerboseStyle.Render(fmt.Sprintf("%-7s", "css")), p.Rel(t.CSSFile))
			}
			if t.Declarations {
				fmt.Fprintf(w, "  %s %s\n", VerboseStyle.Render(fmt.Sprintf("%-7s", "types")), p.Rel(t.DeclarationDir))
			}
		}
	}

	if len(p.Targets) == 0 || p.Targets[0].External == nil {
		return
	}
	ext := p.Targets[0].External
	if len(ext.Spec) > 0 {
		names := make([]string, len(ext.Spec))
		for i, pat := range ext.Spec {
			names[i] = pat.Value
		}
		fmt.Fprintf(w, "\n%s %s\n", SubtitleStyle.Render("external:"), strings.Join(names, ", "))
	}
	if len(ext.Globals) > 0 {
		pairs := make([]string, 0, len(ext.Globals))
		for _, id := range slices.Sorted(maps.Keys(ext.Globals)) {
			pairs = append(pairs, id+"="+ext.Globals[id])
		}
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render("globals:"), strings.Join(pairs, ", "))
	}
}

// seconds renders d like "1.23s".
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
