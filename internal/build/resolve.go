// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jvdx/jvdx/internal/cssmodules"
	"github.com/jvdx/jvdx/internal/entry"
	"github.com/jvdx/jvdx/internal/external"
	"github.com/jvdx/jvdx/internal/format"
	"github.com/jvdx/jvdx/internal/mapping"
	"github.com/jvdx/jvdx/internal/namecache"
	"github.com/jvdx/jvdx/internal/output"
	"github.com/jvdx/jvdx/internal/plugin"
	"github.com/jvdx/jvdx/pkg/manifest"
)

// nodePresetTargets are the preset-env targets of node builds.
var nodePresetTargets = map[string]any{"node": "14"}

type (
	// Plan is the resolved build: every target, computed before anything
	// is compiled.
	Plan struct {
		// Options are the options the plan was resolved from.
		Options Options
		// Cwd is the absolute package directory.
		Cwd string
		// Manifest is the package manifest with publishConfig applied and
		// the name defaulted.
		Manifest *manifest.Manifest
		// Name is the derived module name.
		Name manifest.Name
		// Entries are the absolute entry files.
		Entries []string
		// Formats is the ordered format list.
		Formats []format.Format
		// Base is the absolute main output path.
		Base string
		// Targets are ordered entry-major, format-minor.
		Targets []*Target
		// NameCache is shared by every target.
		NameCache *namecache.Store
		// State is the per-invocation mutable state.
		State *State

		// Warnings are non-fatal problems found while resolving.
		Warnings []string
		// Notices are informational messages, such as the compiler
		// configuration file in use.
		Notices []string
	}

	// Resolver resolves plans. The zero value is ready to use.
	Resolver struct {
		// Announcer reports each compiler configuration file once. It is
		// usually shared by every resolver of the process.
		Announcer *plugin.Announcer
	}
)

// defaultAnnouncer is used by resolvers without their own Announcer.
var defaultAnnouncer = plugin.NewAnnouncer()

func (r *Resolver) announcer() *plugin.Announcer {
	if r.Announcer != nil {
		return r.Announcer
	}
	return defaultAnnouncer
}

// Resolve resolves opts with a process-wide Announcer.
func Resolve(ctx context.Context, opts Options) (*Plan, error) {
	return (&Resolver{}).Resolve(ctx, opts)
}

// Resolve computes the complete plan for opts. Unreadable manifests and
// other recoverable irregularities become Warnings; a missing entry, an
// invalid format or malformed mapping arguments fail the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cwd, err := filepath.Abs(opts.Cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	p := &Plan{Options: opts, Cwd: cwd, State: NewState()}

	m, err := manifest.Read(cwd)
	if err != nil {
		p.warnManifest(err)
	}
	p.Name = manifest.DeriveName(opts.Name, m, cwd)
	if p.Name.MissingField {
		p.warn(fmt.Sprintf("Missing %s %q field. Assuming %q.", manifest.FileName, "name", p.Name.Package))
	}
	m = m.Clone()
	m.Name = p.Name.Package
	p.Manifest = m

	if opts.Sourcemap == SourcemapInline {
		p.warn("Inline sourcemaps should only be used for debugging purposes.")
	}

	p.Entries, err = entry.Resolve(ctx, entry.Request{
		Explicit: opts.Entries,
		Cwd:      cwd,
		Source:   m.Source,
		Module:   m.Module,
	})
	if err != nil {
		return nil, err
	}

	if p.Formats, err = format.ParseList(opts.Format); err != nil {
		return nil, err
	}
	p.Base = output.Base(cwd, opts.Output, m.Main, m.Name)

	defines, err := mapping.Parse(opts.Define, mapping.ReplacementExpression)
	if err != nil {
		return nil, fmt.Errorf("parse --define: %w", err)
	}
	aliases, err := mapping.ParseAliases(opts.Alias)
	if err != nil {
		return nil, fmt.Errorf("parse --alias: %w", err)
	}

	fileConfig, err := plugin.FindFileConfig(cwd)
	if err != nil {
		return nil, err
	}
	if fileConfig != nil && r.announcer().First(fileConfig.Path) {
		p.Notices = append(p.Notices, "Using external babel configuration from "+p.Rel(fileConfig.Path))
	}

	if p.NameCache, err = namecache.Load(cwd, m.Minify); err != nil {
		return nil, fmt.Errorf("normalize minify options: %w", err)
	}

	for _, e := range p.Entries {
		p.State.ScanShebang(e)
	}

	shared := sharedSettings{
		defines:    defines,
		aliases:    aliases,
		fileConfig: fileConfig,
		modules:    cssmodules.Parse(opts.CSSModules),
	}
	for _, cell := range Matrix(p.Entries, p.Formats) {
		t, err := p.configure(cell, shared)
		if err != nil {
			return nil, err
		}
		p.Targets = append(p.Targets, t)
	}
	return p, nil
}

// OutputDir returns the directory of the main output.
func (p *Plan) OutputDir() string { return filepath.Dir(p.Base) }

// Rel renders path relative to the package directory, "./" prefixed.
func (p *Plan) Rel(path string) string {
	rel, err := filepath.Rel(p.Cwd, path)
	if err != nil {
		return path
	}
	if rel == "." {
		return "."
	}
	return "./" + filepath.ToSlash(rel)
}

// MultiEntry reports whether the build has more than one entry.
func (p *Plan) MultiEntry() bool { return len(p.Entries) > 1 }

// TargetsFor returns the targets of one entry in build order.
func (p *Plan) TargetsFor(entry string) []*Target {
	var out []*Target
	for _, t := range p.Targets {
		if t.Entry == entry {
			out = append(out, t)
		}
	}
	return out
}

type sharedSettings struct {
	defines    map[string]string
	aliases    []mapping.Alias
	fileConfig *plugin.FileConfig
	modules    cssmodules.Setting
}

// configure resolves one matrix cell.
func (p *Plan) configure(cell Cell, s sharedSettings) (*Target, error) {
	opts := p.Options
	m := p.Manifest

	aliasIDs := make([]string, len(s.aliases))
	for i, a := range s.aliases {
		aliasIDs[i] = a.Find
	}

	ext, err := external.Classify(external.Request{
		Entry:            cell.Entry,
		Entries:          p.Entries,
		Target:           opts.Target,
		Dependencies:     m.Dependencies,
		PeerDependencies: m.PeerDependencies,
		External:         opts.External,
		Globals:          opts.Globals,
		Aliases:          aliasIDs,
	})
	if err != nil {
		return nil, err
	}

	out := output.Resolve(output.Request{
		Base:       p.Base,
		Entry:      cell.Entry,
		Format:     cell.Format,
		Manifest:   m,
		PkgMain:    opts.PkgMain,
		MultiEntry: p.MultiEntry(),
	})
	if out.ImplicitMJS {
		p.warn(`Your package.json does not specify {"type":"module"}. jvdx assumes this is a CommonJS package and is generating ES Modules with the ".mjs" file extension.`)
	}
	if out.Conflict != nil {
		p.warn(out.Conflict.String())
	}

	typescript := isTypeScript(cell.Entry)
	custom := plugin.Custom{
		Defines:    s.defines,
		Modern:     cell.Format == format.Modern,
		TypeScript: typescript,
		JSX:        opts.JSX,
		Compress:   opts.ShouldCompress(),
	}
	if opts.Target == TargetNode {
		custom.Targets = nodePresetTargets
	}

	name, extend := GlobalName(p.Name.Global)
	t := &Target{
		Cell:         cell,
		Cwd:          p.Cwd,
		Output:       out,
		External:     ext,
		Plugins:      plugin.Defaults(custom, s.fileConfig),
		Aliases:      slices.Clone(s.aliases),
		Name:         name,
		ExtendGlobal: extend,
		Platform:     opts.Target,
		NodeEngines:  m.Engines["node"],
		Compress:     opts.ShouldCompress(),
		Strict:       opts.Strict,
		Sourcemap:    opts.Sourcemap,
		Banner:       p.State.Shebang(cell.Entry),
		TypeScript:   typescript,
		TSConfig:     opts.TSConfig,
		JSX:          opts.JSX,
		CSSInline:    opts.CSS == CSSInline,
		CSSModules:   s.modules,
		ScopedName:   s.modules.ScopedName(opts.Watch),
		NameCache:    p.NameCache,
	}

	if p.MultiEntry() {
		t.OutputAliases = map[string]string{".": "./" + filepath.Base(p.Base)}
	}
	if cell.First && !t.CSSInline {
		t.CSSFile = output.CSSPath(p.Base)
	}

	t.Declarations = m.Types != ""
	if opts.GenerateTypes != nil {
		t.Declarations = *opts.GenerateTypes
	}
	// Declarations are format independent; emit them once per entry.
	t.Declarations = t.Declarations && cell.Format == p.Formats[0]
	if t.Declarations {
		t.DeclarationDir = output.DeclarationDir(p.Cwd, p.Base, m.Types)
	}
	return t, nil
}

func (p *Plan) warn(msg string) {
	if !slices.Contains(p.Warnings, msg) {
		p.Warnings = append(p.Warnings, msg)
	}
}

func (p *Plan) warnManifest(err error) {
	var rerr *manifest.ReadError
	if !errors.As(err, &rerr) {
		p.warn(err.Error())
		return
	}
	msg := fmt.Sprintf("No %s, assuming package name is %q.", manifest.FileName, rerr.Fallback)
	if !rerr.IsMissing() {
		msg += " " + rerr.Err.Error()
	}
	p.warn(msg)
}

func isTypeScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ts" || ext == ".tsx"
}
