// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jvdx/jvdx/internal/external"
	"github.com/jvdx/jvdx/internal/format"
)

const (
	// SourcemapExternal writes a .map file next to every bundle.
	SourcemapExternal Sourcemap = "true"
	// SourcemapNone disables source maps.
	SourcemapNone Sourcemap = "false"
	// SourcemapInline embeds the source map in the bundle.
	SourcemapInline Sourcemap = "inline"

	// TargetWeb is the default browser-like runtime target.
	TargetWeb = "web"
	// TargetNode targets the Node.js runtime.
	TargetNode = external.TargetNode

	// CSSExternal extracts stylesheets into a .css file next to the bundle.
	CSSExternal = "external"
	// CSSInline keeps stylesheets inside the JavaScript bundle.
	CSSInline = "inline"

	// globalPrefix on --name extends an existing global instead of replacing it.
	globalPrefix = "global."
)

var (
	// ErrInvalidSourcemap is the sentinel wrapped by InvalidSourcemapError.
	ErrInvalidSourcemap = errors.New("invalid sourcemap value")
	// ErrInvalidTarget is the sentinel wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")
)

type (
	// Sourcemap selects how source maps are emitted.
	Sourcemap string

	// InvalidSourcemapError is returned for an unknown --sourcemap value.
	InvalidSourcemapError struct {
		Value Sourcemap
	}

	// InvalidTargetError is returned for an unknown --target value.
	InvalidTargetError struct {
		Value string
	}

	// Options is the complete option set of one build invocation. The zero
	// value is not meaningful; start from DefaultOptions.
	Options struct {
		// Entries are explicit entry files or glob patterns. Empty means the
		// entries are discovered from the manifest and conventional paths.
		Entries []string
		// Output is the output file or directory. Default: manifest "main",
		// then "dist".
		Output string
		// Format is the comma separated format list. Default: format.DefaultList.
		Format string
		// Watch rebuilds on every source change.
		Watch bool
		// PkgMain derives per-format file names from manifest fields. Default: true.
		PkgMain bool
		// Target is the runtime target, TargetWeb or TargetNode. Default: TargetWeb.
		Target string
		// External is "", "none" or a comma list of module names and patterns.
		External string
		// Globals is "", "none" or a comma list of id=Global pairs.
		Globals string
		// Define is a comma list of KEY=value constant replacements.
		Define string
		// Alias is a comma list of from=to import rewrites.
		Alias string
		// Compress minifies the output. nil means true for web and false for node.
		Compress *bool
		// Strict emits "use strict" and assumes an undefined global this.
		Strict bool
		// Name overrides the module name exposed by UMD bundles. A "global."
		// prefix extends an existing global object.
		Name string
		// Cwd is the package directory. Default: ".".
		Cwd string
		// Sourcemap selects source map output. Default: SourcemapExternal.
		Sourcemap Sourcemap
		// CSS is CSSExternal or CSSInline. Default: CSSExternal.
		CSS string
		// CSSModules is the raw --css-modules value ("", "true", "false",
		// "null" or a scoped name pattern).
		CSSModules string
		// JSX is the JSX factory function name. Empty keeps the compiler default.
		JSX string
		// TSConfig is a custom tsconfig path, relative to Cwd.
		TSConfig string
		// GenerateTypes forces (true) or suppresses (false) declaration output.
		// nil emits declarations when the manifest has "types" or "typings".
		GenerateTypes *bool
		// Clean removes the output directory before building.
		Clean bool
		// Raw prints raw byte sizes instead of humanized ones.
		Raw bool
	}
)

// Error implements the error interface.
func (e *InvalidSourcemapError) Error() string {
	return fmt.Sprintf("invalid sourcemap value %q (valid: true, false, inline)", e.Value)
}

// Unwrap returns ErrInvalidSourcemap for errors.Is compatibility.
func (e *InvalidSourcemapError) Unwrap() error { return ErrInvalidSourcemap }

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q (valid: web, node)", e.Value)
}

// Unwrap returns ErrInvalidTarget for errors.Is compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// ParseSourcemap reads a --sourcemap value. Anything but "false" and
// "inline" enables external source maps.
func ParseSourcemap(s string) Sourcemap {
	switch strings.TrimSpace(s) {
	case string(SourcemapNone):
		return SourcemapNone
	case string(SourcemapInline):
		return SourcemapInline
	default:
		return SourcemapExternal
	}
}

// Validate returns an error if s is not a known sourcemap mode.
func (s Sourcemap) Validate() error {
	switch s {
	case SourcemapExternal, SourcemapNone, SourcemapInline:
		return nil
	default:
		return &InvalidSourcemapError{Value: s}
	}
}

// Enabled reports whether any source map is emitted.
func (s Sourcemap) Enabled() bool { return s != SourcemapNone }

// ParseCompress reads a --compress value: "false" and "0" disable
// compression, any other value enables it.
func ParseCompress(s string) bool {
	s = strings.TrimSpace(s)
	return s != "false" && s != "0"
}

// DefaultOptions returns the defaults of every option. modern controls
// whether the "modern" format is part of the default format list.
func DefaultOptions(modern bool) Options {
	formats := format.DefaultList
	if !modern {
		formats = "es,cjs,umd"
	}
	return Options{
		Format:    formats,
		PkgMain:   true,
		Target:    TargetWeb,
		Cwd:       ".",
		Sourcemap: SourcemapExternal,
		CSS:       CSSExternal,
	}
}

// ShouldCompress resolves the effective compression setting.
func (o Options) ShouldCompress() bool {
	if o.Compress != nil {
		return *o.Compress
	}
	return o.Target != TargetNode
}

// GlobalName returns the UMD module name without the "global." prefix, and
// whether the prefix asked to extend an existing global.
func GlobalName(name string) (string, bool) {
	if rest, ok := strings.CutPrefix(name, globalPrefix); ok {
		return rest, true
	}
	return name, false
}

// validate checks the enumerated options.
func (o Options) validate() error {
	if err := o.Sourcemap.Validate(); err != nil {
		return err
	}
	switch o.Target {
	case TargetWeb, TargetNode:
	default:
		return &InvalidTargetError{Value: o.Target}
	}
	return nil
}
