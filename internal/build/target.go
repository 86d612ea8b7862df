// SPDX-License-Identifier: MPL-2.0

package build

import (
	"github.com/jvdx/jvdx/internal/cssmodules"
	"github.com/jvdx/jvdx/internal/external"
	"github.com/jvdx/jvdx/internal/format"
	"github.com/jvdx/jvdx/internal/mapping"
	"github.com/jvdx/jvdx/internal/namecache"
	"github.com/jvdx/jvdx/internal/output"
	"github.com/jvdx/jvdx/internal/plugin"
)

type (
	// Cell is one (entry, format) position of the build matrix.
	Cell struct {
		Entry  string
		Format format.Format
		// First marks the single cell responsible for one-time side effects:
		// CSS extraction and writing the name cache.
		First bool
	}

	// Target is the fully resolved configuration of one (entry, format) pair.
	// A Target is consumed by exactly one Compile call.
	Target struct {
		Cell

		// Cwd is the absolute package directory.
		Cwd string
		// Output is the resolved output location.
		Output output.Result
		// External classifies import ids and carries the UMD globals table.
		External *external.Result
		// Plugins is the merged compiler plugin configuration.
		Plugins plugin.Config
		// OutputAliases rewrites external import ids in the emitted bundle.
		OutputAliases map[string]string
		// Aliases rewrite import specifiers before resolution.
		Aliases []mapping.Alias

		// Name is the UMD global name; ExtendGlobal assigns into an existing object.
		Name         string
		ExtendGlobal bool
		// Platform is TargetWeb or TargetNode.
		Platform string
		// NodeEngines is the manifest engines.node range, if any.
		NodeEngines string

		Compress  bool
		Strict    bool
		Sourcemap Sourcemap
		// Banner is the entry's shebang line, emitted before the bundle.
		Banner string

		// TypeScript is set for .ts and .tsx entries.
		TypeScript bool
		// Declarations requests .d.ts output into DeclarationDir.
		Declarations   bool
		DeclarationDir string
		TSConfig       string
		JSX            string

		// CSSFile is the extracted stylesheet path; empty when nothing is
		// extracted for this target.
		CSSFile    string
		CSSInline  bool
		CSSModules cssmodules.Setting
		ScopedName string

		// NameCache is shared by every target of the build.
		NameCache *namecache.Store
	}
)

// Modern reports whether t targets runtimes with native module support.
// Modern targets do not share the compile Cache.
func (t *Target) Modern() bool { return t.Format == format.Modern }

// Matrix returns the entry-major, format-minor product of entries and
// formats. The first cell is marked First.
func Matrix(entries []string, formats []format.Format) []Cell {
	cells := make([]Cell, 0, len(entries)*len(formats))
	for i, e := range entries {
		for j, f := range formats {
			cells = append(cells, Cell{Entry: e, Format: f, First: i == 0 && j == 0})
		}
	}
	return cells
}
