// SPDX-License-Identifier: MPL-2.0

package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jvdx/jvdx/internal/format"
)

// ModuleKind is how Node interprets a file: as an ES module or as CommonJS.
type ModuleKind string

const (
	// KindUnknown is used for extensions Node does not classify.
	KindUnknown ModuleKind = ""
	// KindESM is an ES module.
	KindESM ModuleKind = "esm"
	// KindCJS is a CommonJS module.
	KindCJS ModuleKind = "commonjs"
)

// templates is the single extension policy: for every format, the fallback
// file name template used when the manifest names no file for it, split by
// whether the package declares "type": "module".
var templates = map[format.Format]struct{ commonJS, module string }{
	format.ES:     {commonJS: "x.esm.mjs", module: "x.esm.js"},
	format.Modern: {commonJS: "x.modern.mjs", module: "x.modern.js"},
	format.CJS:    {commonJS: "x.js", module: "x.cjs"},
	format.UMD:    {commonJS: "x.umd.js", module: "x.umd.js"},
}

// DefaultTemplate returns the fallback template for f. Unknown formats use
// the CommonJS template.
func DefaultTemplate(f format.Format, typeModule bool) string {
	t, ok := templates[f]
	if !ok {
		t = templates[format.CJS]
	}
	if typeModule {
		return t.module
	}
	return t.commonJS
}

// InterpretedKind returns how Node loads path inside a package whose
// "type" is module (typeModule) or commonjs.
func InterpretedKind(path string, typeModule bool) ModuleKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mjs", ".mts":
		return KindESM
	case ".cjs", ".cts":
		return KindCJS
	case ".js", ".ts", ".jsx", ".tsx":
		if typeModule {
			return KindESM
		}
		return KindCJS
	default:
		return KindUnknown
	}
}

// EmittedKind returns the module syntax a format produces. UMD bundles are
// loadable either way and report KindUnknown.
func EmittedKind(f format.Format) ModuleKind {
	switch f {
	case format.ES, format.Modern:
		return KindESM
	case format.CJS:
		return KindCJS
	default:
		return KindUnknown
	}
}

// Conflict records an output whose file extension makes Node load it with a
// different module system than the one the format emits.
type Conflict struct {
	Format      format.Format
	Path        string
	Emitted     ModuleKind
	Interpreted ModuleKind
}

// String describes the conflict for a warning line.
func (c Conflict) String() string {
	return fmt.Sprintf("%s output %s contains %s syntax but will be loaded as %s (check the package.json \"type\" field and the file extension)",
		c.Format, filepath.Base(c.Path), c.Emitted, c.Interpreted)
}

// CheckConflict returns a Conflict when the extension of path contradicts
// the syntax format f emits, or nil.
func CheckConflict(f format.Format, path string, typeModule bool) *Conflict {
	emitted := EmittedKind(f)
	interpreted := InterpretedKind(path, typeModule)
	if emitted == KindUnknown || interpreted == KindUnknown || emitted == interpreted {
		return nil
	}
	return &Conflict{Format: f, Path: path, Emitted: emitted, Interpreted: interpreted}
}
