// SPDX-License-Identifier: MPL-2.0

package output

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jvdx/jvdx/internal/format"
	"github.com/jvdx/jvdx/pkg/manifest"
)

var (
	// indexEntry matches entries named index, which keep the configured output name.
	indexEntry = regexp.MustCompile(`([\\/])index` + buildExtensions.String())
	srcPath    = regexp.MustCompile(`src/`)
	firstStem  = regexp.MustCompile(`^[^.]+`)
)

type (
	// Request is the input of Resolve for one build target.
	Request struct {
		// Base is the absolute main bundle path returned by Base.
		Base string
		// Entry is the absolute entry file path.
		Entry string
		// Format is the target format.
		Format format.Format
		// Manifest supplies the per-format file name conventions.
		Manifest *manifest.Manifest
		// PkgMain enables the manifest conventions. When false every format
		// is written to Base.
		PkgMain bool
		// MultiEntry is set when the build has more than one entry.
		MultiEntry bool
	}

	// Result is the resolved output location of one build target.
	Result struct {
		// Path is the absolute output file path.
		Path string
		// Dir is the directory of Path.
		Dir string
		// FileName is the base name of Path.
		FileName string
		// ImplicitMJS is set for an es bundle written as .mjs in a package
		// that does not declare "type": "module".
		ImplicitMJS bool
		// Conflict is non-nil when the file extension contradicts the format.
		Conflict *Conflict
	}
)

// Resolve computes the output location of one (entry, format) target.
func Resolve(req Request) Result {
	path := req.Base
	if req.PkgMain {
		path = conventionPath(req)
	}

	res := Result{
		Path:     path,
		Dir:      filepath.Dir(path),
		FileName: filepath.Base(path),
	}

	typeModule := req.Manifest.IsModuleType()
	if req.Format == format.ES && !typeModule && strings.HasSuffix(res.FileName, ".mjs") {
		res.ImplicitMJS = true
	}
	if req.PkgMain {
		res.Conflict = CheckConflict(req.Format, path, typeModule)
	}
	return res
}

// Template returns the manifest-derived file name template for f.
func Template(m *manifest.Manifest, f format.Format) string {
	typeModule := m.IsModuleType()
	switch f {
	case format.ES:
		switch {
		case m.Module != "" && !srcPath.MatchString(m.Module):
			return m.Module
		case m.JSNextMain != "":
			return m.JSNextMain
		}
	case format.Modern:
		if p := m.Exports.Walk(typeModule); p != "" {
			return p
		}
		if m.SyntaxESModules != "" {
			return m.SyntaxESModules
		}
		if m.ESModule != "" {
			return m.ESModule
		}
	case format.UMD:
		if m.UMDMain != "" {
			return m.UMDMain
		}
		if m.Unpkg != "" {
			return m.Unpkg
		}
	default:
		f = format.CJS
	}
	if f == format.CJS && m.CJSMain != "" {
		return m.CJSMain
	}
	return DefaultTemplate(f, typeModule)
}

func conventionPath(req Request) string {
	stem := req.Base
	if req.MultiEntry && !indexEntry.MatchString(req.Entry) {
		stem = filepath.Join(filepath.Dir(req.Base), filepath.Base(req.Entry))
	}
	stem = StripExtension(stem)
	return applyTemplate(Template(req.Manifest, req.Format), stem)
}

// applyTemplate appends the suffix of template's file name (everything from
// the first dot) to stem.
//
//	applyTemplate("dist/x.esm.js", "/out/lib") == "/out/lib.esm.js"
func applyTemplate(template, stem string) string {
	name := filepath.Base(filepath.FromSlash(template))
	return stem + firstStem.ReplaceAllString(name, "")
}
