// SPDX-License-Identifier: MPL-2.0

package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jvdx/jvdx/internal/format"
	"github.com/jvdx/jvdx/pkg/manifest"
)

func TestBase(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	if err := os.MkdirAll(filepath.Join(cwd, "build.out"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		output  string
		pkgMain string
		pkgName string
		want    string
	}{
		{name: "scoped default dir", output: "dist", pkgName: "@scope/my-lib", want: "dist/my-lib.js"},
		{name: "nothing configured", pkgName: "lib", want: "dist/lib.js"},
		{name: "explicit file", output: "out/bundle.js", pkgName: "lib", want: "out/bundle.js"},
		{name: "main field", pkgMain: "lib/index.cjs", pkgName: "lib", want: "lib/index.cjs"},
		{name: "output beats main", output: "out", pkgMain: "lib/index.js", pkgName: "lib", want: "out/lib.js"},
		{name: "existing directory with dot", output: "build.out", pkgName: "lib", want: "build.out/lib.js"},
		{name: "uppercase extension is not an extension", output: "out/FILE.JS", pkgName: "lib", want: "out/FILE.JS/lib.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want := filepath.Join(cwd, filepath.FromSlash(tt.want))
			if got := Base(cwd, tt.output, tt.pkgMain, tt.pkgName); got != want {
				t.Errorf("Base() = %q, want %q", got, want)
			}
		})
	}
}

func TestResolveTemplateSuffix(t *testing.T) {
	t.Parallel()

	cwd := t.TempDir()
	base := Base(cwd, "out", "", "lib")
	m := &manifest.Manifest{Name: "lib", Module: "dist/x.esm.js"}

	got := Resolve(Request{
		Base:     base,
		Entry:    filepath.Join(cwd, "src", "index.js"),
		Format:   format.ES,
		Manifest: m,
		PkgMain:  true,
	})

	want := filepath.Join(cwd, "out", "lib.esm.js")
	if got.Path != want {
		t.Errorf("Resolve().Path = %q, want %q", got.Path, want)
	}
	if got.Dir != filepath.Join(cwd, "out") || got.FileName != "lib.esm.js" {
		t.Errorf("Resolve() Dir/FileName = %q/%q", got.Dir, got.FileName)
	}
	if got.ImplicitMJS {
		t.Error("ImplicitMJS set for a .js output")
	}
}

func TestResolveConventions(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "pkg")
	base := filepath.Join(root, "dist", "lib.js")
	entry := filepath.Join(root, "src", "index.ts")

	tests := []struct {
		name     string
		manifest manifest.Manifest
		format   format.Format
		want     string
	}{
		{name: "es default commonjs package", format: format.ES, want: "lib.esm.mjs"},
		{name: "es default module package", manifest: manifest.Manifest{Type: "module"}, format: format.ES, want: "lib.esm.js"},
		{name: "es module into src ignored", manifest: manifest.Manifest{Module: "src/index.js"}, format: format.ES, want: "lib.esm.mjs"},
		{name: "es jsnext:main", manifest: manifest.Manifest{Module: "src/index.js", JSNextMain: "dist/foo.next.js"}, format: format.ES, want: "lib.next.js"},
		{name: "modern default", format: format.Modern, want: "lib.modern.mjs"},
		{name: "modern default module package", manifest: manifest.Manifest{Type: "module"}, format: format.Modern, want: "lib.modern.js"},
		{
			name:     "modern from exports",
			manifest: manifest.Manifest{Exports: manifest.MappingNode([]string{"import"}, map[string]manifest.ExportsNode{"import": manifest.PathNode("./dist/foo.mjs")})},
			format:   format.Modern,
			want:     "lib.mjs",
		},
		{name: "modern syntax.esmodules", manifest: manifest.Manifest{SyntaxESModules: "dist/a.es2017.js"}, format: format.Modern, want: "lib.es2017.js"},
		{name: "modern esmodule", manifest: manifest.Manifest{ESModule: "dist/a.m.js"}, format: format.Modern, want: "lib.m.js"},
		{name: "cjs default", format: format.CJS, want: "lib.js"},
		{name: "cjs default module package", manifest: manifest.Manifest{Type: "module"}, format: format.CJS, want: "lib.cjs"},
		{name: "cjs:main", manifest: manifest.Manifest{CJSMain: "dist/a.node.js"}, format: format.CJS, want: "lib.node.js"},
		{name: "umd default", format: format.UMD, want: "lib.umd.js"},
		{name: "umd:main", manifest: manifest.Manifest{UMDMain: "dist/a.browser.js"}, format: format.UMD, want: "lib.browser.js"},
		{name: "unpkg", manifest: manifest.Manifest{Unpkg: "dist/a.min.js"}, format: format.UMD, want: "lib.min.js"},
		{name: "umd:main before unpkg", manifest: manifest.Manifest{UMDMain: "a.u.js", Unpkg: "a.min.js"}, format: format.UMD, want: "lib.u.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(Request{Base: base, Entry: entry, Format: tt.format, Manifest: &tt.manifest, PkgMain: true})
			if want := filepath.Join(root, "dist", tt.want); got.Path != want {
				t.Errorf("Resolve().Path = %q, want %q", got.Path, want)
			}
		})
	}
}

func TestResolvePkgMainDisabled(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "pkg", "dist", "lib.js")
	m := &manifest.Manifest{Module: "dist/x.esm.js"}
	for _, f := range format.All() {
		got := Resolve(Request{Base: base, Entry: "/pkg/src/a.js", Format: f, Manifest: m, MultiEntry: true})
		if got.Path != base {
			t.Errorf("Resolve(%s).Path = %q, want base %q", f, got.Path, base)
		}
		if got.Conflict != nil {
			t.Errorf("Resolve(%s).Conflict = %v, want nil without pkg-main", f, got.Conflict)
		}
	}
}

func TestResolveMultiEntry(t *testing.T) {
	t.Parallel()

	root := filepath.Join(string(filepath.Separator), "pkg")
	base := filepath.Join(root, "dist", "lib.js")
	m := &manifest.Manifest{Name: "lib"}

	tests := []struct {
		entry  string
		format format.Format
		want   string
	}{
		{entry: "src/a.js", format: format.CJS, want: "dist/a.js"},
		{entry: "src/b.js", format: format.CJS, want: "dist/b.js"},
		{entry: "src/b.ts", format: format.ES, want: "dist/b.esm.mjs"},
		{entry: "src/index.js", format: format.CJS, want: "dist/lib.js"},
		{entry: "src/index.ts", format: format.UMD, want: "dist/lib.umd.js"},
	}

	for _, tt := range tests {
		got := Resolve(Request{
			Base:       base,
			Entry:      filepath.Join(root, filepath.FromSlash(tt.entry)),
			Format:     tt.format,
			Manifest:   m,
			PkgMain:    true,
			MultiEntry: true,
		})
		if want := filepath.Join(root, filepath.FromSlash(tt.want)); got.Path != want {
			t.Errorf("Resolve(%s, %s).Path = %q, want %q", tt.entry, tt.format, got.Path, want)
		}
	}
}

func TestResolveImplicitMJS(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "pkg", "dist", "lib.js")

	got := Resolve(Request{Base: base, Entry: "/pkg/index.js", Format: format.ES, Manifest: &manifest.Manifest{}, PkgMain: true})
	if !got.ImplicitMJS {
		t.Errorf("ImplicitMJS = false for %s in a commonjs package", got.FileName)
	}

	got = Resolve(Request{Base: base, Entry: "/pkg/index.js", Format: format.ES, Manifest: &manifest.Manifest{Type: "module"}, PkgMain: true})
	if got.ImplicitMJS {
		t.Error("ImplicitMJS = true in a module package")
	}

	got = Resolve(Request{Base: base, Entry: "/pkg/index.js", Format: format.Modern, Manifest: &manifest.Manifest{}, PkgMain: true})
	if got.ImplicitMJS {
		t.Error("ImplicitMJS = true for the modern format")
	}
}

func TestResolveConflict(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "pkg", "dist", "lib.js")

	tests := []struct {
		name     string
		manifest manifest.Manifest
		format   format.Format
		want     bool
	}{
		{name: "defaults never conflict cjs", format: format.CJS},
		{name: "defaults never conflict es", format: format.ES},
		{name: "defaults never conflict module cjs", manifest: manifest.Manifest{Type: "module"}, format: format.CJS},
		{name: "cjs written as mjs", manifest: manifest.Manifest{CJSMain: "dist/x.mjs"}, format: format.CJS, want: true},
		{name: "cjs .js in module package", manifest: manifest.Manifest{Type: "module", CJSMain: "dist/x.js"}, format: format.CJS, want: true},
		{name: "es module field .js in commonjs package", manifest: manifest.Manifest{Module: "dist/x.esm.js"}, format: format.ES, want: true},
		{name: "umd never conflicts", manifest: manifest.Manifest{Type: "module"}, format: format.UMD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Resolve(Request{Base: base, Entry: "/pkg/index.js", Format: tt.format, Manifest: &tt.manifest, PkgMain: true})
			if (got.Conflict != nil) != tt.want {
				t.Errorf("Conflict = %v, want conflict %v", got.Conflict, tt.want)
			}
			if got.Conflict != nil && got.Conflict.String() == "" {
				t.Error("Conflict.String() is empty")
			}
		})
	}
}

func TestDefaultTemplateTable(t *testing.T) {
	t.Parallel()

	for _, f := range format.All() {
		for _, typeModule := range []bool{false, true} {
			tmpl := DefaultTemplate(f, typeModule)
			if c := CheckConflict(f, tmpl, typeModule); c != nil {
				t.Errorf("DefaultTemplate(%s, %v) = %q conflicts: %v", f, typeModule, tmpl, c)
			}
		}
	}
	if got := DefaultTemplate("iife", false); got != "x.js" {
		t.Errorf("DefaultTemplate(unknown) = %q, want cjs fallback", got)
	}
}

func TestCSSPathAndDeclarationDir(t *testing.T) {
	t.Parallel()

	if got, want := CSSPath("/pkg/dist/lib.umd.js"), "/pkg/dist/lib.css"; got != want {
		t.Errorf("CSSPath() = %q, want %q", got, want)
	}
	if got, want := CSSPath("/pkg/dist/lib.mjs"), "/pkg/dist/lib.css"; got != want {
		t.Errorf("CSSPath() = %q, want %q", got, want)
	}

	cwd := filepath.Join(string(filepath.Separator), "pkg")
	base := filepath.Join(cwd, "dist", "lib.js")
	if got, want := DeclarationDir(cwd, base, "types/index.d.ts"), filepath.Join(cwd, "types"); got != want {
		t.Errorf("DeclarationDir() = %q, want %q", got, want)
	}
	if got, want := DeclarationDir(cwd, base, ""), filepath.Join(cwd, "dist"); got != want {
		t.Errorf("DeclarationDir() = %q, want %q", got, want)
	}
}
