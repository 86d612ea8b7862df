// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseNormalizesFields(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{
		"name": "@scope/my-lib",
		"type": "module",
		"main": "dist/lib.cjs",
		"module": "dist/lib.esm.js",
		"source": ["src/a.js", "src/b.js"],
		"typings": "dist/types/index.d.ts",
		"syntax": {"esmodules": "dist/lib.modern.js"},
		"engines": {"node": ">=16"},
		"dependencies": {"zeta": "^1.0.0", "alpha": "^2.0.0"},
		"peerDependencies": {"react": "*"},
		"mangle": {"regex": "^_"}
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := &Manifest{
		Name:             "@scope/my-lib",
		Type:             "module",
		Main:             "dist/lib.cjs",
		Module:           "dist/lib.esm.js",
		Source:           []string{"src/a.js", "src/b.js"},
		Types:            "dist/types/index.d.ts",
		SyntaxESModules:  "dist/lib.modern.js",
		Engines:          map[string]string{"node": ">=16"},
		Dependencies:     []string{"zeta", "alpha"},
		PeerDependencies: []string{"react"},
		Minify:           []byte(`{"regex": "^_"}`),
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if !m.IsModuleType() {
		t.Error("IsModuleType() = false, want true")
	}
}

func TestParseSourceString(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"source": "src/main.ts"}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"src/main.ts"}, m.Source); diff != "" {
		t.Errorf("Source mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMinifyPrefersMinifyOverMangle(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"minify": "cache.json", "mangle": {"regex": "^_"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(m.Minify); got != `"cache.json"` {
		t.Errorf("Minify = %s, want %q", got, `"cache.json"`)
	}

	m, err = Parse([]byte(`{"minify": false, "mangle": "names.json"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(m.Minify); got != `"names.json"` {
		t.Errorf("Minify = %s, want mangle fallback", got)
	}
}

func TestParsePublishConfigOverlay(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{
		"name": "pkg",
		"main": "src/index.js",
		"publishConfig": {"main": "dist/index.js", "module": "dist/index.mjs"}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Main != "dist/index.js" || m.Module != "dist/index.mjs" {
		t.Errorf("overlay not applied: main=%q module=%q", m.Main, m.Module)
	}
	if m.Name != "pkg" {
		t.Errorf("Name = %q, want %q", m.Name, "pkg")
	}
}

func TestParseSkipsMistypedFields(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte(`{"name": "pkg", "main": ["a.js"], "module": "dist/x.mjs"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Main != "" || m.Module != "dist/x.mjs" || m.Name != "pkg" {
		t.Errorf("Parse() = %+v", m)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"name":`)); err == nil {
		t.Error("Parse() with truncated JSON should fail")
	}
}

func TestRead(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"name":"on-disk"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if m.Name != "on-disk" || !m.Exists {
		t.Errorf("Read() = %+v", m)
	}
}

func TestReadMissingFallsBackToDirName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "my-dir")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := Read(dir)
	if !errors.Is(err, ErrManifestRead) {
		t.Fatalf("Read() error = %v, want ErrManifestRead", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() error = %v, want fs.ErrNotExist in chain", err)
	}

	var readErr *ReadError
	if !errors.As(err, &readErr) || !readErr.IsMissing() {
		t.Errorf("errors.As(*ReadError) failed or IsMissing() = false")
	}
	if m.Name != "my-dir" || m.Exists {
		t.Errorf("fallback manifest = %+v", m)
	}
}

func TestReadCorruptFallsBack(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "broken")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{oops`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(dir)
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Read() error = %v, want *ReadError", err)
	}
	if readErr.IsMissing() {
		t.Error("IsMissing() = true for a corrupt file")
	}
	if m.Name != "broken" {
		t.Errorf("fallback name = %q, want %q", m.Name, "broken")
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	m := &Manifest{Dependencies: []string{"a"}, Engines: map[string]string{"node": "18"}}
	c := m.Clone()
	c.Dependencies[0] = "b"
	c.Engines["node"] = "20"
	if m.Dependencies[0] != "a" || m.Engines["node"] != "18" {
		t.Error("Clone() shares state with the original")
	}
}
