// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jvdx/jvdx/internal/issue"
	"github.com/jvdx/jvdx/pkg/types"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func load(t *testing.T, opts LoadOptions) (*Config, error) {
	t.Helper()
	return NewProvider().Load(t.Context(), opts)
}

func boolPtr(b bool) *bool { return &b }

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(t, LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
		ProjectDir:    types.FilesystemPath(t.TempDir()),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadUserCUE(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "config.cue"), `
build: {
	target:    "node"
	sourcemap: "inline"
	compress:  true
}
ui: verbose: true
`)

	cfg, err := load(t, LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	want.Build.Target = TargetNode
	want.Build.Sourcemap = SourcemapInline
	want.Build.Compress = boolPtr(true)
	want.UI.Verbose = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadProjectTOMLOverridesUserCUE(t *testing.T) {
	t.Parallel()

	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "config.cue"), `build: {target: "node", css: "inline"}`)

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, ProjectFileName), `
[build]
target = "web"
format = "es,cjs"

[watch]
debounce = "250ms"
`)

	opts := LoadOptions{
		ConfigDirPath: types.FilesystemPath(cfgDir),
		ProjectDir:    types.FilesystemPath(projectDir),
	}
	cfg, err := load(t, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	want.Build.Target = TargetWeb
	want.Build.CSS = CSSInline
	want.Build.Format = "es,cjs"
	want.Watch.Debounce = "250ms"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	sources, err := Sources(t.Context(), opts)
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	wantSources := []string{
		filepath.Join(cfgDir, "config.cue"),
		filepath.Join(projectDir, ProjectFileName),
	}
	if diff := cmp.Diff(wantSources, sources); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		file     string
		content  string
		resource string
	}{
		{"cue unknown key", "config.cue", `bundler: "rollup"`, "config.cue"},
		{"cue bad value", "config.cue", `build: target: "deno"`, "config.cue"},
		{"cue syntax", "config.cue", `build: {`, "config.cue"},
		{"toml unknown key", ProjectFileName, "[build]\nminify = true\n", ProjectFileName},
		{"toml bad value", ProjectFileName, "[build]\nsourcemap = \"hidden\"\n", ProjectFileName},
		{"toml syntax", ProjectFileName, "[build\n", ProjectFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			_, err := load(t, LoadOptions{
				ConfigDirPath: types.FilesystemPath(dir),
				ProjectDir:    types.FilesystemPath(dir),
			})
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("Load() error is %T, want *issue.ActionableError", err)
			}
			if !strings.HasSuffix(ae.Resource, tt.resource) {
				t.Errorf("Resource = %q, want suffix %q", ae.Resource, tt.resource)
			}
			if len(ae.Suggestions) == 0 {
				t.Error("error should carry suggestions")
			}
			if got := issue.IssueOf(err); got != issue.ConfigLoadFailedId {
				t.Errorf("IssueOf() = %d, want ConfigLoadFailedId", got)
			}
		})
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "custom.toml")
	writeFile(t, tomlPath, "[ui]\ncolor_scheme = \"dark\"\n")

	cfg, err := load(t, LoadOptions{ConfigFilePath: types.FilesystemPath(tomlPath)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, ColorSchemeDark)
	}

	_, err = load(t, LoadOptions{ConfigFilePath: types.FilesystemPath(filepath.Join(dir, "missing.cue"))})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load(missing) error = %v, want config file not found", err)
	}
}

func TestLoadInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := load(t, LoadOptions{ProjectDir: "   "})
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Errorf("Load() error = %v, want ErrInvalidLoadOptions", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

// Environment tests mutate process state and cannot run in parallel.

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JVDX_MODERN", "false")
	t.Setenv("JVDX_BUILD_TARGET", "node")
	t.Setenv("JVDX_BUILD_COMPRESS", "false")
	t.Setenv("JVDX_WATCH_CLEAR_SCREEN", "true")

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, ProjectFileName), "[build]\ntarget = \"web\"\nmodern = true\n")

	cfg, err := load(t, LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
		ProjectDir:    types.FilesystemPath(projectDir),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.Build.Formats(), "es,cjs,umd"; got != want {
		t.Errorf("Build.Formats() = %q, want %q", got, want)
	}
	if cfg.Build.Target != TargetNode {
		t.Errorf("Build.Target = %q, want %q", cfg.Build.Target, TargetNode)
	}
	if cfg.Build.Compress == nil || *cfg.Build.Compress {
		t.Errorf("Build.Compress = %v, want false", cfg.Build.Compress)
	}
	if !cfg.Watch.ClearScreen {
		t.Error("Watch.ClearScreen = false, want true")
	}
}

func TestLoadEnvInvalidValue(t *testing.T) {
	t.Setenv("JVDX_BUILD_CSS", "modules")

	_, err := load(t, LoadOptions{ConfigDirPath: types.FilesystemPath(t.TempDir())})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}

	var cfgErr *InvalidConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error is %T, want *InvalidConfigError in chain", err)
	}
	if !strings.Contains(cfgErr.Error(), `"modules"`) {
		t.Errorf("error = %q, want the offending value", cfgErr.Error())
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Build.Format = "es,cjs"
	want.Build.Compress = boolPtr(false)
	want.Build.PkgMain = false
	want.Watch.Debounce = "1s"
	want.UI.ColorScheme = ColorSchemeLight

	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "config.cue"), GenerateCUE(want))

	got, err := load(t, LoadOptions{ConfigDirPath: types.FilesystemPath(cfgDir)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateTOMLRoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Build.Target = TargetNode
	want.Build.Compress = boolPtr(true)
	want.Build.CSS = CSSInline

	content, err := GenerateTOML(want)
	if err != nil {
		t.Fatalf("GenerateTOML() error = %v", err)
	}

	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, ProjectFileName), content)

	got, err := load(t, LoadOptions{
		ConfigDirPath: types.FilesystemPath(t.TempDir()),
		ProjectDir:    types.FilesystemPath(projectDir),
	})
	if err != nil {
		t.Fatalf("Load() error = %v\n%s", err, content)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "jvdx")
	t.Cleanup(SetConfigDir(dir))

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if want := filepath.Join(dir, "config.cue"); path != want {
		t.Errorf("CreateDefaultConfig() = %q, want %q", path, want)
	}

	// An existing file is left alone.
	writeFile(t, path, `ui: verbose: true`)
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() second call error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `ui: verbose: true` {
		t.Errorf("existing config was overwritten:\n%s", data)
	}

	cfg := DefaultConfig()
	cfg.Build.Target = TargetNode
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := load(t, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Build.Target != TargetNode {
		t.Errorf("Build.Target after Save = %q, want %q", got.Build.Target, TargetNode)
	}
}
