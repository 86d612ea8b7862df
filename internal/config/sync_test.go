// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/go-cmp/cmp"

	"github.com/jvdx/jvdx/pkg/cueutil"
)

// schemaFieldNames returns the sorted field labels of the CUE definition
// def, without the optional marker.
func schemaFieldNames(t *testing.T, def string) []string {
	t.Helper()

	root := cuecontext.New().CompileString(configSchema)
	if err := root.Err(); err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	v := root.LookupPath(cue.ParsePath(def))
	if err := v.Err(); err != nil {
		t.Fatalf("lookup %s: %v", def, err)
	}

	it, err := v.Fields(cue.Optional(true))
	if err != nil {
		t.Fatalf("fields of %s: %v", def, err)
	}
	var names []string
	for it.Next() {
		names = append(names, strings.TrimSuffix(it.Selector().String(), "?"))
	}
	slices.Sort(names)
	return names
}

// tagNames returns the sorted names typ declares under the struct tag key.
func tagNames(typ reflect.Type, key string) []string {
	var names []string
	for i := range typ.NumField() {
		f := typ.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if f.IsExported() && name != "" && name != "-" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// TestSchemaMatchesStructs keeps config_schema.cue, the JSON tags CUE
// decodes with, the mapstructure tags viper decodes with and the TOML tags
// GenerateTOML writes in agreement.
func TestSchemaMatchesStructs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#BuildConfig", reflect.TypeFor[BuildConfig]()},
		{"#WatchConfig", reflect.TypeFor[WatchConfig]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			want := schemaFieldNames(t, tt.def)
			for _, key := range []string{"json", "mapstructure", "toml"} {
				if diff := cmp.Diff(want, tagNames(tt.typ, key)); diff != "" {
					t.Errorf("%s %s tags differ from the schema (-schema +struct):\n%s", tt.typ.Name(), key, diff)
				}
			}
		})
	}
}

func TestSchemaConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty", ``, false},
		{"full format list", `build: format: "modern,es,cjs,umd"`, false},
		{"esm alias", `build: format: "esm"`, false},
		{"empty format", `build: format: ""`, false},
		{"unknown format", `build: format: "iife"`, true},
		{"trailing comma", `build: format: "es,"`, true},
		{"node target", `build: target: "node"`, false},
		{"unknown target", `build: target: "deno"`, true},
		{"inline sourcemap", `build: sourcemap: "inline"`, false},
		{"bool sourcemap", `build: sourcemap: true`, true},
		{"inline css", `build: css: "inline"`, false},
		{"unknown css", `build: css: "modules"`, true},
		{"compress", `build: compress: false`, false},
		{"debounce ms", `watch: debounce: "250ms"`, false},
		{"debounce compound", `watch: debounce: "1m30s"`, false},
		{"debounce fraction", `watch: debounce: "1.5s"`, false},
		{"debounce no unit", `watch: debounce: "100"`, true},
		{"color scheme", `ui: color_scheme: "dark"`, false},
		{"bad color scheme", `ui: color_scheme: "blue"`, true},
		{"unknown top-level key", `bundler: "rollup"`, true},
		{"unknown build key", `build: minify: true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, []byte(tt.doc), "#Config")
			if (err != nil) != tt.wantErr {
				t.Errorf("validate %q: error = %v, wantErr %v", tt.doc, err, tt.wantErr)
			}
		})
	}
}
