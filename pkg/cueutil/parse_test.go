// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Build: {
	format:     =~"^(es|cjs|umd|modern)(,(es|cjs|umd|modern))*$"
	target:     "web" | "node"
	compress:   bool
	sourcemap?: "true" | "false" | "inline"
}

#Partial: {
	format?: string
	target?: "web" | "node"
}
`

type testBuild struct {
	Format    string `json:"format"`
	Target    string `json:"target"`
	Compress  bool   `json:"compress"`
	Sourcemap string `json:"sourcemap,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		data := []byte(`
format:    "es,cjs"
target:    "node"
compress:  false
sourcemap: "inline"
`)
		res, err := ParseAndDecode[testBuild]([]byte(testSchema), data, "#Build")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		want := testBuild{Format: "es,cjs", Target: "node", Sourcemap: "inline"}
		if *res.Value != want {
			t.Errorf("ParseAndDecode() = %+v, want %+v", *res.Value, want)
		}
	})

	t.Run("optional field omitted", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "umd", target: "web", compress: true`)
		res, err := ParseAndDecode[testBuild]([]byte(testSchema), data, "#Build")
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if res.Value.Sourcemap != "" {
			t.Errorf("Sourcemap = %q, want empty", res.Value.Sourcemap)
		}
	})

	t.Run("disallowed value", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "iife", target: "web", compress: true`)
		_, err := ParseAndDecode[testBuild]([]byte(testSchema), data, "#Build", WithFilename("jvdx.cue"))
		if err == nil {
			t.Fatal("ParseAndDecode() error = nil, want format error")
		}
		if !strings.Contains(err.Error(), "jvdx.cue") || !strings.Contains(err.Error(), "format") {
			t.Errorf("error = %v, want file name and field path", err)
		}
	})

	t.Run("missing field with concrete validation", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "es", compress: true`)
		if _, err := ParseAndDecode[testBuild]([]byte(testSchema), data, "#Build"); err == nil {
			t.Error("ParseAndDecode() error = nil, want missing target error")
		}
	})

	t.Run("optional fields without concrete validation", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "es"`)
		res, err := ParseAndDecode[map[string]any]([]byte(testSchema), data, "#Partial", WithConcrete(false))
		if err != nil {
			t.Fatalf("ParseAndDecode() error = %v", err)
		}
		if (*res.Value)["format"] != "es" {
			t.Errorf("format = %v, want es", (*res.Value)["format"])
		}
	})

	t.Run("file too large", func(t *testing.T) {
		t.Parallel()
		data := []byte(`format: "es", target: "web", compress: true`)
		_, err := ParseAndDecodeString[testBuild](testSchema, data, "#Build", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("ParseAndDecodeString() error = %v, want size error", err)
		}
	})

	t.Run("unknown definition", func(t *testing.T) {
		t.Parallel()
		_, err := ParseAndDecode[testBuild]([]byte(testSchema), []byte(`{}`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "#Missing") {
			t.Errorf("ParseAndDecode() error = %v, want missing definition", err)
		}
	})
}
