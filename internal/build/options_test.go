// SPDX-License-Identifier: MPL-2.0

package build

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jvdx/jvdx/internal/format"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	if got := DefaultOptions(true).Format; got != format.DefaultList {
		t.Errorf("DefaultOptions(true).Format = %q, want %q", got, format.DefaultList)
	}
	if got := DefaultOptions(false).Format; got != "es,cjs,umd" {
		t.Errorf("DefaultOptions(false).Format = %q, want es,cjs,umd", got)
	}
	opts := DefaultOptions(true)
	if !opts.PkgMain || opts.Target != TargetWeb || opts.Cwd != "." || opts.Sourcemap != SourcemapExternal {
		t.Errorf("DefaultOptions(true) = %+v, unexpected defaults", opts)
	}
}

func TestShouldCompress(t *testing.T) {
	t.Parallel()

	on, off := true, false
	tests := []struct {
		name     string
		target   string
		compress *bool
		want     bool
	}{
		{"web default", TargetWeb, nil, true},
		{"node default", TargetNode, nil, false},
		{"node forced", TargetNode, &on, true},
		{"web disabled", TargetWeb, &off, false},
	}

	for _, tt := range tests {
		opts := Options{Target: tt.target, Compress: tt.compress}
		if got := opts.ShouldCompress(); got != tt.want {
			t.Errorf("%s: ShouldCompress() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseCompressAndSourcemap(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"false": false, "0": false, "true": true, "1": true, "": true} {
		if got := ParseCompress(in); got != want {
			t.Errorf("ParseCompress(%q) = %v, want %v", in, got, want)
		}
	}
	for in, want := range map[string]Sourcemap{"false": SourcemapNone, "inline": SourcemapInline, "true": SourcemapExternal, "": SourcemapExternal} {
		if got := ParseSourcemap(in); got != want {
			t.Errorf("ParseSourcemap(%q) = %q, want %q", in, got, want)
		}
	}
	if err := Sourcemap("hidden").Validate(); !errors.Is(err, ErrInvalidSourcemap) {
		t.Errorf("Validate() error = %v, want ErrInvalidSourcemap", err)
	}
}

func TestGlobalName(t *testing.T) {
	t.Parallel()

	name, extend := GlobalName("global.myLib")
	if name != "myLib" || !extend {
		t.Errorf("GlobalName(global.myLib) = %q, %v, want myLib, true", name, extend)
	}
	name, extend = GlobalName("myLib")
	if name != "myLib" || extend {
		t.Errorf("GlobalName(myLib) = %q, %v, want myLib, false", name, extend)
	}
}

func TestMatrix(t *testing.T) {
	t.Parallel()

	got := Matrix([]string{"a", "b"}, []format.Format{format.CJS, format.ES})
	want := []Cell{
		{Entry: "a", Format: format.CJS, First: true},
		{Entry: "a", Format: format.ES},
		{Entry: "b", Format: format.CJS},
		{Entry: "b", Format: format.ES},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Matrix() mismatch (-want +got):\n%s", diff)
	}
	if got := Matrix(nil, []format.Format{format.CJS}); len(got) != 0 {
		t.Errorf("Matrix(nil) = %v, want empty", got)
	}
}

func TestStateAndCache(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.SetShebang("a.js", "#!/usr/bin/env node")
	if got := s.Shebang("a.js"); got != "#!/usr/bin/env node" {
		t.Errorf("Shebang() = %q", got)
	}
	s.SetShebang("a.js", "")
	if got := s.Shebang("a.js"); got != "" {
		t.Errorf("Shebang() after clear = %q, want empty", got)
	}

	code, bang := StripShebang("#!/bin/sh\nexport {};\n")
	if bang != "#!/bin/sh" || code != "\nexport {};\n" {
		t.Errorf("StripShebang() = %q, %q", code, bang)
	}

	var nilCache *Cache
	nilCache.Store("k", "v")
	if _, ok := nilCache.Lookup("k"); ok || nilCache.Len() != 0 {
		t.Error("nil Cache stored a value")
	}
	c := NewCache()
	c.Store("k", "v")
	if got, ok := c.Lookup("k"); !ok || got != "v" || c.Len() != 1 {
		t.Errorf("Lookup(k) = %q, %v", got, ok)
	}
}
