// SPDX-License-Identifier: MPL-2.0

// Package namecache persists the identifier mangling map shared by
// consecutive builds, together with the minify options that configure it.
package namecache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jvdx/jvdx/pkg/jsonobj"
)

const (
	// DefaultFile is the cache file used when the manifest names none.
	DefaultFile = "mangle.json"
	// minifyKey holds minify options embedded in the cache file.
	minifyKey = "minify"
)

// Store is a loaded name cache.
type Store struct {
	// Path is the cache file location.
	Path string
	// Minify is the normalized minify configuration: the manifest baseline
	// extended by the options embedded in the cache file.
	Minify Minify

	cache   *jsonobj.Object
	trailer string
}

// Load resolves the cache path from the manifest "minify"/"mangle" value, reads
// the cache and normalizes the minify options. A string manifest value names
// the cache file; an object holds minify options and the cache lives in
// DefaultFile. A missing or malformed cache file yields an empty cache
// without error; only invalid minify options fail.
func Load(cwd string, manifestMinify json.RawMessage) (*Store, error) {
	s := &Store{Path: filepath.Join(cwd, DefaultFile)}
	options := map[string]any{}

	var name string
	if len(manifestMinify) > 0 {
		if json.Unmarshal(manifestMinify, &name) == nil {
			if filepath.IsAbs(name) {
				s.Path = filepath.Clean(name)
			} else {
				s.Path = filepath.Join(cwd, name)
			}
		} else {
			var obj map[string]any
			if json.Unmarshal(manifestMinify, &obj) == nil && obj != nil {
				options = obj
			}
		}
	}

	s.read()
	if s.cache != nil {
		var embedded map[string]any
		if s.cache.Decode(minifyKey, &embedded) && embedded != nil {
			options = MergeOptions(options, embedded)
		}
	}

	minify, err := NormalizeMinify(options)
	if err != nil {
		return nil, err
	}
	s.Minify = minify
	return s, nil
}

func (s *Store) read() {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return
	}
	cache, err := jsonobj.Parse(data)
	if err != nil {
		return
	}
	s.cache = cache
	switch {
	case bytes.HasSuffix(data, []byte("\r\n")):
		s.trailer = "\r\n"
	case bytes.HasSuffix(data, []byte("\n")):
		s.trailer = "\n"
	}
}

// Loaded reports whether a cache file was read. Only a loaded cache is
// written back.
func (s *Store) Loaded() bool {
	return s.cache != nil
}

// Mangled returns the identifier mapping without the embedded minify options.
func (s *Store) Mangled() map[string]any {
	out := map[string]any{}
	if s.cache == nil {
		return out
	}
	for _, key := range s.cache.Keys() {
		if key == minifyKey {
			continue
		}
		var v any
		if s.cache.Decode(key, &v) {
			out[key] = v
		}
	}
	return out
}

// Update records the mapping produced by a compilation. Existing keys keep
// their position; new keys are appended in sorted order.
func (s *Store) Update(mangled map[string]any) error {
	if s.cache == nil {
		return nil
	}
	keys := make([]string, 0, len(mangled))
	for k := range mangled {
		if k != minifyKey {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		next, err := jsonobj.Marshal(mangled[key])
		if err != nil {
			return err
		}
		if prev, ok := s.cache.Raw(key); ok && jsonEqual(prev, next) {
			continue
		}
		s.cache.Set(key, next)
	}
	return nil
}

// Encode renders the cache as two-space indented JSON, keeping key order
// and the trailing newline of the file it was read from.
func (s *Store) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.cache); err != nil {
		return nil, err
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return []byte(out + s.trailer), nil
}

// Save writes the cache back to Path. It does nothing when no cache file
// was loaded.
func (s *Store) Save() error {
	if s.cache == nil {
		return nil
	}
	data, err := s.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}

func jsonEqual(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
