// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// configFiles are the compiler configuration files looked up in the package
// directory, in precedence order. Only the JSON ones can be read; the others
// are detected so that the defaults are not injected over them.
var configFiles = []string{
	".babelrc",
	".babelrc.json",
	"babel.config.json",
	".babelrc.js",
	".babelrc.cjs",
	"babel.config.js",
	"babel.config.cjs",
	"babel.config.mjs",
}

// FileConfig is a compiler configuration file found in the package.
type FileConfig struct {
	Path    string
	Presets []Item
	Plugins []Item
	// Opaque is set for script configuration files whose contents cannot be read.
	Opaque bool
}

// rawFileConfig mirrors the JSON configuration format.
type rawFileConfig struct {
	Presets []json.RawMessage `json:"presets"`
	Plugins []json.RawMessage `json:"plugins"`
}

// FindFileConfig looks for a compiler configuration file in dir. It returns
// nil when none exists.
func FindFileConfig(dir string) (*FileConfig, error) {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if filepath.Ext(name) != ".json" && name != ".babelrc" {
			return &FileConfig{Path: path, Opaque: true}, nil
		}
		return parseFileConfig(path, data)
	}
	return nil, nil
}

func parseFileConfig(path string, data []byte) (*FileConfig, error) {
	var raw rawFileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	cfg := &FileConfig{Path: path}
	for _, entry := range raw.Presets {
		item, err := parseEntry(entry, KindPreset, dir)
		if err != nil {
			return nil, fmt.Errorf("parse %s presets: %w", path, err)
		}
		cfg.Presets = append(cfg.Presets, item)
	}
	for _, entry := range raw.Plugins {
		item, err := parseEntry(entry, KindPlugin, dir)
		if err != nil {
			return nil, fmt.Errorf("parse %s plugins: %w", path, err)
		}
		cfg.Plugins = append(cfg.Plugins, item)
	}
	return cfg, nil
}

// parseEntry reads "name" or ["name", {options}].
func parseEntry(data json.RawMessage, kind Kind, dir string) (Item, error) {
	var name string
	if json.Unmarshal(data, &name) == nil {
		return newItem(kind, name, nil, dir), nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) == 0 {
		return Item{}, fmt.Errorf("unsupported entry %s", data)
	}
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return Item{}, fmt.Errorf("unsupported entry %s", data)
	}
	var opts map[string]any
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &opts); err != nil {
			return Item{}, fmt.Errorf("options of %q: %w", name, err)
		}
	}
	return newItem(kind, name, opts, dir), nil
}

func newItem(kind Kind, name string, opts map[string]any, dir string) Item {
	item := Item{Kind: kind, Options: Options(opts)}
	switch {
	case filepath.IsAbs(name):
		item.File = filepath.Clean(name)
		return item
	case strings.HasPrefix(name, "."):
		item.File = filepath.Join(dir, name)
		return item
	}
	item.Name = normalizeName(kind, name)
	return item
}

// normalizeName expands short names the way the compiler does:
// "transform-x" -> "babel-plugin-transform-x".
func normalizeName(kind Kind, name string) string {
	prefix := "babel-" + string(kind) + "-"
	if strings.HasPrefix(name, "@") || strings.HasPrefix(name, prefix) || strings.HasPrefix(name, "module:") {
		return strings.TrimPrefix(name, "module:")
	}
	return prefix + name
}

// Announcer reports each distinct configuration file once.
type Announcer struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewAnnouncer returns an empty Announcer.
func NewAnnouncer() *Announcer {
	return &Announcer{seen: make(map[string]struct{})}
}

// First reports whether path has not been announced yet and marks it announced.
func (a *Announcer) First(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	if _, ok := a.seen[path]; ok {
		return false
	}
	a.seen[path] = struct{}{}
	return true
}
