// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/jvdx/jvdx/pkg/jsonobj"
)

// FileName is the manifest file name looked up in the working directory.
const FileName = "package.json"

// ModuleTypeESM is the value of the "type" field for ES module packages.
const ModuleTypeESM = "module"

// Manifest is the normalized view of a package.json document.
type Manifest struct {
	Name            string
	AMDName         string
	Type            string
	Main            string
	Module          string
	JSNextMain      string
	CJSMain         string
	UMDMain         string
	Unpkg           string
	ESModule        string
	SyntaxESModules string
	Types           string
	Source          []string
	Exports         ExportsNode
	Engines         map[string]string

	// Dependencies and PeerDependencies hold package names in declaration order.
	Dependencies     []string
	PeerDependencies []string

	// Minify is the raw "minify" (or legacy "mangle") field: a string naming a
	// name cache file or an object with minifier options.
	Minify json.RawMessage

	// Exists reports whether the manifest was read from disk.
	Exists bool
}

// IsModuleType reports whether the package declares "type": "module".
func (m *Manifest) IsModuleType() bool {
	return m.Type == ModuleTypeESM
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Source = slices.Clone(m.Source)
	c.Dependencies = slices.Clone(m.Dependencies)
	c.PeerDependencies = slices.Clone(m.PeerDependencies)
	c.Minify = slices.Clone(m.Minify)
	if m.Engines != nil {
		c.Engines = make(map[string]string, len(m.Engines))
		for k, v := range m.Engines {
			c.Engines[k] = v
		}
	}
	return &c
}

// raw mirrors the package.json fields the resolver consumes. Fields that may
// hold more than one JSON type are kept as json.RawMessage.
type raw struct {
	Name             string          `json:"name"`
	AMDName          string          `json:"amdName"`
	Type             string          `json:"type"`
	Main             string          `json:"main"`
	Module           string          `json:"module"`
	JSNextMain       string          `json:"jsnext:main"`
	CJSMain          string          `json:"cjs:main"`
	UMDMain          string          `json:"umd:main"`
	Unpkg            string          `json:"unpkg"`
	ESModule         string          `json:"esmodule"`
	Types            string          `json:"types"`
	Typings          string          `json:"typings"`
	Source           json.RawMessage `json:"source"`
	Exports          json.RawMessage `json:"exports"`
	Syntax           json.RawMessage `json:"syntax"`
	Engines          json.RawMessage `json:"engines"`
	Dependencies     json.RawMessage `json:"dependencies"`
	PeerDependencies json.RawMessage `json:"peerDependencies"`
	Minify           json.RawMessage `json:"minify"`
	Mangle           json.RawMessage `json:"mangle"`
	PublishConfig    json.RawMessage `json:"publishConfig"`
}

// Parse decodes a package.json document and normalizes it.
func Parse(data []byte) (*Manifest, error) {
	doc, err := jsonobj.Parse(data)
	if err != nil {
		return nil, err
	}

	// publishConfig fields replace their top-level counterparts.
	if overlay, ok := doc.Object("publishConfig"); ok {
		for _, key := range overlay.Keys() {
			v, _ := overlay.Raw(key)
			doc.Set(key, v)
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, err
		}
	}

	// A field holding an unexpected JSON type is skipped; the rest of the
	// document is still usable.
	var r raw
	var typeErr *json.UnmarshalTypeError
	if err = json.Unmarshal(data, &r); err != nil && !errors.As(err, &typeErr) {
		return nil, err
	}
	return r.normalize(), nil
}

func (r *raw) normalize() *Manifest {
	m := &Manifest{
		Name:             r.Name,
		AMDName:          r.AMDName,
		Type:             r.Type,
		Main:             r.Main,
		Module:           r.Module,
		JSNextMain:       r.JSNextMain,
		CJSMain:          r.CJSMain,
		UMDMain:          r.UMDMain,
		Unpkg:            r.Unpkg,
		ESModule:         r.ESModule,
		Types:            r.Types,
		Source:           stringOrList(r.Source),
		Exports:          parseExports(r.Exports),
		Dependencies:     objectKeys(r.Dependencies),
		PeerDependencies: objectKeys(r.PeerDependencies),
	}
	if m.Types == "" {
		m.Types = r.Typings
	}

	var syntax struct {
		ESModules string `json:"esmodules"`
	}
	if len(r.Syntax) > 0 && json.Unmarshal(r.Syntax, &syntax) == nil {
		m.SyntaxESModules = syntax.ESModules
	}

	var engines map[string]string
	if len(r.Engines) > 0 && json.Unmarshal(r.Engines, &engines) == nil {
		m.Engines = engines
	}

	switch {
	case isTruthy(r.Minify):
		m.Minify = r.Minify
	case isTruthy(r.Mangle):
		m.Minify = r.Mangle
	}
	return m
}

func stringOrList(data json.RawMessage) []string {
	if len(data) == 0 {
		return nil
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if json.Unmarshal(data, &list) == nil {
		return slices.DeleteFunc(list, func(v string) bool { return v == "" })
	}
	return nil
}

func objectKeys(data json.RawMessage) []string {
	if len(data) == 0 {
		return nil
	}
	obj, err := jsonobj.Parse(data)
	if err != nil {
		return nil
	}
	return slices.DeleteFunc(obj.Keys(), func(k string) bool { return k == "" })
}

// isTruthy reports whether a raw JSON value is truthy in the JavaScript sense.
func isTruthy(data json.RawMessage) bool {
	switch string(data) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
