// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"

	"github.com/jvdx/jvdx/pkg/jsname"
)

// Name is the outcome of DeriveName.
type Name struct {
	// Global is the module name used for UMD globals and AMD ids.
	Global string
	// Package is the package name, defaulted to the directory name.
	Package string
	// MissingField is set when package.json exists but lacks "name".
	MissingField bool
}

// DeriveName picks the bundle's module name: an explicit name wins, then
// "amdName", then the normalized package name.
func DeriveName(explicit string, m *Manifest, cwd string) Name {
	n := Name{Package: m.Name}
	if n.Package == "" {
		n.Package = filepath.Base(cwd)
		n.MissingField = m.Exists
	}

	switch {
	case explicit != "":
		n.Global = explicit
	case m.AMDName != "":
		n.Global = m.AMDName
	default:
		n.Global = jsname.NormalizePackageName(n.Package)
	}
	return n
}
