// SPDX-License-Identifier: MPL-2.0

package output

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/jvdx/jvdx/pkg/jsname"
)

// DefaultDir is the output directory used when neither an output flag nor a
// manifest "main" field is present.
const DefaultDir = "dist"

var (
	// buildExtensions matches the format marker and script extension of a bundle file name.
	buildExtensions = regexp.MustCompile(`(\.(umd|cjs|es|m))?\.([cm]?[tj]sx?)$`)
	hasExtension    = regexp.MustCompile(`\.[a-z]+$`)
)

// Base returns the absolute path of the main bundle: output, else the
// manifest "main" field, else DefaultDir. A directory, or a path without an
// extension, gets "<unscoped package name>.js" appended.
func Base(cwd, output, pkgMain, pkgName string) string {
	target := output
	if target == "" {
		target = pkgMain
	}
	if target == "" {
		target = DefaultDir
	}
	main := absolute(cwd, target)

	if !hasExtension.MatchString(main) || isDir(main) {
		main = filepath.Join(main, jsname.RemoveScope(pkgName)+".js")
	}
	return main
}

// StripExtension removes the format marker and script extension from a bundle path.
//
//	StripExtension("dist/lib.umd.js") == "dist/lib"
func StripExtension(path string) string {
	return buildExtensions.ReplaceAllString(path, "")
}

// CSSPath returns the stylesheet path extracted next to the main bundle.
func CSSPath(base string) string {
	if buildExtensions.MatchString(base) {
		return buildExtensions.ReplaceAllString(base, ".css")
	}
	return base + ".css"
}

// DeclarationDir returns the directory type declarations are emitted to: the
// directory of the manifest "types"/"typings" file when set, else the
// directory of the main bundle.
func DeclarationDir(cwd, base, types string) string {
	if types != "" {
		return filepath.Dir(absolute(cwd, types))
	}
	return filepath.Dir(base)
}

func absolute(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
