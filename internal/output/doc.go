// SPDX-License-Identifier: MPL-2.0

// Package output computes where each build target is written.
//
// Base resolves the configured output file once per build. Resolve then maps
// an (entry, format) pair onto a file name, following the manifest field that
// conventionally points at that format ("module", "exports", "cjs:main",
// "umd:main", ...). Manifest values are used as templates: only the part of
// their file name after the first dot is kept and appended to the configured
// output name.
package output
