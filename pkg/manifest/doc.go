// SPDX-License-Identifier: MPL-2.0

// Package manifest loads and normalizes a package.json manifest.
//
// The raw document is decoded into a loosely typed form first and then
// normalized into Manifest: string-or-list fields are flattened, dependency
// names keep their declaration order, the "exports" field becomes a tagged
// ExportsNode tree, and "publishConfig" is overlaid on the top level.
// A Manifest is immutable once returned by Read or Parse.
package manifest
