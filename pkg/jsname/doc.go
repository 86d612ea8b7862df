// SPDX-License-Identifier: MPL-2.0

// Package jsname provides naming helpers shared by the manifest reader, the
// external classifier and the output path resolver: package scope stripping,
// camelCase global derivation, bare identifier checks and regular expression
// escaping of module identifiers.
package jsname
