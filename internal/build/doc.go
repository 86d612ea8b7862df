// SPDX-License-Identifier: MPL-2.0

// Package build turns a package manifest and a set of command line options
// into an ordered list of build targets, and drives a Compiler over them.
//
// Resolution is a pure, synchronous pass: Resolve reads package.json, picks
// the entries and formats, and computes every Target (output path, external
// classification, plugin configuration, name cache) before anything is
// compiled. Run then compiles the targets strictly in order so the first
// format (always "cjs" when requested) seeds the Cache consumed by the
// following ones. Watch resolves once and keeps one watcher per entry.
package build
