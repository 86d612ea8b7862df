// SPDX-License-Identifier: MPL-2.0

// Package plugin assembles the compiler plugin and preset configuration of a
// build target.
//
// Items are identified by name, or by resolved file path for anonymous
// plugins. Merge combines lists without mutating them: an item whose identity
// is already present has its options deep-merged into the earlier one, in
// the earlier one's position, so a user configuration can adjust a default
// plugin without registering it twice.
package plugin
