// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// WriteFiles lays out a package directory (package.json, sources, configs)
// from a name to content map; the Must* helpers fail the test on error.
package testutil
