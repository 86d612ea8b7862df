// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for jvdx.
//
// This package implements the Cobra command hierarchy for the jvdx CLI:
// the build and watch commands that drive the bundler, the clean command,
// thin pass-through commands for the JavaScript tooling jvdx wraps (eslint,
// prettier, jest, tsc, lint-staged), and configuration management.
package cmd
