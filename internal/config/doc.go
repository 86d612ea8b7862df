// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is layered: built-in defaults, then the user file
// ~/.config/jvdx/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/jvdx/config.cue on macOS, %APPDATA%\jvdx\config.cue
// on Windows, or $JVDX_CONFIG_DIR when set), then a project-local jvdx.toml next to package.json, then
// JVDX_* environment variables (JVDX_BUILD_TARGET, JVDX_MODERN, ...).
// Command-line flags override all of them.
//
// Both file formats are validated against one CUE schema (config_schema.cue) to
// ensure type safety and provide clear error messages for invalid configurations.
package config
