// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// troubleshooting pages for the failures jvdx users run into most: missing
// entry modules, unreadable manifests, bad configuration, compile failures
// and missing tools.
package issue
