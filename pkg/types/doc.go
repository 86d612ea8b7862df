// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared across packages:
// process exit codes of wrapped tools and filesystem paths.
package types
