// SPDX-License-Identifier: MPL-2.0

// Command jvdx builds, lints, formats and tests small JavaScript libraries.
package main

import cmd "github.com/jvdx/jvdx/cmd/jvdx"

func main() {
	cmd.Execute()
}
