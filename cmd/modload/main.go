// SPDX-License-Identifier: MPL-2.0

// modload is a developer tool for the REQUIRE module loader: it
// resolves specifiers, prints dependency graphs, and manages loader
// configuration without an embedding script runtime.
package main

func main() {
	Execute()
}
