// SPDX-License-Identifier: MPL-2.0

package main

import cmd "oagen-cli/cmd/oagen"

func main() {
	cmd.Execute()
}
