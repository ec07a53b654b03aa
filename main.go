// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/anvil-pipeline/anvil/cmd/anvil"

func main() {
	cmd.Execute()
}
