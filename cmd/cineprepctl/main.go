// Command cineprepctl runs the operational tasks of the CinePrep API:
// schema migrations, plan seeding and token cost estimates.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand(newCommandContext())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
