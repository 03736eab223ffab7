// Command langc is a thin batch-compile front end over internal/driver,
// internal/hostmanifest, and internal/registrydb — the cobra CLI
// SPEC_FULL.md asks for alongside the library packages themselves.
// Grounded on CWBudde-go-dws/cmd/dwscript/cmd's root/compile command
// pair: same Execute()-from-main shape, same per-command RunE pattern.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/langc/cmd/langc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
