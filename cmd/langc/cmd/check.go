package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/langc/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run both compiler passes and report diagnostics only",
	Long: `check runs the same Registration Pass and Body Compiler as build, but
never writes a bytecode artifact — useful for editor integrations and
CI lint steps that only want the error list.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, args []string) error {
	path := args[0]

	prog, perrs, err := parseFile(path)
	if err != nil {
		return err
	}
	if len(perrs) > 0 {
		printDiagnostics(perrs)
		return fmt.Errorf("parsing failed with %d error(s)", len(perrs))
	}

	reg, err := prepareRegistry()
	if err != nil {
		return err
	}

	unit := driver.Unit{ID: unitID(path), File: path, Program: prog, Imports: importIDs(prog)}
	outputs, buildErr := driver.Build([]driver.Unit{unit}, reg)

	var totalErrs int
	for _, out := range outputs {
		printDiagnostics(out.Errors)
		totalErrs += len(out.Errors)
	}
	if buildErr != nil {
		return buildErr
	}

	if totalErrs == 0 {
		fmt.Printf("%s: OK\n", path)
	}
	return nil
}
