package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/driver"
	"github.com/funvibe/langc/internal/registry/exportpb"
)

var (
	buildOutput      string
	buildDisassemble bool
	buildStats       bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a unit to a bytecode artifact",
	Long: `Runs the Registration Pass and Body Compiler over one source file and
writes the result as a JSON artifact (internal/registry/exportpb) that a
host can later exportpb.Read back into the runtime VM without
re-parsing.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output artifact path (default: <input>.langbc)")
	buildCmd.Flags().BoolVar(&buildDisassemble, "disassemble", false, "print disassembled bytecode for every compiled chunk")
	buildCmd.Flags().BoolVar(&buildStats, "stats", false, "print humanized build statistics")
}

func runBuild(_ *cobra.Command, args []string) error {
	path := args[0]
	start := time.Now()

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
	var totalInstr, totalConsts int
	for _, out := range outputs {
		printDiagnostics(out.Errors)
		totalErrs += len(out.Errors)
		for hash, chunk := range out.Bytecode {
			totalInstr += len(chunk.Code)
			totalConsts += len(chunk.Constants)
			if buildDisassemble {
				fmt.Fprint(os.Stderr, bytecode.Disassemble(chunk, hash.String()))
			}
		}
	}
	if buildErr != nil {
		return buildErr
	}

	outPath := buildOutput
	if outPath == "" {
		ext := filepath.Ext(path)
		outPath = strings.TrimSuffix(path, ext) + ".langbc"
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	if err := exportpb.Write(f, outputs[0]); err != nil {
		return err
	}

	if buildStats {
		fmt.Fprintf(os.Stderr, "instructions: %s\n", humanize.Comma(int64(totalInstr)))
		fmt.Fprintf(os.Stderr, "constants:    %s\n", humanize.Comma(int64(totalConsts)))
		fmt.Fprintf(os.Stderr, "elapsed:      %s\n", time.Since(start))
	} else {
		fmt.Printf("Compiled %s -> %s\n", path, outPath)
	}
	return nil
}
