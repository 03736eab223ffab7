package cmd

import (
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"os"
)

var (
	Version = "0.1.0-dev"
	GitCommit = "unknown"
)

// useColor is decided once at startup rather than per-print, matching
// CWBudde-go-dws's root.go pattern of a single global readiness flag
// instead of threading a "color enabled" bool through every command.
var useColor = isatty.IsTerminal(os.Stderr.Fd())

var rootCmd = &cobra.Command{
	Use:     "langc",
	Short:   "Compiler and registry tool for the embeddable scripting language",
	Version: Version,
	Long: `langc drives the two-pass compiler (internal/compiler) and the shared
Symbol Registry (internal/registry) from the command line:

  langc build <file>     compile a unit to a bytecode artifact
  langc check <file>     run both passes and report diagnostics only
  langc registry dump    print a saved registry snapshot

This is intentionally thin: langc is a batch front end for testing and
build pipelines, not a REPL or an embedding API (that is
internal/runtime's job, linked into a host binary directly).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&hostManifestPath, "host-manifest", "", "host.yaml describing FFI types/functions to register before compiling")
	rootCmd.PersistentFlags().StringVar(&registryDBPath, "registry-db", "", "SQLite snapshot to restore the shared registry from before compiling")
}

// hostManifestPath and registryDBPath are shared across build/check since
// both need the same pre-populated registry before a unit compiles.
var (
	hostManifestPath string
	registryDBPath   string
)
