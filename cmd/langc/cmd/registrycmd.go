package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/langc/internal/registrydb"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect a saved registry snapshot",
}

var registryDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every type, function, and global in a --registry-db snapshot",
	Long: `registry dump opens the SQLite file named by --registry-db, loads its
stored registry.Delta, and prints one line per type, function, and
global property — the same information internal/registrydb folds back
into a fresh Registry on host startup, rendered for a human instead.`,
	Args: cobra.NoArgs,
	RunE: runRegistryDump,
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryDumpCmd)
}

func runRegistryDump(_ *cobra.Command, _ []string) error {
	if registryDBPath == "" {
		return fmt.Errorf("registry dump requires --registry-db <path>")
	}

	db, err := registrydb.Open(registryDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	delta, err := db.Load()
	if err != nil {
		return err
	}
	if delta == nil {
		fmt.Println("(no snapshot saved)")
		return nil
	}

	fmt.Printf("== types (%d) ==\n", len(delta.Types))
	for _, t := range delta.Types {
		fmt.Printf("%s  tag=%v  %s\n", t.Hash, t.Tag, t.QualifiedName)
	}

	fmt.Printf("== functions (%d) ==\n", len(delta.Functions))
	for _, f := range delta.Functions {
		fmt.Printf("%s  tag=%v  %s\n", f.Def.Hash, f.Tag, f.Def.QualifiedName)
	}

	fmt.Printf("== globals (%d) ==\n", len(delta.Globals))
	for _, g := range delta.Globals {
		fmt.Printf("%s  tag=%v  %s\n", g.Hash, g.Tag, g.QualifiedName)
	}

	fmt.Printf("== behaviors (%d) ==\n", len(delta.Behaviors))
	for hash := range delta.Behaviors {
		fmt.Printf("%s\n", hash)
	}

	return nil
}
