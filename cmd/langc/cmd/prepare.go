package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/hostmanifest"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/registrydb"
)

// parseFile lexes and parses one source file, mirroring
// CWBudde-go-dws/cmd/dwscript/cmd/compile.go's read-file -> lex -> parse
// sequence, generalized to this package's arena-backed Lexer and
// TokenStream-based Parser.
func parseFile(path string) (*ast.Program, []*diagnostics.Error, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	a := arena.New()
	l := lexer.New(string(src), a)
	stream := pipeline.NewTokenStream(l)

	prog, perrs := parser.ParseProgram(stream)

	var errs []*diagnostics.Error
	errs = append(errs, l.Errors()...)
	errs = append(errs, perrs...)
	return prog, errs, nil
}

// unitID derives a stable unit identifier from a source path the same
// way driver.Unit.ID's doc comment describes: the import path with its
// source extension stripped. For a standalone langc invocation that is
// just the file's base name.
func unitID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// importIDs converts a program's raw ImportDecl list to the plain
// string IDs driver.Unit.Imports expects.
func importIDs(prog *ast.Program) []string {
	ids := make([]string, 0, len(prog.Imports))
	for _, imp := range prog.Imports {
		ids = append(ids, imp.Path)
	}
	return ids
}

// prepareRegistry installs the prelude, restores any --registry-db
// snapshot, then loads --host-manifest on top — in that order, so a
// manifest passed on the command line can override or extend a
// restored snapshot for one-off testing.
func prepareRegistry() (*registry.Registry, error) {
	reg := registry.NewGlobal()
	if diagErr := registry.InstallPrelude(reg); diagErr != nil {
		return nil, diagErr
	}

	if registryDBPath != "" {
		db, err := registrydb.Open(registryDBPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.Restore(reg); err != nil {
			return nil, err
		}
	}

	if hostManifestPath != "" {
		if err := hostmanifest.LoadYAML(hostManifestPath, reg); err != nil {
			return nil, fmt.Errorf("host manifest: %w", err)
		}
	}

	return reg, nil
}

func printDiagnostics(errs []*diagnostics.Error) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, colorError(e.Error()))
	}
}

// colorError wraps msg in an ANSI red sequence when stderr is a
// terminal (per root.go's useColor), otherwise returns it unchanged —
// the same conditional the teacher's error formatter applies, reduced
// to one string instead of a structured CompilerError render.
func colorError(msg string) string {
	if !useColor {
		return msg
	}
	return "\x1b[31m" + msg + "\x1b[0m"
}
