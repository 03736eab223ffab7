// Package hostmanifest is sugar over the FFI declaration grammar of
// spec §6: instead of a host making one RegisterType/RegisterFunction
// call per native symbol, it describes them in bulk in a YAML file and
// hostmanifest.LoadYAML turns each entry into the same registry calls,
// parsing each function/global's textual declaration with the
// language's own grammar (internal/parser) rather than a bespoke
// schema. Grounded on internal/compiler/registration.go's
// registerFreeFunction/registerGlobalVar (same FunctionDef/
// GlobalPropertyEntry construction), adapted from ImplScript+pending
// body to ImplFFI+NativeTrampoline since a manifest entry never carries
// a script body.
package hostmanifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/langc/internal/arena"
	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/lexer"
	"github.com/funvibe/langc/internal/pipeline"
	"github.com/funvibe/langc/internal/parser"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// manifest mirrors the host.yaml shape of spec §4.12.
type manifest struct {
	Types     []typeSpec     `yaml:"types"`
	Functions []functionSpec `yaml:"functions"`
	Globals   []globalSpec   `yaml:"globals"`
}

type typeSpec struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Fields []fieldSpec `yaml:"fields"`
	Size   int         `yaml:"size"`
	Align  int         `yaml:"align"`
}

type fieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type functionSpec struct {
	Decl   string `yaml:"decl"`
	Native string `yaml:"native"`
}

type globalSpec struct {
	Decl    string `yaml:"decl"`
	Address string `yaml:"address"`
}

// LoadYAML parses path as a host.yaml manifest and registers every type,
// function, and global it describes into reg (expected to be the shared
// global registry, before the first module build — spec §5's "all FFI
// registration must precede the first module build"). Returns the first
// error encountered; a manifest is registered best-effort up to that
// point, matching RegisterType/RegisterFunction's own fail-fast style
// rather than accumulating a diagnostics.List the way a compiler pass
// does (a malformed host manifest is an embedder bug to fix immediately,
// not source text to report many errors from at once).
func LoadYAML(path string, reg *registry.Registry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("hostmanifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("hostmanifest: %s: %w", path, err)
	}

	for _, t := range m.Types {
		if err := registerType(reg, t); err != nil {
			return fmt.Errorf("hostmanifest: type %q: %w", t.Name, err)
		}
	}
	for _, f := range m.Functions {
		if err := registerFunction(reg, f); err != nil {
			return fmt.Errorf("hostmanifest: function %q: %w", f.Decl, err)
		}
	}
	for _, g := range m.Globals {
		if err := registerGlobal(reg, g); err != nil {
			return fmt.Errorf("hostmanifest: global %q: %w", g.Decl, err)
		}
	}
	return nil
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}

// typeKindFor maps a host.yaml type's `kind` field to the §4.5
// lifecycle family it belongs to. "value"/"value_pod" are by-value
// types (Pod distinguishes a trivially-copyable struct from one needing
// opConstruct/opAssign per §4.5); everything else is some flavor of
// handle-capable reference type.
func typeKindFor(spec typeSpec) (typesystem.TypeKind, error) {
	size, align := spec.Size, spec.Align
	if size == 0 {
		size = 8 * len(spec.Fields)
	}
	if align == 0 {
		align = 8
	}
	switch spec.Kind {
	case "", "value":
		return typesystem.ValueKind(size, align, false), nil
	case "value_pod":
		return typesystem.ValueKind(size, align, true), nil
	case "scriptobject":
		return typesystem.ScriptObjectKind(), nil
	case "ref":
		return typesystem.ReferenceKindOf(typesystem.StandardRefCounted), nil
	case "ref_noncounted":
		return typesystem.ReferenceKindOf(typesystem.NoCount), nil
	case "ref_nohandle":
		return typesystem.ReferenceKindOf(typesystem.NoHandle), nil
	case "ref_scoped":
		return typesystem.ReferenceKindOf(typesystem.Scoped), nil
	default:
		return typesystem.TypeKind{}, fmt.Errorf("unknown kind %q", spec.Kind)
	}
}

func registerType(reg *registry.Registry, spec typeSpec) error {
	kind, err := typeKindFor(spec)
	if err != nil {
		return err
	}

	qname := qualify("", spec.Name)
	entry := &registry.TypeEntry{
		Tag:           registry.EntryClass,
		Hash:          typehash.FromName(qname),
		Name:          spec.Name,
		QualifiedName: qname,
		Kind:          kind,
	}

	for _, f := range spec.Fields {
		te, errs := parseTypeString(f.Type)
		if len(errs) > 0 {
			return errs[0]
		}
		dt, derr := compiler.ResolveTypeExprIn(reg, "", nil, te)
		if derr != nil {
			return derr
		}
		entry.Properties = append(entry.Properties, registry.PropertyDecl{Name: f.Name, Type: dt})
	}

	if err := reg.RegisterType(entry); err != nil {
		return err
	}
	if err := reg.SetBehaviors(entry.Hash, registry.NewTypeBehaviors()); err != nil {
		return err
	}
	return nil
}

func registerFunction(reg *registry.Registry, spec functionSpec) error {
	decl := spec.Decl
	isProperty := false
	if trimmed := strings.TrimSuffix(strings.TrimSpace(decl), "property"); trimmed != decl {
		decl = strings.TrimSpace(trimmed)
		isProperty = true
	}

	fn, errs := parseFunctionDecl(decl)
	if len(errs) > 0 {
		return errs[0]
	}
	fn.IsProperty = isProperty

	params, paramHashes, err := resolveParams(reg, fn.Params)
	if err != nil {
		return err
	}
	ret := typesystem.Void()
	if fn.Return != nil {
		ret, err = compiler.ResolveTypeExprIn(reg, "", nil, fn.Return)
		if err != nil {
			return err
		}
	}

	qname := qualify("", fn.Name)
	hash := typehash.FromFunction(qname, paramHashes)
	trampoline := spec.Native
	if trampoline == "" {
		trampoline = qname
	}

	def := registry.FunctionDef{
		Hash:          hash,
		Name:          fn.Name,
		QualifiedName: qname,
		Params:        params,
		Return:        ret,
		Traits:        registry.FunctionTraits{IsConst: fn.IsConst, IsExplicit: fn.IsExplicit},
	}
	entry := &registry.FunctionEntry{
		Def: def,
		Tag: registry.ImplFFI,
		FFI: &registry.FFIImpl{NativeTrampoline: trampoline},
	}
	if regErr := reg.RegisterFunction(entry); regErr != nil {
		return regErr
	}
	return nil
}

func registerGlobal(reg *registry.Registry, spec globalSpec) error {
	v, errs := parseVarDecl(spec.Decl)
	if len(errs) > 0 {
		return errs[0]
	}
	dt, err := compiler.ResolveTypeExprIn(reg, "", nil, v.Type)
	if err != nil {
		return err
	}

	qname := qualify("", v.Name)
	address := spec.Address
	if address == "" {
		address = qname
	}
	entry := &registry.GlobalPropertyEntry{
		Hash:          typehash.FromName(qname),
		QualifiedName: qname,
		Type:          dt,
		IsConst:       v.IsConst,
		Tag:           registry.GlobalFFI,
		Address:       address,
	}
	if regErr := reg.RegisterGlobal(entry); regErr != nil {
		return regErr
	}
	return nil
}

func resolveParams(reg *registry.Registry, params []*ast.Param) ([]registry.FunctionParam, []typehash.Hash, *diagnostics.Error) {
	out := make([]registry.FunctionParam, 0, len(params))
	hashes := make([]typehash.Hash, 0, len(params))
	for _, p := range params {
		dt, err := compiler.ResolveTypeExprIn(reg, "", nil, p.Type)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, registry.FunctionParam{
			Name:          p.Name,
			Type:          dt,
			HasDefault:    p.HasDefault,
			HandleIsConst: dt.IsHandleToConst,
		})
		hashes = append(hashes, dt.TypeHash)
	}
	return out, hashes, nil
}

// parseFunctionDecl parses one FFI function declaration string (no
// trailing ';', no body — §6's restricted grammar) using the ordinary
// language parser: a decl is a complete, valid one-statement program.
func parseFunctionDecl(decl string) (*ast.FunctionDecl, []*diagnostics.Error) {
	prog, errs := parseProgram(decl)
	if len(errs) > 0 {
		return nil, errs
	}
	if len(prog.Decls) != 1 {
		return nil, []*diagnostics.Error{diagnostics.Internal(token.Span{}, "FFI declaration must be exactly one statement: "+decl)}
	}
	fn, ok := prog.Decls[0].(*ast.FunctionDecl)
	if !ok {
		return nil, []*diagnostics.Error{diagnostics.Internal(prog.Decls[0].GetToken().Span, "not a function declaration: "+decl)}
	}
	return fn, nil
}

// parseVarDecl parses one FFI global declaration string ("const float
// PI") the same way.
func parseVarDecl(decl string) (*ast.VarDecl, []*diagnostics.Error) {
	prog, errs := parseProgram(decl + ";")
	if len(errs) > 0 {
		return nil, errs
	}
	if len(prog.Decls) != 1 {
		return nil, []*diagnostics.Error{diagnostics.Internal(token.Span{}, "FFI global declaration must be exactly one statement: "+decl)}
	}
	v, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		return nil, []*diagnostics.Error{diagnostics.Internal(prog.Decls[0].GetToken().Span, "not a variable declaration: "+decl)}
	}
	return v, nil
}

// parseTypeString parses a bare type reference ("float", "Vector3@")
// by wrapping it in a throwaway variable declaration and pulling the
// Type back out — there is no standalone "parse just a type" entry
// point in internal/parser, and adding one for this sole caller would
// duplicate parseTypeExpr's dispatch rather than reuse it.
func parseTypeString(typ string) (*ast.TypeExpr, []*diagnostics.Error) {
	v, errs := parseVarDecl(typ + " _hostfield")
	if len(errs) > 0 {
		return nil, errs
	}
	return v.Type, nil
}

func parseProgram(src string) (*ast.Program, []*diagnostics.Error) {
	a := arena.New()
	lx := lexer.New(src, a)
	stream := pipeline.NewTokenStream(lx)
	return parser.ParseProgram(stream)
}
