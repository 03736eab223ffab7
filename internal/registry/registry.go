package registry

import (
	"strings"

	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typehash"
)

// Registry is the two-tier Symbol Registry of spec §4.4: a global
// registry (FFI symbols + shared script types) with zero or more
// per-compilation-unit registries chained behind it via outer. Lookup
// consults the unit first, then walks outer; registration always targets
// the tier it was called on (RegisterShared* targets the root directly).
type Registry struct {
	outer  *Registry
	unitID string

	types     map[typehash.Hash]*TypeEntry
	functions map[typehash.Hash]*FunctionEntry
	globals   map[typehash.Hash]*GlobalPropertyEntry
	behaviors map[typehash.Hash]*TypeBehaviors

	byQualifiedName map[string]typehash.Hash

	nextGlobalSlot int
}

func newEmpty() *Registry {
	return &Registry{
		types:           make(map[typehash.Hash]*TypeEntry),
		functions:       make(map[typehash.Hash]*FunctionEntry),
		globals:         make(map[typehash.Hash]*GlobalPropertyEntry),
		behaviors:       make(map[typehash.Hash]*TypeBehaviors),
		byQualifiedName: make(map[string]typehash.Hash),
	}
}

// NewGlobal creates a root (global) registry. A host registers all FFI
// symbols into this registry before the first module builds (spec §5:
// the global registry is read-only during compilation).
func NewGlobal() *Registry { return newEmpty() }

// NewUnit creates a per-compilation-unit registry chained behind r.
func (r *Registry) NewUnit(unitID string) *Registry {
	u := newEmpty()
	u.outer = r
	u.unitID = unitID
	return u
}

// Root walks to the outermost (global) registry.
func (r *Registry) Root() *Registry {
	cur := r
	for cur.outer != nil {
		cur = cur.outer
	}
	return cur
}

// CanonicalNamespace joins namespace segments with "::", rejecting empty
// segments, and is idempotent: CanonicalNamespace(CanonicalNamespace(x))
// == CanonicalNamespace(x) for any x already produced by this function.
func CanonicalNamespace(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, raw := range segments {
		for _, seg := range strings.Split(raw, "::") {
			if seg != "" {
				parts = append(parts, seg)
			}
		}
	}
	return strings.Join(parts, "::")
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "::" + name
}

// --- lookups: unit then global -------------------------------------------------

func (r *Registry) GetType(h typehash.Hash) (*TypeEntry, bool) {
	if e, ok := r.types[h]; ok {
		return e, true
	}
	if r.outer != nil {
		return r.outer.GetType(h)
	}
	return nil, false
}

func (r *Registry) GetFunction(h typehash.Hash) (*FunctionEntry, bool) {
	if e, ok := r.functions[h]; ok {
		return e, true
	}
	if r.outer != nil {
		return r.outer.GetFunction(h)
	}
	return nil, false
}

func (r *Registry) GetGlobal(h typehash.Hash) (*GlobalPropertyEntry, bool) {
	if e, ok := r.globals[h]; ok {
		return e, true
	}
	if r.outer != nil {
		return r.outer.GetGlobal(h)
	}
	return nil, false
}

func (r *Registry) GetBehaviors(h typehash.Hash) (*TypeBehaviors, bool) {
	if b, ok := r.behaviors[h]; ok {
		return b, true
	}
	if r.outer != nil {
		return r.outer.GetBehaviors(h)
	}
	return nil, false
}

// LookupQualified resolves a fully-qualified name (as produced by
// CanonicalNamespace/qualify) directly, without namespace/import
// fallback — for callers (like internal/compiler's global-variable
// resolution) that already know the candidate order they want to try.
func (r *Registry) LookupQualified(qname string) (typehash.Hash, bool) {
	return r.lookupByQualifiedName(qname)
}

func (r *Registry) lookupByQualifiedName(qname string) (typehash.Hash, bool) {
	if h, ok := r.byQualifiedName[qname]; ok {
		return h, true
	}
	if r.outer != nil {
		return r.outer.lookupByQualifiedName(qname)
	}
	return 0, false
}

// ResolveType resolves a type name honoring the current namespace and
// using-directives, in import order, left-to-right: first try
// `currentNamespace::name`, then `import[i]::name` for each import in
// order, then the bare global name.
func (r *Registry) ResolveType(name, currentNamespace string, imports []string) (*TypeEntry, bool) {
	candidates := []string{qualify(currentNamespace, name)}
	for _, imp := range imports {
		candidates = append(candidates, qualify(imp, name))
	}
	candidates = append(candidates, name)

	for _, qname := range candidates {
		if h, ok := r.lookupByQualifiedName(qname); ok {
			if e, ok := r.GetType(h); ok {
				return e, true
			}
		}
	}
	return nil, false
}

// FindMethods returns the overload set of methods named `name` on the
// type identified by owner.
func (r *Registry) FindMethods(owner typehash.Hash, name string) []*FunctionEntry {
	var out []*FunctionEntry
	seen := map[typehash.Hash]bool{}
	for cur := r; cur != nil; cur = cur.outer {
		for h, fn := range cur.functions {
			if seen[h] {
				continue
			}
			if fn.Def.ObjectType != nil && *fn.Def.ObjectType == owner && fn.Def.Name == name {
				out = append(out, fn)
				seen[h] = true
			}
		}
	}
	return out
}

// FindFunctionsByName returns every free function (ObjectType == nil)
// registered anywhere in the chain under qualifiedName — overloads share
// a qualified name but differ in TypeHash (the hash folds in parameter
// hashes), so byQualifiedName alone (last-write-wins) cannot recover the
// full overload set the way FindMethods does for methods.
func (r *Registry) FindFunctionsByName(qualifiedName string) []*FunctionEntry {
	var out []*FunctionEntry
	seen := map[typehash.Hash]bool{}
	for cur := r; cur != nil; cur = cur.outer {
		for h, fn := range cur.functions {
			if seen[h] {
				continue
			}
			if fn.Def.ObjectType == nil && fn.Def.QualifiedName == qualifiedName {
				out = append(out, fn)
				seen[h] = true
			}
		}
	}
	return out
}

// FindConstructor returns the constructor overload set on `owner`
// (callers rank these through the conversion lattice / overload
// resolution; this just collects candidates).
func (r *Registry) FindConstructor(owner typehash.Hash) []*FunctionEntry {
	var out []*FunctionEntry
	b, ok := r.GetBehaviors(owner)
	if !ok {
		return nil
	}
	for _, h := range b.Constructors {
		if fn, ok := r.GetFunction(h); ok {
			out = append(out, fn)
		}
	}
	return out
}

// --- registration ---------------------------------------------------------

func regErr(code diagnostics.Code, args ...interface{}) *diagnostics.Error {
	return diagnostics.New(diagnostics.PhaseRegistration, code, token.Span{}, args...)
}

// RegisterType registers a type entry into this tier. Fails if the hash
// is already registered anywhere in the chain (global or unit), or if a
// different symbol already claims the same qualified name in the same
// namespace.
func (r *Registry) RegisterType(e *TypeEntry) *diagnostics.Error {
	if _, exists := r.GetType(e.Hash); exists {
		return regErr(diagnostics.ErrDuplicateName, e.QualifiedName, uint64(e.Hash))
	}
	if existingHash, exists := r.lookupByQualifiedName(e.QualifiedName); exists && existingHash != e.Hash {
		return regErr(diagnostics.ErrDuplicateName, e.QualifiedName, uint64(existingHash))
	}
	if e.Tag == EntryClass && e.IsTemplateInstance() {
		if _, ok := r.GetType(*e.TemplateOrigin); !ok {
			return regErr(diagnostics.ErrUnregisteredBase, e.QualifiedName)
		}
	}
	r.types[e.Hash] = e
	r.byQualifiedName[e.QualifiedName] = e.Hash
	return nil
}

// RegisterFunction registers a function entry, enforcing that
// FunctionDef.ObjectType matches the owner of any method hash that
// contains it (the hash itself was derived from the claimed owner by the
// caller; here we only check the owner type is actually registered).
func (r *Registry) RegisterFunction(e *FunctionEntry) *diagnostics.Error {
	if _, exists := r.GetFunction(e.Def.Hash); exists {
		return regErr(diagnostics.ErrDuplicateName, e.Def.QualifiedName, uint64(e.Def.Hash))
	}
	if e.Def.ObjectType != nil {
		owner, ok := r.GetType(*e.Def.ObjectType)
		if !ok {
			return regErr(diagnostics.ErrUnregisteredBase, e.Def.QualifiedName)
		}
		_ = owner
	}
	r.functions[e.Def.Hash] = e
	if e.Def.ObjectType == nil {
		r.byQualifiedName[e.Def.QualifiedName] = e.Def.Hash
	}
	return nil
}

// RegisterGlobal registers a global variable, assigning it the next
// script slot index if it is a script-backed global without one set.
func (r *Registry) RegisterGlobal(e *GlobalPropertyEntry) *diagnostics.Error {
	if _, exists := r.GetGlobal(e.Hash); exists {
		return regErr(diagnostics.ErrDuplicateName, e.QualifiedName, uint64(e.Hash))
	}
	if _, exists := r.lookupByQualifiedName(e.QualifiedName); exists {
		return regErr(diagnostics.ErrDuplicateName, e.QualifiedName, uint64(e.Hash))
	}
	if e.Tag == GlobalScript && e.SlotIndex == 0 {
		e.SlotIndex = r.nextGlobalSlot
		r.nextGlobalSlot++
	}
	r.globals[e.Hash] = e
	r.byQualifiedName[e.QualifiedName] = e.Hash
	return nil
}

// SetBehaviors attaches (or replaces) the TypeBehaviors for a registered
// type. Stored separately from the TypeEntry so behavior validation runs
// as a distinct phase (spec §4.5); fails if the type itself is not yet
// registered anywhere in the chain.
func (r *Registry) SetBehaviors(h typehash.Hash, b *TypeBehaviors) *diagnostics.Error {
	entry, ok := r.GetType(h)
	if !ok {
		return regErr(diagnostics.ErrUnregisteredBase, h.String())
	}
	_ = entry
	r.behaviors[h] = b
	return nil
}

// Delta is the set of entries a unit registry added relative to its
// outer registry, used by internal/driver to fold a compiled unit's
// registrations into the shared global registry; the driver folds it
// whether or not the unit reported errors.
type Delta struct {
	Types     []*TypeEntry
	Functions []*FunctionEntry
	Globals   []*GlobalPropertyEntry
	Behaviors map[typehash.Hash]*TypeBehaviors
}

// Delta snapshots everything registered directly on r (not on r's outer
// chain).
func (r *Registry) Delta() *Delta {
	d := &Delta{Behaviors: make(map[typehash.Hash]*TypeBehaviors, len(r.behaviors))}
	for _, e := range r.types {
		d.Types = append(d.Types, e)
	}
	for _, e := range r.functions {
		d.Functions = append(d.Functions, e)
	}
	for _, e := range r.globals {
		d.Globals = append(d.Globals, e)
	}
	for h, b := range r.behaviors {
		d.Behaviors[h] = b
	}
	return d
}

// Fold applies a Delta to r (typically the global registry), in
// dependency order: types first, then behaviors, then functions, then
// globals. Returns the first error encountered, if any.
func (r *Registry) Fold(d *Delta) *diagnostics.Error {
	for _, e := range d.Types {
		if err := r.RegisterType(e); err != nil {
			return err
		}
	}
	for h, b := range d.Behaviors {
		if err := r.SetBehaviors(h, b); err != nil {
			return err
		}
	}
	for _, e := range d.Functions {
		if err := r.RegisterFunction(e); err != nil {
			return err
		}
	}
	for _, e := range d.Globals {
		if err := r.RegisterGlobal(e); err != nil {
			return err
		}
	}
	return nil
}
