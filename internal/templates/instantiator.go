package templates

import (
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/token"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// selfHash is the sentinel TypeHash a template body uses to refer to "the
// type currently being instantiated". The Registration Pass substitutes
// it with the real instance hash during specialization, exactly as a
// template parameter is substituted with its argument.
var selfHash = typehash.FromName("$self")

// SelfHash exposes the SELF sentinel so the parser/registration pass can
// emit it when lowering a template body.
func SelfHash() typehash.Hash { return selfHash }

// Instantiator turns a template TypeEntry plus a concrete argument list
// into a specialized Class TypeEntry, caching by (template, args) so a
// repeated reference to the same instantiation is free.
type Instantiator struct {
	cache *Cache
}

func NewInstantiator() *Instantiator { return &Instantiator{cache: NewCache()} }

// TemplateCallback is invoked, when registered, to let an FFI template
// reject an instantiation (e.g. array<void>).
type TemplateCallback func(instance typehash.Hash, args []typehash.Hash) (ok bool, message string)

// Instantiate resolves (or builds and caches) the Class TypeEntry for
// template<args...>. tmpl must be a TypeEntry with Tag == EntryClass and
// len(tmpl.TemplateParams) == len(args). methods is the set of the
// template's own (unspecialized) methods to copy and substitute;
// behaviors is its unspecialized TypeBehaviors.
func (inst *Instantiator) Instantiate(
	tmpl *registry.TypeEntry,
	args []typesystem.DataType,
	methods []*registry.FunctionEntry,
	behaviors *registry.TypeBehaviors,
	callback TemplateCallback,
) (*registry.TypeEntry, []*registry.FunctionEntry, *registry.TypeBehaviors, *diagnostics.Error) {
	if len(args) != len(tmpl.TemplateParams) {
		return nil, nil, nil, diagnostics.New(diagnostics.PhaseRegistration, diagnostics.ErrWrongTemplateArgCount,
			token.Span{}, tmpl.QualifiedName, len(tmpl.TemplateParams), len(args))
	}

	argHashes := make([]typehash.Hash, len(args))
	for i, a := range args {
		argHashes[i] = a.TypeHash
	}

	if instHash, ok := inst.cache.Lookup(tmpl.Hash, argHashes); ok {
		// Already specialized; caller re-fetches the cached TypeEntry from
		// the registry by hash. Signal cache hit via a TypeEntry carrying
		// only the resolved hash — callers that need the full entry look
		// it up in the registry themselves.
		return &registry.TypeEntry{Tag: registry.EntryClass, Hash: instHash, TemplateOrigin: &tmpl.Hash}, nil, nil, nil
	}

	instHash := typehash.FromTemplateInstance(tmpl.Hash, argHashes)

	if callback != nil {
		if ok, msg := callback(instHash, argHashes); !ok {
			return nil, nil, nil, diagnostics.New(diagnostics.PhaseRegistration, diagnostics.ErrInvalidTemplateInstance,
				token.Span{}, tmpl.QualifiedName, msg)
		}
	}

	subst := make(map[typehash.Hash]typehash.Hash, len(args)+1)
	for i, param := range tmpl.TemplateParams {
		subst[typehash.FromName(param)] = argHashes[i]
	}
	subst[selfHash] = instHash

	instName := tmpl.Name + "<" + joinNames(args) + ">"

	instance := &registry.TypeEntry{
		Tag:            registry.EntryClass,
		Hash:           instHash,
		Name:           instName,
		QualifiedName:  registry.CanonicalNamespace(tmpl.Namespace, instName),
		Namespace:      tmpl.Namespace,
		Kind:           tmpl.Kind,
		BaseClass:      substHashPtr(tmpl.BaseClass, subst),
		Interfaces:     substHashes(tmpl.Interfaces, subst),
		Properties:     substProperties(tmpl.Properties, subst),
		TemplateOrigin: &tmpl.Hash,
		TemplateArgs:   args,
	}

	specMethods := make([]*registry.FunctionEntry, 0, len(methods))
	methodHashRemap := make(map[typehash.Hash]typehash.Hash, len(methods))
	for _, m := range methods {
		spec := specializeMethod(m, instHash, subst)
		specMethods = append(specMethods, spec)
		methodHashRemap[m.Def.Hash] = spec.Def.Hash
		instance.Methods = append(instance.Methods, spec.Def.Hash)
	}

	var specBehaviors *registry.TypeBehaviors
	if behaviors != nil {
		specBehaviors = specializeBehaviors(behaviors, methodHashRemap)
	}

	inst.cache.Store(tmpl.Hash, argHashes, instHash)
	return instance, specMethods, specBehaviors, nil
}

func joinNames(args []typesystem.DataType) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ","
		}
		out += a.TypeHash.String()
	}
	return out
}

func substHash(h typehash.Hash, subst map[typehash.Hash]typehash.Hash) typehash.Hash {
	if r, ok := subst[h]; ok {
		return r
	}
	return h
}

func substHashPtr(h *typehash.Hash, subst map[typehash.Hash]typehash.Hash) *typehash.Hash {
	if h == nil {
		return nil
	}
	r := substHash(*h, subst)
	return &r
}

func substHashes(hs []typehash.Hash, subst map[typehash.Hash]typehash.Hash) []typehash.Hash {
	if hs == nil {
		return nil
	}
	out := make([]typehash.Hash, len(hs))
	for i, h := range hs {
		out[i] = substHash(h, subst)
	}
	return out
}

func substDataType(d typesystem.DataType, subst map[typehash.Hash]typehash.Hash) typesystem.DataType {
	d.TypeHash = substHash(d.TypeHash, subst)
	return d
}

func substProperties(props []registry.PropertyDecl, subst map[typehash.Hash]typehash.Hash) []registry.PropertyDecl {
	if props == nil {
		return nil
	}
	out := make([]registry.PropertyDecl, len(props))
	for i, p := range props {
		p.Type = substDataType(p.Type, subst)
		out[i] = p
	}
	return out
}

// specializeMethod copies a template method with every template
// parameter (and SELF) replaced per subst, then recomputes its hash from
// the substituted parameter hashes — the method's identity in the
// registry is a function of its *specialized* signature.
func specializeMethod(m *registry.FunctionEntry, instHash typehash.Hash, subst map[typehash.Hash]typehash.Hash) *registry.FunctionEntry {
	def := m.Def
	def.ObjectType = &instHash

	paramHashes := make([]typehash.Hash, len(def.Params))
	specParams := make([]registry.FunctionParam, len(def.Params))
	for i, p := range def.Params {
		p.Type = substDataType(p.Type, subst)
		specParams[i] = p
		paramHashes[i] = p.Type.TypeHash
	}
	def.Params = specParams
	def.Return = substDataType(def.Return, subst)

	if def.Traits.IsConstructor {
		def.Hash = typehash.FromConstructor(instHash, paramHashes)
	} else {
		def.Hash = typehash.FromMethod(instHash, def.Name, paramHashes)
	}

	out := &registry.FunctionEntry{Def: def, Tag: m.Tag}
	if m.Script != nil {
		s := *m.Script
		out.Script = &s
	}
	if m.FFI != nil {
		f := *m.FFI
		out.FFI = &f
	}
	return out
}

func remapHash(h typehash.Hash, remap map[typehash.Hash]typehash.Hash) typehash.Hash {
	if r, ok := remap[h]; ok {
		return r
	}
	return h
}

func remapHashes(hs []typehash.Hash, remap map[typehash.Hash]typehash.Hash) []typehash.Hash {
	if hs == nil {
		return nil
	}
	out := make([]typehash.Hash, len(hs))
	for i, h := range hs {
		out[i] = remapHash(h, remap)
	}
	return out
}

func specializeBehaviors(b *registry.TypeBehaviors, remap map[typehash.Hash]typehash.Hash) *registry.TypeBehaviors {
	out := registry.NewTypeBehaviors()
	out.Constructors = remapHashes(b.Constructors, remap)
	out.Factories = remapHashes(b.Factories, remap)
	if b.Destructor != nil {
		h := remapHash(*b.Destructor, remap)
		out.Destructor = &h
	}
	if b.AddRef != nil {
		h := remapHash(*b.AddRef, remap)
		out.AddRef = &h
	}
	if b.Release != nil {
		h := remapHash(*b.Release, remap)
		out.Release = &h
	}
	if b.GetWeakRefFlag != nil {
		h := remapHash(*b.GetWeakRefFlag, remap)
		out.GetWeakRefFlag = &h
	}
	if b.TemplateCallback != nil {
		h := remapHash(*b.TemplateCallback, remap)
		out.TemplateCallback = &h
	}
	for _, lb := range b.ListConstructs {
		out.ListConstructs = append(out.ListConstructs, registry.ListBehavior{
			FuncHash: remapHash(lb.FuncHash, remap), Pattern: lb.Pattern,
		})
	}
	for _, lb := range b.ListFactories {
		out.ListFactories = append(out.ListFactories, registry.ListBehavior{
			FuncHash: remapHash(lb.FuncHash, remap), Pattern: lb.Pattern,
		})
	}
	for op, hs := range b.Operators {
		out.Operators[op] = remapHashes(hs, remap)
	}
	return out
}
