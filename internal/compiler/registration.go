// Registration pass (spec §4.9): walks a parsed ast.Program and declares
// every class, interface, enum, funcdef, free function, and global
// variable into a unit registry.Registry before any function body is
// lowered. Generalizes funxy/internal/symbols' single declare-then-eval
// pass into two explicit stages (Registrar here, Body Compiler in
// expressions.go/statements.go) since this language's static types make
// forward references between sibling declarations routine: a method can
// call a sibling declared later in the same file, which only works if
// every signature in the unit is known before any body is compiled.
package compiler

import (
	"strings"

	"github.com/funvibe/langc/internal/ast"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// PendingFunction is a registered-but-not-yet-lowered function body,
// handed to the Body Compiler once every sibling signature in the unit
// is registered.
type PendingFunction struct {
	Entry     *registry.FunctionEntry
	Body      *ast.BlockStatement
	Namespace string
	Imports   []string
	ThisType  *typesystem.DataType
}

// PendingGlobal is a registered global variable with a deferred
// initializer expression, lowered into the unit's synthetic module-init
// function once registration completes.
type PendingGlobal struct {
	Entry     *registry.GlobalPropertyEntry
	Init      ast.Expression
	Namespace string
	Imports   []string
}

// Registrar holds the state of one compilation unit's Registration Pass.
// It reuses CompilationContext for type-name resolution (resolveTypeExpr
// needs nothing the Body Compiler doesn't already provide), mutating its
// Namespace field as the walk descends into namespace blocks and class
// bodies — the Registrar itself never touches ctx.Chunk/Locals.
type Registrar struct {
	ctx *CompilationContext

	mixins map[string]*ast.ClassDecl

	Pending     []PendingFunction
	GlobalInits []PendingGlobal
}

// NewRegistrar creates a Registrar for one compilation unit.
func NewRegistrar(reg *registry.Registry, unitID, file string, imports []string) *Registrar {
	return &Registrar{
		ctx:    NewCompilationContext(reg, "", unitID, append([]string{}, imports...), file),
		mixins: make(map[string]*ast.ClassDecl),
	}
}

// Errors returns every registration diagnostic accumulated so far.
func (r *Registrar) Errors() diagnostics.List { return r.ctx.Errors }

// RegisterProgram runs the Registration Pass over a whole parsed unit.
func (r *Registrar) RegisterProgram(prog *ast.Program) {
	for _, imp := range prog.Imports {
		r.ctx.Imports = append(r.ctx.Imports, imp.Path)
	}
	for _, u := range prog.Usings {
		r.ctx.Imports = append(r.ctx.Imports, u.Namespace)
	}

	r.collectMixins("", prog.Decls)
	r.registerDecls("", prog.Decls)

	if prog.Namespace != nil {
		r.collectMixins("", prog.Namespace.Body)
		r.registerNamespaceBlock("", prog.Namespace)
	}
}

// collectMixins finds every mixin class declaration in the unit before
// any class is registered, so a class that embeds a mixin declared later
// in the same file still sees it (spec §4.9's mixin inlining has no
// forward-reference restriction, unlike base-class resolution).
func (r *Registrar) collectMixins(namespace string, decls []ast.Statement) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.NamespaceDecl:
			r.collectMixins(registry.CanonicalNamespace(namespace, d.Name), d.Body)
		case *ast.ClassDecl:
			if d.IsMixin {
				r.mixins[d.Name] = d
			}
		}
	}
}

func (r *Registrar) registerNamespaceBlock(parent string, d *ast.NamespaceDecl) {
	r.registerDecls(registry.CanonicalNamespace(parent, d.Name), d.Body)
}

func (r *Registrar) registerDecls(namespace string, decls []ast.Statement) {
	for _, decl := range decls {
		switch d := decl.(type) {
		case *ast.NamespaceDecl:
			r.registerNamespaceBlock(namespace, d)
		case *ast.ClassDecl:
			if d.IsMixin {
				continue // inlined into deriving classes, never registered standalone
			}
			r.registerClass(namespace, d)
		case *ast.InterfaceDecl:
			r.registerInterface(namespace, d)
		case *ast.EnumDecl:
			r.registerEnum(namespace, d)
		case *ast.FuncdefDecl:
			r.registerFuncdef(namespace, d)
		case *ast.FunctionDecl:
			r.registerFreeFunction(namespace, d)
		case *ast.VarDecl:
			r.registerGlobalVar(namespace, d)
		case *ast.ImportDecl, *ast.UsingDecl:
			// folded into r.ctx.Imports by RegisterProgram already.
		default:
			r.ctx.addError(diagnostics.FromToken(diagnostics.PhaseRegistration, diagnostics.ErrInternal, decl.GetToken(), "unexpected top-level declaration node"))
		}
	}
}

// expandMixins splices every embedded mixin's fields and methods into a
// copy of d, and drops the mixin's name from the resulting Interfaces
// list (a mixin is not itself a validated interface).
func (r *Registrar) expandMixins(d *ast.ClassDecl) *ast.ClassDecl {
	if len(d.Interfaces) == 0 {
		return d
	}
	fields := append([]*ast.FieldDecl{}, d.Fields...)
	methods := append([]*ast.FunctionDecl{}, d.Methods...)
	var remaining []*ast.TypeExpr
	for _, iface := range d.Interfaces {
		if mixin, ok := r.mixins[iface.Name]; ok {
			fields = append(fields, mixin.Fields...)
			methods = append(methods, mixin.Methods...)
			continue
		}
		remaining = append(remaining, iface)
	}
	out := *d
	out.Fields = fields
	out.Methods = methods
	out.Interfaces = remaining
	return &out
}

// resolveInheritance resolves d's base-and-interfaces list left to right
// (spec §4.9): the first resolved name that is a class becomes the base,
// a second one is an error, and every resolved interface is collected
// regardless of position.
func (r *Registrar) resolveInheritance(namespace string, d *ast.ClassDecl) (*typehash.Hash, []typehash.Hash) {
	r.ctx.Namespace = namespace

	var baseHash *typehash.Hash
	var baseName string
	var interfaces []typehash.Hash

	candidates := make([]*ast.TypeExpr, 0, 1+len(d.Interfaces))
	if d.Base != nil {
		candidates = append(candidates, d.Base)
	}
	candidates = append(candidates, d.Interfaces...)

	for _, te := range candidates {
		entry, ok := r.ctx.Reg.ResolveType(te.Name, namespace, r.ctx.Imports)
		if !ok {
			r.ctx.addError(diagnostics.FromToken(diagnostics.PhaseRegistration, diagnostics.ErrUnregisteredBase, te.Token, te.Name))
			continue
		}
		if entry.Tag == registry.EntryInterface {
			interfaces = append(interfaces, entry.Hash)
			continue
		}
		if baseHash != nil {
			r.ctx.addError(diagnostics.FromToken(diagnostics.PhaseRegistration, diagnostics.ErrSecondBaseClass, te.Token, d.Name, baseName))
			continue
		}
		h := entry.Hash
		baseHash = &h
		baseName = entry.Name
	}
	return baseHash, interfaces
}

// registerTemplateParams registers one placeholder TypeEntry per
// template parameter, scoped under the owning class's own qualified name
// so resolveTypeExpr can find "T" while compiling the template class's
// own members. internal/templates.Instantiate substitutes these
// TemplateParamRef hashes with the concrete argument types on first use
// (spec §4.7).
//
// Simplification: while resolving a template class's own member types,
// the Registrar's current namespace is switched to the class's own
// qualified name so bare template-parameter names resolve; this means a
// template class body refers to sibling namespace types by bare/imported
// name only, not by the enclosing namespace's implicit fallback, for as
// long as its members are being registered.
func (r *Registrar) registerTemplateParams(qname string, owner typehash.Hash, params []string) {
	for i, p := range params {
		pqname := qname + "::" + p
		entry := &registry.TypeEntry{
			Tag:              registry.EntryTemplateParam,
			Hash:             typehash.FromName(pqname),
			Name:             p,
			QualifiedName:    pqname,
			Namespace:        qname,
			TemplateParamRef: registry.TemplateParamRef{Owner: owner, Index: i},
		}
		if err := r.ctx.Reg.RegisterType(entry); err != nil {
			r.ctx.addError(err)
		}
	}
}

func (r *Registrar) registerClass(namespace string, raw *ast.ClassDecl) {
	d := r.expandMixins(raw)
	qname := qualifyName(namespace, d.Name)
	hash := typehash.FromName(qname)

	baseHash, interfaceHashes := r.resolveInheritance(namespace, d)

	memberNamespace := namespace
	if len(d.TemplateParams) > 0 {
		r.registerTemplateParams(qname, hash, d.TemplateParams)
		memberNamespace = qname
	}

	entry := &registry.TypeEntry{
		Tag:            registry.EntryClass,
		Hash:           hash,
		Name:           d.Name,
		QualifiedName:  qname,
		Namespace:      namespace,
		Kind:           typesystem.ScriptObjectKind(),
		BaseClass:      baseHash,
		Interfaces:     interfaceHashes,
		TemplateParams: d.TemplateParams,
	}

	r.ctx.Namespace = memberNamespace
	for _, f := range d.Fields {
		ft, err := r.ctx.resolveTypeExpr(f.Type)
		if err != nil {
			r.ctx.addError(err)
			continue
		}
		entry.Properties = append(entry.Properties, registry.PropertyDecl{Name: f.Name, Type: ft})
	}

	if err := r.ctx.Reg.RegisterType(entry); err != nil {
		r.ctx.addError(err)
		return
	}

	behaviors := registry.NewTypeBehaviors()
	var methodHashes []typehash.Hash
	for _, m := range d.Methods {
		if h := r.registerMethod(memberNamespace, hash, entry, behaviors, m); h != nil {
			methodHashes = append(methodHashes, *h)
		}
	}
	entry.Methods = methodHashes

	if err := r.ctx.Reg.SetBehaviors(hash, behaviors); err != nil {
		r.ctx.addError(err)
	}
}

func (r *Registrar) registerInterface(namespace string, d *ast.InterfaceDecl) {
	r.ctx.Namespace = namespace
	qname := qualifyName(namespace, d.Name)
	hash := typehash.FromName(qname)

	var baseInterfaces []typehash.Hash
	for _, b := range d.Bases {
		entry, ok := r.ctx.Reg.ResolveType(b.Name, namespace, r.ctx.Imports)
		if !ok {
			r.ctx.addError(diagnostics.FromToken(diagnostics.PhaseRegistration, diagnostics.ErrUnregisteredBase, b.Token, b.Name))
			continue
		}
		baseInterfaces = append(baseInterfaces, entry.Hash)
	}

	entry := &registry.TypeEntry{
		Tag:            registry.EntryInterface,
		Hash:           hash,
		Name:           d.Name,
		QualifiedName:  qname,
		Namespace:      namespace,
		BaseInterfaces: baseInterfaces,
	}
	if err := r.ctx.Reg.RegisterType(entry); err != nil {
		r.ctx.addError(err)
		return
	}

	for _, m := range d.Methods {
		params, paramHashes := r.resolveParams(namespace, m.Params)
		ret := r.resolveReturn(m.Return)
		mhash := typehash.FromMethod(hash, m.Name, paramHashes)
		def := registry.FunctionDef{
			Hash:          mhash,
			Name:          m.Name,
			QualifiedName: qualifyName(qname, m.Name),
			Params:        params,
			Return:        ret,
			ObjectType:    &hash,
			Traits:        registry.FunctionTraits{IsConst: m.IsConst, IsVirtual: true, IsAbstract: true},
		}
		fn := &registry.FunctionEntry{Def: def, Tag: registry.ImplAbstract}
		if err := r.ctx.Reg.RegisterFunction(fn); err != nil {
			r.ctx.addError(err)
			continue
		}
		entry.AbstractMethods = append(entry.AbstractMethods, mhash)
	}
}

func (r *Registrar) registerEnum(namespace string, d *ast.EnumDecl) {
	qname := qualifyName(namespace, d.Name)
	hash := typehash.FromName(qname)

	var next int64
	values := make([]registry.EnumValue, 0, len(d.Values))
	for _, v := range d.Values {
		val := next
		if v.Value != nil {
			if lit, ok := v.Value.(*ast.IntegerLiteral); ok {
				val = lit.Value
			} else {
				r.ctx.addError(diagnostics.FromToken(diagnostics.PhaseRegistration, diagnostics.ErrInternal, d.Token, "enum value must be an integer literal"))
			}
		}
		values = append(values, registry.EnumValue{Name: v.Name, Value: val})
		next = val + 1
	}

	entry := &registry.TypeEntry{
		Tag:           registry.EntryEnum,
		Hash:          hash,
		Name:          d.Name,
		QualifiedName: qname,
		Namespace:     namespace,
		Enumerators:   values,
	}
	if err := r.ctx.Reg.RegisterType(entry); err != nil {
		r.ctx.addError(err)
	}
}

func (r *Registrar) registerFuncdef(namespace string, d *ast.FuncdefDecl) {
	r.ctx.Namespace = namespace
	qname := qualifyName(namespace, d.Name)
	hash := typehash.FromName(qname)

	params, _ := r.resolveParams(namespace, d.Params)
	paramTypes := make([]typesystem.DataType, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	ret := r.resolveReturn(d.Return)

	entry := &registry.TypeEntry{
		Tag:           registry.EntryFuncdef,
		Hash:          hash,
		Name:          d.Name,
		QualifiedName: qname,
		Namespace:     namespace,
		FuncdefParams: paramTypes,
		FuncdefReturn: ret,
	}
	if err := r.ctx.Reg.RegisterType(entry); err != nil {
		r.ctx.addError(err)
	}
}

func (r *Registrar) registerFreeFunction(namespace string, d *ast.FunctionDecl) {
	r.ctx.Namespace = namespace
	qname := qualifyName(namespace, d.Name)
	params, paramHashes := r.resolveParams(namespace, d.Params)
	ret := r.resolveReturn(d.Return)
	hash := typehash.FromFunction(qname, paramHashes)

	def := registry.FunctionDef{
		Hash:          hash,
		Name:          d.Name,
		QualifiedName: qname,
		Params:        params,
		Return:        ret,
		Traits:        registry.FunctionTraits{IsConst: d.IsConst, IsExplicit: d.IsExplicit},
	}
	fn := &registry.FunctionEntry{
		Def: def,
		Tag: registry.ImplScript,
		Script: &registry.ScriptImpl{
			UnitID: r.ctx.UnitID,
			Span:   registry.Span{Line: d.Token.Span.Line, Column: d.Token.Span.Column},
		},
	}
	if err := r.ctx.Reg.RegisterFunction(fn); err != nil {
		r.ctx.addError(err)
		return
	}

	r.Pending = append(r.Pending, PendingFunction{
		Entry:     fn,
		Body:      d.Body,
		Namespace: namespace,
		Imports:   append([]string{}, r.ctx.Imports...),
	})
}

func (r *Registrar) registerGlobalVar(namespace string, d *ast.VarDecl) {
	r.ctx.Namespace = namespace
	qname := qualifyName(namespace, d.Name)
	dt, err := r.ctx.resolveTypeExpr(d.Type)
	if err != nil {
		r.ctx.addError(err)
		return
	}

	entry := &registry.GlobalPropertyEntry{
		Hash:          typehash.FromName(qname),
		QualifiedName: qname,
		Type:          dt,
		IsConst:       d.IsConst,
		Tag:           registry.GlobalScript,
	}
	if err := r.ctx.Reg.RegisterGlobal(entry); err != nil {
		r.ctx.addError(err)
		return
	}

	if d.Init != nil {
		r.GlobalInits = append(r.GlobalInits, PendingGlobal{
			Entry:     entry,
			Init:      d.Init,
			Namespace: namespace,
			Imports:   append([]string{}, r.ctx.Imports...),
		})
	}
}

// registerMethod registers one class member: a constructor (Return ==
// nil, Name == owner's unqualified name), a destructor (Name prefixed
// "~"), or an ordinary method, folding the result into behaviors as the
// §4.5 lifecycle table requires. Returns the new method's hash, or nil if
// registration failed (already recorded in r.ctx.Errors).
func (r *Registrar) registerMethod(namespace string, owner typehash.Hash, entry *registry.TypeEntry, behaviors *registry.TypeBehaviors, m *ast.FunctionDecl) *typehash.Hash {
	r.ctx.Namespace = namespace
	params, paramHashes := r.resolveParams(namespace, m.Params)

	isDtor := strings.HasPrefix(m.Name, "~")
	isCtor := !isDtor && m.Return == nil
	name := m.Name
	if isDtor {
		name = strings.TrimPrefix(name, "~")
	}

	ret := typesystem.Void()
	if m.Return != nil {
		ret = r.resolveReturn(m.Return)
	}

	var hash typehash.Hash
	if isCtor {
		hash = typehash.FromConstructor(owner, paramHashes)
	} else {
		hash = typehash.FromMethod(owner, name, paramHashes)
	}

	def := registry.FunctionDef{
		Hash:          hash,
		Name:          name,
		QualifiedName: qualifyName(entry.QualifiedName, name),
		Params:        params,
		Return:        ret,
		ObjectType:    &owner,
		Traits: registry.FunctionTraits{
			IsConst:       m.IsConst,
			IsVirtual:     m.IsVirtual,
			IsFinal:       m.IsFinal,
			IsAbstract:    m.IsAbstract,
			IsConstructor: isCtor,
			IsDestructor:  isDtor,
			IsExplicit:    m.IsExplicit,
		},
	}

	tag := registry.ImplScript
	if m.IsAbstract {
		tag = registry.ImplAbstract
	}
	fn := &registry.FunctionEntry{Def: def, Tag: tag}
	if tag == registry.ImplScript {
		fn.Script = &registry.ScriptImpl{
			UnitID: r.ctx.UnitID,
			Span:   registry.Span{Line: m.Token.Span.Line, Column: m.Token.Span.Column},
		}
	}

	if err := r.ctx.Reg.RegisterFunction(fn); err != nil {
		r.ctx.addError(err)
		return nil
	}

	switch {
	case isCtor:
		behaviors.Constructors = append(behaviors.Constructors, hash)
	case isDtor:
		behaviors.Destructor = &hash
	default:
		if m.IsProperty {
			registerPropertyAccessor(entry, name, hash, len(params) == 0, ret, params)
		}
		if ob, ok := operatorByMethodName[name]; ok {
			behaviors.Operators[ob] = append(behaviors.Operators[ob], hash)
		}
	}

	if tag == registry.ImplScript {
		thisType := typesystem.DataType{TypeHash: owner, IsConst: m.IsConst}
		r.Pending = append(r.Pending, PendingFunction{
			Entry:     fn,
			Body:      m.Body,
			Namespace: namespace,
			Imports:   append([]string{}, r.ctx.Imports...),
			ThisType:  &thisType,
		})
	}
	return &hash
}

// registerPropertyAccessor folds a get_X/set_X-named method (flagged
// IsProperty by the parser) into entry's virtual PropertyDecl for X,
// creating the PropertyDecl on first sight of either accessor.
func registerPropertyAccessor(entry *registry.TypeEntry, name string, hash typehash.Hash, isGetter bool, ret typesystem.DataType, params []registry.FunctionParam) {
	propName := strings.TrimPrefix(strings.TrimPrefix(name, "get_"), "set_")
	dt := ret
	if !isGetter && len(params) > 0 {
		dt = params[0].Type
	}

	for i := range entry.Properties {
		if entry.Properties[i].Name == propName {
			entry.Properties[i].IsVirtual = true
			if isGetter {
				entry.Properties[i].GetterHash = hash
			} else {
				entry.Properties[i].SetterHash = hash
			}
			return
		}
	}

	p := registry.PropertyDecl{Name: propName, Type: dt, IsVirtual: true}
	if isGetter {
		p.GetterHash = hash
	} else {
		p.SetterHash = hash
	}
	entry.Properties = append(entry.Properties, p)
}

// operatorByMethodName is the reverse of registry's (unexported)
// methodNameOf table (spec §4.11), rebuilt here since the Registrar must
// recognize an operator overload by the plain method name it registered.
var operatorByMethodName = map[string]registry.OperatorBehavior{
	"opAdd":      registry.OpAdd,
	"opSub":      registry.OpSub,
	"opMul":      registry.OpMul,
	"opDiv":      registry.OpDiv,
	"opMod":      registry.OpMod,
	"opPow":      registry.OpPow,
	"opNeg":      registry.OpNeg,
	"opEquals":   registry.OpEquals,
	"opCmp":      registry.OpCmp,
	"opIs":       registry.OpIs,
	"opIndex":    registry.OpIndex,
	"get_opIndex": registry.OpIndexGet,
	"opImplConv": registry.OpImplConv,
	"opConv":     registry.OpConv,
	"opImplCast": registry.OpImplCast,
	"opCast":     registry.OpCast,
}

func (r *Registrar) resolveParams(namespace string, params []*ast.Param) ([]registry.FunctionParam, []typehash.Hash) {
	r.ctx.Namespace = namespace
	out := make([]registry.FunctionParam, 0, len(params))
	hashes := make([]typehash.Hash, 0, len(params))
	for _, p := range params {
		dt, err := r.ctx.resolveTypeExpr(p.Type)
		if err != nil {
			r.ctx.addError(err)
			continue
		}
		out = append(out, registry.FunctionParam{
			Name:          p.Name,
			Type:          dt,
			HasDefault:    p.HasDefault,
			HandleIsConst: dt.IsHandleToConst,
		})
		hashes = append(hashes, dt.TypeHash)
	}
	return out, hashes
}

func (r *Registrar) resolveReturn(te *ast.TypeExpr) typesystem.DataType {
	if te == nil {
		return typesystem.Void()
	}
	dt, err := r.ctx.resolveTypeExpr(te)
	if err != nil {
		r.ctx.addError(err)
		return typesystem.Void()
	}
	return dt
}
