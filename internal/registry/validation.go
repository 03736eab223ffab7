package registry

import "github.com/funvibe/langc/internal/typesystem"

// LifecycleBehavior names the lifecycle hooks the §4.5 table talks about, independent of OperatorBehavior (which is about
// overloaded operators, not lifecycle).
type LifecycleBehavior int

const (
	BehaviorAddRef LifecycleBehavior = iota
	BehaviorRelease
	BehaviorConstructor
	BehaviorDestructor
	BehaviorFactory
)

func (b LifecycleBehavior) String() string {
	switch b {
	case BehaviorAddRef:
		return "AddRef"
	case BehaviorRelease:
		return "Release"
	case BehaviorConstructor:
		return "Constructor"
	case BehaviorDestructor:
		return "Destructor"
	case BehaviorFactory:
		return "Factory"
	default:
		return "?"
	}
}

// ValidationResult is the pure output of Validate: two disjoint sets of
// lifecycle behaviors, independent of any particular type's actual
// behaviors until the caller compares them.
type ValidationResult struct {
	Forbidden []LifecycleBehavior
	Missing   []LifecycleBehavior
}

func (r ValidationResult) OK() bool { return len(r.Forbidden) == 0 && len(r.Missing) == 0 }

// Validate implements the §4.5 table. It is pure and side-effect-free;
// converting a non-OK result into an error is left to the caller. Only
// this package's tests call it: neither the Registration Pass nor FFI
// registration runs it.
func Validate(kind typesystem.TypeKind, b *TypeBehaviors) ValidationResult {
	present := map[LifecycleBehavior]bool{
		BehaviorAddRef:      b.AddRef != nil,
		BehaviorRelease:     b.Release != nil,
		BehaviorConstructor: len(b.Constructors) > 0,
		BehaviorDestructor:  b.Destructor != nil,
		BehaviorFactory:     len(b.Factories) > 0,
	}

	var required, forbidden []LifecycleBehavior

	switch kind.Tag {
	case typesystem.KindReference:
		switch kind.RefKind {
		case typesystem.StandardRefCounted:
			required = []LifecycleBehavior{BehaviorAddRef, BehaviorRelease}
		case typesystem.NoCount:
			forbidden = []LifecycleBehavior{BehaviorAddRef, BehaviorRelease}
		case typesystem.NoHandle:
			forbidden = []LifecycleBehavior{BehaviorAddRef, BehaviorRelease, BehaviorFactory}
		case typesystem.Scoped:
			required = []LifecycleBehavior{BehaviorRelease}
			forbidden = []LifecycleBehavior{BehaviorAddRef}
		}
	case typesystem.KindValue:
		if !kind.Pod {
			required = []LifecycleBehavior{BehaviorConstructor, BehaviorDestructor}
		}
	case typesystem.KindScriptObject:
		// VM managed: no FFI-lifecycle requirement or prohibition.
	}

	result := ValidationResult{}
	for _, req := range required {
		if !present[req] {
			result.Missing = append(result.Missing, req)
		}
	}
	for _, f := range forbidden {
		if present[f] {
			result.Forbidden = append(result.Forbidden, f)
		}
	}
	return result
}
