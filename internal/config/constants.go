// Package config holds process-wide compiler toggles.
//
// These are not script-level settings; they govern host-configurable
// compiler behavior (the registry flags called for by open questions in
// the type system) and test/LSP output normalization.
package config

// Version is the current compiler version.
var Version = "0.1.0"

const SourceFileExt = ".as"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".as", ".script"}

// TrimSourceExt removes any recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is a flag that no code in this module reads; setting it
// changes no output.
var IsTestMode = false

// FloatToIntNarrowingAllowed resolves Open Question 1 of the conversion
// lattice: whether float->int is an implicit (cost 3) or explicit-only
// conversion. Hosts that embed the compiler may flip this before the
// first Compile call; it must not change mid-build.
var FloatToIntNarrowingAllowed = true

// DerivedToBaseSlicingAllowed resolves Open Question 2: whether a value
// (non-handle) class may convert Derived->Base by slicing. Kept false;
// see DESIGN.md for rationale.
var DerivedToBaseSlicingAllowed = false

// Reserved method names recognized by the operator table and behavior
// validator.
const (
	DestructorName     = "~"
	AddRefName         = "AddRef"
	ReleaseName        = "Release"
	GetWeakRefFlagName = "GetWeakRefFlag"
	FactoryPrefix      = "@"
)
