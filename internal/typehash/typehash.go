// Package typehash computes the 64-bit fingerprints used throughout the
// registry to identify types, functions, methods, constructors, and
// template instances without ever holding a direct pointer between them
// (the registry is the graph; TypeHash is the edge).
//
// The hash function itself (FNV-1a/64) only needs to be fast and
// collision-resistant in practice; determinism and tag-separation across
// the five constructors is what the invariants in spec §4.1 actually rely
// on, generalizing the Object.Hash() convention already used for runtime
// values in the teacher's evaluator package to a 64-bit, canonical-byte-
// sequence form.
package typehash

import (
	"hash/fnv"
	"strconv"
)

// Hash is an opaque fingerprint. Equality of Hash is equality of the
// referenced symbol.
type Hash uint64

func (h Hash) String() string { return strconv.FormatUint(uint64(h), 16) }

// tag separates the five constructors so a function's hash can never
// alias a type's hash even if their canonical byte sequences would
// otherwise collide trivially (e.g. empty param list vs. no params at all).
type tag byte

const (
	tagName tag = iota
	tagFunction
	tagMethod
	tagConstructor
	tagTemplateInstance
)

func sum(parts ...[]byte) Hash {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0}) // separator so "ab","c" != "a","bc"
	}
	return Hash(h.Sum64())
}

func u64(n uint64) []byte {
	return []byte(strconv.FormatUint(n, 16))
}

// FromName hashes a qualified name (used for classes, interfaces, enums,
// funcdefs, namespaces-as-symbols, template definitions).
func FromName(qualifiedName string) Hash {
	return sum([]byte{byte(tagName)}, []byte(qualifiedName))
}

// FromFunction hashes a free function by qualified name and the hashes of
// its parameter types, in order. Two syntactically identical signatures
// in the same owner therefore produce the same hash (enabling de-dup).
func FromFunction(qualifiedName string, paramHashes []Hash) Hash {
	parts := [][]byte{{byte(tagFunction)}, []byte(qualifiedName)}
	for _, p := range paramHashes {
		parts = append(parts, u64(uint64(p)))
	}
	return sum(parts...)
}

// FromMethod hashes a method by owner type hash, method name, and
// parameter hashes.
func FromMethod(owner Hash, name string, paramHashes []Hash) Hash {
	parts := [][]byte{{byte(tagMethod)}, u64(uint64(owner)), []byte(name)}
	for _, p := range paramHashes {
		parts = append(parts, u64(uint64(p)))
	}
	return sum(parts...)
}

// FromConstructor hashes a constructor by owner type hash and parameter
// hashes. Constructors have no name of their own in the language, so this
// constructor cannot alias FromMethod even for a method literally named
// after the owner type.
func FromConstructor(owner Hash, paramHashes []Hash) Hash {
	parts := [][]byte{{byte(tagConstructor)}, u64(uint64(owner))}
	for _, p := range paramHashes {
		parts = append(parts, u64(uint64(p)))
	}
	return sum(parts...)
}

// FromTemplateInstance hashes a concrete instantiation of a generic
// template by the template's own hash and the hashes of its type
// arguments, in order. This makes array<int> uniquely distinct from
// array<float> independent of how either type's name is rendered.
func FromTemplateInstance(templateHash Hash, argHashes []Hash) Hash {
	parts := [][]byte{{byte(tagTemplateInstance)}, u64(uint64(templateHash))}
	for _, a := range argHashes {
		parts = append(parts, u64(uint64(a)))
	}
	return sum(parts...)
}
