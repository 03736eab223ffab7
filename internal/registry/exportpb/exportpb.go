// Package exportpb serializes a compiler.ModuleOutput to a portable
// artifact so a host-side build cache, or internal/registrydb, can ship
// or store compiled modules without re-parsing source (spec §6's
// RegistryExport expansion). The name nods at the protobuf well-known
// type it does use (timestamppb.Timestamp for the build timestamp), not
// at a full protobuf wire encoding: a genuine proto.Message for
// ModuleOutput would need generated marshal/unmarshal code this exercise
// has no codegen step to produce, so the envelope itself travels as
// plain JSON — every field compiler.ModuleOutput, registry.Delta, and
// bytecode.Chunk expose is already an exported, JSON-encodable type
// (typehash.Hash's underlying uint64 satisfies encoding/json's "integer
// map key" rule without a custom MarshalText, so Bytecode and
// Delta.Behaviors round-trip with no per-field shuffling).
package exportpb

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/compiler"
	"github.com/funvibe/langc/internal/diagnostics"
	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
)

// envelope is the on-wire shape. BuiltAt is a genuine
// *timestamppb.Timestamp (Seconds/Nanos are its only exported fields, so
// plain encoding/json marshals it without protojson) rather than a bare
// time.Time, per spec §6's explicit call to exercise the well-known type.
type envelope struct {
	BuiltAt       *timestamppb.Timestamp        `json:"built_at"`
	Bytecode      map[typehash.Hash]*bytecode.Chunk `json:"bytecode"`
	Constants     []bytecode.Constant           `json:"constants"`
	RegistryDelta *registry.Delta               `json:"registry_delta"`
	Errors        []errorWire                   `json:"errors,omitempty"`
}

// errorWire flattens a *diagnostics.Error to its rendered message plus
// its structured fields, so a stored artifact with errors (a failed
// unit's output is still written — a build cache entry records failure
// too, not just success) is still human-readable without reconstructing
// the original diagnostics.Error to call Error() on it.
type errorWire struct {
	Code    diagnostics.Code  `json:"code"`
	Phase   diagnostics.Phase `json:"phase"`
	Message string            `json:"message"`
}

// Write serializes out to w as JSON, stamping BuiltAt with the current
// time.
func Write(w io.Writer, out *compiler.ModuleOutput) error {
	env := envelope{
		BuiltAt:       timestamppb.New(time.Now()),
		Bytecode:      out.Bytecode,
		Constants:     out.Constants,
		RegistryDelta: out.RegistryDelta,
	}
	for _, e := range out.Errors {
		env.Errors = append(env.Errors, errorWire{Code: e.Code, Phase: e.Phase, Message: e.Error()})
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("exportpb: encode: %w", err)
	}
	return nil
}

// Read deserializes a ModuleOutput previously written by Write. The
// returned ModuleOutput's Errors are reconstructed as bare
// *diagnostics.Error values carrying only Code/Phase/Args=[message] —
// enough for a caller to report what went wrong, not to re-run the
// Registration Pass's exact original diagnostic (a stored artifact is a
// cache entry, not a replay log).
func Read(r io.Reader) (*compiler.ModuleOutput, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("exportpb: decode: %w", err)
	}

	out := &compiler.ModuleOutput{
		Bytecode:      env.Bytecode,
		Constants:     env.Constants,
		RegistryDelta: env.RegistryDelta,
	}
	for _, e := range env.Errors {
		// ErrInternal's template is the one-arg "internal compiler error:
		// %s" — reusing it here (rather than e.Code, whose template may
		// expect a different arg shape) makes Error() render the stored
		// message (the original Error() string) verbatim as that
		// template's argument, under an I001 code and no span, instead
		// of reformatting it through a template it was never produced
		// from.
		out.Errors = append(out.Errors, &diagnostics.Error{
			Code:  diagnostics.ErrInternal,
			Phase: e.Phase,
			Args:  []interface{}{e.Message},
		})
	}
	return out, nil
}
