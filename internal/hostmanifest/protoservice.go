// RegisterProtoService resolves a host function's parameter/return shape
// straight from a .proto-described gRPC service, letting a host register an
// entire service's methods as script-callable functions in one call instead
// of hand-writing a decl string per RPC. Grounded on funvibe-funxy's
// internal/evaluator/builtins_grpc.go: the same protoparse.Parser.ParseFiles
// load, the same walk over desc.ServiceDescriptor/MethodDescriptor/
// MessageDescriptor/FieldDescriptor, and a field-type mapping modeled
// directly on that file's getProtoTypeAsFunxy, retargeted from funxy's HM
// typesystem.Type onto this project's typesystem.DataType.
package hostmanifest

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/langc/internal/registry"
	"github.com/funvibe/langc/internal/typehash"
	"github.com/funvibe/langc/internal/typesystem"
)

// ProtoServiceOptions controls how RegisterProtoService names the service's
// methods in the script namespace and how it reaches the actual RPC at
// runtime.
type ProtoServiceOptions struct {
	// ImportPaths is forwarded to protoparse.Parser.ImportPaths, the same
	// way builtinGrpcLoadProto seeds it with "." when the caller gives
	// none.
	ImportPaths []string
	// Namespace qualifies every registered type/function
	// ("namespace::Name"); empty registers at global scope.
	Namespace string
	// Target is the native trampoline address a method's FFIImpl carries
	// (e.g. a dial target or connection-pool key); the native side
	// resolves it to a grpc.ClientConn the same way builtinGrpcInvoke's
	// connObj.Conn was resolved, and invokes the call by method path
	// "/package.Service/Method".
	Target string
}

// RegisterProtoService parses protoPath, locates the service named
// serviceName, and registers one script-callable function per RPC method
// plus one registry type per distinct request/response message type the
// service's methods reference (message types are shared across methods by
// qualified name, so a service with several methods returning the same
// response message only registers that type once).
func RegisterProtoService(reg *registry.Registry, protoPath, serviceName string, opts ProtoServiceOptions) error {
	importPaths := opts.ImportPaths
	if len(importPaths) == 0 {
		importPaths = []string{"."}
	}
	parser := protoparse.Parser{ImportPaths: importPaths}
	fds, err := parser.ParseFiles(protoPath)
	if err != nil {
		return fmt.Errorf("hostmanifest: parsing %s: %w", protoPath, err)
	}

	svc := findService(fds, serviceName)
	if svc == nil {
		return fmt.Errorf("hostmanifest: service %q not found in %s", serviceName, protoPath)
	}

	registered := make(map[typehash.Hash]bool)

	for _, m := range svc.GetMethods() {
		if m.IsClientStreaming() || m.IsServerStreaming() {
			return fmt.Errorf("hostmanifest: method %s: streaming RPCs are not representable as script functions", m.GetFullyQualifiedName())
		}

		reqType, err := registerMessageType(reg, m.GetInputType(), opts.Namespace, registered)
		if err != nil {
			return fmt.Errorf("hostmanifest: method %s: %w", m.GetFullyQualifiedName(), err)
		}
		respType, err := registerMessageType(reg, m.GetOutputType(), opts.Namespace, registered)
		if err != nil {
			return fmt.Errorf("hostmanifest: method %s: %w", m.GetFullyQualifiedName(), err)
		}

		if err := registerMethodFunction(reg, svc, m, reqType, respType, opts); err != nil {
			return fmt.Errorf("hostmanifest: method %s: %w", m.GetFullyQualifiedName(), err)
		}
	}
	return nil
}

func findService(fds []*desc.FileDescriptor, name string) *desc.ServiceDescriptor {
	for _, fd := range fds {
		for _, svc := range fd.GetServices() {
			if svc.GetName() == name || svc.GetFullyQualifiedName() == name {
				return svc
			}
		}
	}
	return nil
}

// registerMessageType registers md as a registry.EntryClass reference type
// (one script-visible property per proto field, §4.5's ref_noncounted
// family — a decoded proto message is owned by the native trampoline that
// produced it, never constructed or released from script) unless a type of
// that qualified name is already registered, either by an earlier call in
// this same service walk or a prior RegisterProtoService/host.yaml entry.
func registerMessageType(reg *registry.Registry, md *desc.MessageDescriptor, namespace string, registered map[typehash.Hash]bool) (typesystem.DataType, error) {
	qname := qualify(namespace, md.GetName())
	hash := typehash.FromName(qname)

	if registered[hash] {
		return typesystem.DataType{TypeHash: hash}, nil
	}
	if _, exists := reg.GetType(hash); exists {
		registered[hash] = true
		return typesystem.DataType{TypeHash: hash}, nil
	}

	entry := &registry.TypeEntry{
		Tag:           registry.EntryClass,
		Hash:          hash,
		Name:          md.GetName(),
		QualifiedName: qname,
		Kind:          typesystem.ReferenceKindOf(typesystem.NoCount),
	}
	for _, f := range md.GetFields() {
		entry.Properties = append(entry.Properties, registry.PropertyDecl{
			Name: f.GetName(),
			Type: protoFieldType(f),
		})
	}

	if err := reg.RegisterType(entry); err != nil {
		return typesystem.DataType{}, err
	}
	if err := reg.SetBehaviors(hash, registry.NewTypeBehaviors()); err != nil {
		return typesystem.DataType{}, err
	}
	registered[hash] = true
	return typesystem.DataType{TypeHash: hash}, nil
}

// protoFieldType maps one proto field to a typesystem.DataType, the
// retarget of builtins_grpc.go's getProtoTypeAsFunxy from funxy's HM
// typesystem.Type onto this project's TypeHash-keyed DataType. A
// message- or group-typed field maps to a handle of the type hash of its
// message's name; protoFieldType does not register that type, and
// RegisterProtoService registers only the request and response messages
// of the methods it walks. Enum fields and any other kind this mapping
// has no script analogue for fall back to the void type the same way
// getProtoTypeAsFunxy falls back to typesystem.Nil.
func protoFieldType(f *desc.FieldDescriptor) typesystem.DataType {
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32, descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return typesystem.DataType{TypeHash: typehash.FromName("int32")}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return typesystem.DataType{TypeHash: typehash.FromName("float")}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return typesystem.DataType{TypeHash: typehash.FromName("double")}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return typesystem.DataType{TypeHash: typehash.FromName("bool")}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING, descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return typesystem.DataType{TypeHash: typehash.FromName("string")}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return typesystem.DataType{TypeHash: typehash.FromName(f.GetMessageType().GetName()), IsHandle: true}
	default:
		return typesystem.Void()
	}
}

// registerMethodFunction registers m as a single script function taking the
// request message by const handle and returning the response message by
// handle, tagged ImplFFI the same way hostmanifest.go's registerFunction
// tags a YAML-declared function — the trampoline address is opts.Target
// plus the method's wire path, which a host's native binding resolves to
// an actual grpc.ClientConn.Invoke call the way builtinGrpcInvoke does.
func registerMethodFunction(reg *registry.Registry, svc *desc.ServiceDescriptor, m *desc.MethodDescriptor, reqType, respType typesystem.DataType, opts ProtoServiceOptions) error {
	qname := qualify(opts.Namespace, m.GetName())
	reqParam := registry.FunctionParam{
		Name:          "request",
		Type:          reqType.AsHandle().AsConst(),
		HandleIsConst: true,
	}
	paramHash := reqParam.Type.TypeHash
	hash := typehash.FromFunction(qname, []typehash.Hash{paramHash})

	methodPath := fmt.Sprintf("/%s/%s", svc.GetFullyQualifiedName(), m.GetName())
	trampoline := methodPath
	if opts.Target != "" {
		trampoline = opts.Target + methodPath
	}

	def := registry.FunctionDef{
		Hash:          hash,
		Name:          m.GetName(),
		QualifiedName: qname,
		Params:        []registry.FunctionParam{reqParam},
		Return:        respType.AsHandle(),
	}
	entry := &registry.FunctionEntry{
		Def: def,
		Tag: registry.ImplFFI,
		FFI: &registry.FFIImpl{NativeTrampoline: trampoline},
	}
	if err := reg.RegisterFunction(entry); err != nil {
		return err
	}
	return nil
}
