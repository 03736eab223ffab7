package runtime

import (
	"fmt"
	"math"

	"github.com/funvibe/langc/internal/bytecode"
	"github.com/funvibe/langc/internal/typehash"
)

func (f *frame) readByte() byte {
	b := f.chunk.Code[f.ip]
	f.ip++
	return b
}

func (f *frame) readU16() uint16 {
	v := f.chunk.ReadU16(f.ip)
	f.ip += 2
	return v
}

func (f *frame) readU64() uint64 {
	v := f.chunk.ReadU64(f.ip)
	f.ip += 8
	return v
}

func (f *frame) readI16() int16 { return int16(f.readU16()) }

// run drives the topmost frame until it returns, generalizing
// funxy/internal/vm/vm_exec.go's executeOneOp dispatch loop to this
// closed, width-specialized opcode set — every arithmetic/compare family
// is picked by the Body Compiler at compile time (spec §4.11), so this
// loop never branches on a runtime type tag the way funxy's binaryOp
// does for its dynamically typed values.
func (vm *VM) run() (Value, error) {
	f := vm.top()

	for {
		if f.ip >= len(f.chunk.Code) {
			return VoidVal(), fmt.Errorf("runtime: fell off the end of %s without a RETURN", f.chunk.File)
		}
		op := bytecode.Opcode(f.readByte())

		switch op {
		case bytecode.OpPushZero:
			vm.push(IntVal(0))
		case bytecode.OpPushOne:
			vm.push(IntVal(1))
		case bytecode.OpPushTrue:
			vm.push(BoolVal(true))
		case bytecode.OpPushFalse:
			vm.push(BoolVal(false))
		case bytecode.OpPushNull:
			vm.push(NullHandle())
		case bytecode.OpConstant:
			idx := f.readU16()
			vm.push(constantToValue(f.chunk.Constants[idx]))
		case bytecode.OpDup:
			vm.push(vm.peek(0))
		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := f.readU16()
			vm.push(vm.stack[f.base+int(slot)])
		case bytecode.OpSetLocal:
			slot := f.readU16()
			vm.stack[f.base+int(slot)] = vm.pop()
		case bytecode.OpGetGlobal:
			slot := f.readU16()
			vm.push(vm.globals[slot])
		case bytecode.OpSetGlobal:
			slot := f.readU16()
			vm.globals[slot] = vm.pop()
		case bytecode.OpGetField:
			idx := f.readU16()
			obj := vm.pop()
			vm.push(vm.readField(obj, int(idx)))
		case bytecode.OpSetField:
			idx := f.readU16()
			val := vm.pop()
			obj := vm.pop()
			vm.writeField(obj, int(idx), val)

		case bytecode.OpCall:
			fn := typehash.Hash(f.readU64())
			argc := int(f.readByte())
			result, err := vm.dispatchCall(fn, argc)
			if err != nil {
				return Value{}, err
			}
			vm.push(result)
		case bytecode.OpCallMethod:
			fn := typehash.Hash(f.readU64())
			argc := int(f.readByte())
			// Method args on the stack already include the receiver as
			// argument 0 (the Body Compiler evaluates `this` first, per
			// spec §4.10's "receiver is pushed before its arguments").
			result, err := vm.dispatchCall(fn, argc+1)
			if err != nil {
				return Value{}, err
			}
			vm.push(result)
		case bytecode.OpNew:
			typeHash := typehash.Hash(f.readU64())
			ctorHash := typehash.Hash(f.readU64())
			argc := int(f.readByte())
			result, err := vm.dispatchNew(typeHash, ctorHash, argc)
			if err != nil {
				return Value{}, err
			}
			vm.push(result)

		case bytecode.OpAddRef:
			fn := typehash.Hash(f.readU64())
			vm.addRef(vm.peek(0), fn)
		case bytecode.OpRelease:
			fn := typehash.Hash(f.readU64())
			v := vm.pop()
			if err := vm.release(v, fn); err != nil {
				return Value{}, err
			}

		case bytecode.OpJump:
			off := f.readI16()
			f.ip += int(off)
		case bytecode.OpJumpIfFalse:
			off := f.readI16()
			if !vm.pop().AsBool() {
				f.ip += int(off)
			}
		case bytecode.OpJumpIfTrue:
			off := f.readI16()
			if vm.pop().AsBool() {
				f.ip += int(off)
			}
		case bytecode.OpReturn:
			return vm.pop(), nil
		case bytecode.OpReturnVoid:
			return VoidVal(), nil

		case bytecode.OpAddI32, bytecode.OpAddI64:
			vm.binI(func(a, b int64) int64 { return a + b })
		case bytecode.OpSubI32, bytecode.OpSubI64:
			vm.binI(func(a, b int64) int64 { return a - b })
		case bytecode.OpMulI32, bytecode.OpMulI64:
			vm.binI(func(a, b int64) int64 { return a * b })
		case bytecode.OpDivI32, bytecode.OpDivI64:
			if err := vm.binICheckDiv(func(a, b int64) int64 { return a / b }); err != nil {
				return Value{}, err
			}
		case bytecode.OpModI32, bytecode.OpModI64:
			if err := vm.binICheckDiv(func(a, b int64) int64 { return a % b }); err != nil {
				return Value{}, err
			}
		case bytecode.OpNegI32, bytecode.OpNegI64:
			vm.push(IntVal(-vm.pop().AsInt()))

		case bytecode.OpAddU32, bytecode.OpAddU64:
			vm.binU(func(a, b uint64) uint64 { return a + b })
		case bytecode.OpSubU32, bytecode.OpSubU64:
			vm.binU(func(a, b uint64) uint64 { return a - b })
		case bytecode.OpMulU32, bytecode.OpMulU64:
			vm.binU(func(a, b uint64) uint64 { return a * b })
		case bytecode.OpDivU32, bytecode.OpDivU64:
			if err := vm.binUCheckDiv(func(a, b uint64) uint64 { return a / b }); err != nil {
				return Value{}, err
			}
		case bytecode.OpModU32, bytecode.OpModU64:
			if err := vm.binUCheckDiv(func(a, b uint64) uint64 { return a % b }); err != nil {
				return Value{}, err
			}

		case bytecode.OpAddF32, bytecode.OpAddF64:
			vm.binF(func(a, b float64) float64 { return a + b })
		case bytecode.OpSubF32, bytecode.OpSubF64:
			vm.binF(func(a, b float64) float64 { return a - b })
		case bytecode.OpMulF32, bytecode.OpMulF64:
			vm.binF(func(a, b float64) float64 { return a * b })
		case bytecode.OpDivF32, bytecode.OpDivF64:
			vm.binF(func(a, b float64) float64 { return a / b })
		case bytecode.OpNegF32, bytecode.OpNegF64:
			vm.push(FloatVal(-vm.pop().AsFloat()))

		case bytecode.OpBAnd:
			vm.binI(func(a, b int64) int64 { return a & b })
		case bytecode.OpBOr:
			vm.binI(func(a, b int64) int64 { return a | b })
		case bytecode.OpBXor:
			vm.binI(func(a, b int64) int64 { return a ^ b })
		case bytecode.OpBNot:
			vm.push(IntVal(^vm.pop().AsInt()))
		case bytecode.OpShl:
			vm.binI(func(a, b int64) int64 { return a << uint(b) })
		case bytecode.OpShr:
			vm.binI(func(a, b int64) int64 { return a >> uint(b) })
		case bytecode.OpUShr:
			vm.binU(func(a, b uint64) uint64 { return a >> b })

		case bytecode.OpEqI64:
			vm.cmpI(func(a, b int64) bool { return a == b })
		case bytecode.OpNeI64:
			vm.cmpI(func(a, b int64) bool { return a != b })
		case bytecode.OpLtI64:
			vm.cmpI(func(a, b int64) bool { return a < b })
		case bytecode.OpLeI64:
			vm.cmpI(func(a, b int64) bool { return a <= b })
		case bytecode.OpGtI64:
			vm.cmpI(func(a, b int64) bool { return a > b })
		case bytecode.OpGeI64:
			vm.cmpI(func(a, b int64) bool { return a >= b })

		case bytecode.OpEqU64:
			vm.cmpU(func(a, b uint64) bool { return a == b })
		case bytecode.OpNeU64:
			vm.cmpU(func(a, b uint64) bool { return a != b })
		case bytecode.OpLtU64:
			vm.cmpU(func(a, b uint64) bool { return a < b })
		case bytecode.OpLeU64:
			vm.cmpU(func(a, b uint64) bool { return a <= b })
		case bytecode.OpGtU64:
			vm.cmpU(func(a, b uint64) bool { return a > b })
		case bytecode.OpGeU64:
			vm.cmpU(func(a, b uint64) bool { return a >= b })

		case bytecode.OpEqF64:
			vm.cmpF(func(a, b float64) bool { return a == b })
		case bytecode.OpNeF64:
			vm.cmpF(func(a, b float64) bool { return a != b })
		case bytecode.OpLtF64:
			vm.cmpF(func(a, b float64) bool { return a < b })
		case bytecode.OpLeF64:
			vm.cmpF(func(a, b float64) bool { return a <= b })
		case bytecode.OpGtF64:
			vm.cmpF(func(a, b float64) bool { return a > b })
		case bytecode.OpGeF64:
			vm.cmpF(func(a, b float64) bool { return a >= b })

		case bytecode.OpNot:
			vm.push(BoolVal(!vm.pop().AsBool()))
		case bytecode.OpAnd:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolVal(a.AsBool() && b.AsBool()))
		case bytecode.OpOr:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolVal(a.AsBool() || b.AsBool()))

		case bytecode.OpIsNull:
			vm.push(BoolVal(vm.pop().IsNullHandle()))
		case bytecode.OpHandleEq:
			b, a := vm.pop(), vm.pop()
			vm.push(BoolVal(a.Handle == b.Handle))

		case bytecode.OpHalt:
			return VoidVal(), nil

		default:
			return Value{}, fmt.Errorf("runtime: unimplemented opcode %v", op)
		}
	}
}

func constantToValue(c bytecode.Constant) Value {
	switch c.Kind {
	case bytecode.ConstInt:
		return IntVal(c.I)
	case bytecode.ConstUint:
		return UintVal(c.U)
	case bytecode.ConstFloat:
		return FloatVal(c.F)
	case bytecode.ConstBool:
		return BoolVal(c.B)
	case bytecode.ConstString:
		return StringVal(c.S)
	default:
		return VoidVal()
	}
}

func (vm *VM) binI(f func(a, b int64) int64) {
	b, a := vm.pop(), vm.pop()
	vm.push(IntVal(f(a.AsInt(), b.AsInt())))
}

func (vm *VM) binICheckDiv(f func(a, b int64) int64) error {
	b, a := vm.pop(), vm.pop()
	if b.AsInt() == 0 {
		return fmt.Errorf("runtime: integer division by zero")
	}
	vm.push(IntVal(f(a.AsInt(), b.AsInt())))
	return nil
}

func (vm *VM) binU(f func(a, b uint64) uint64) {
	b, a := vm.pop(), vm.pop()
	vm.push(UintVal(f(a.AsUint(), b.AsUint())))
}

func (vm *VM) binUCheckDiv(f func(a, b uint64) uint64) error {
	b, a := vm.pop(), vm.pop()
	if b.AsUint() == 0 {
		return fmt.Errorf("runtime: integer division by zero")
	}
	vm.push(UintVal(f(a.AsUint(), b.AsUint())))
	return nil
}

func (vm *VM) binF(f func(a, b float64) float64) {
	b, a := vm.pop(), vm.pop()
	result := f(a.AsFloat(), b.AsFloat())
	if math.IsNaN(result) {
		result = math.NaN()
	}
	vm.push(FloatVal(result))
}

func (vm *VM) cmpI(f func(a, b int64) bool) {
	b, a := vm.pop(), vm.pop()
	vm.push(BoolVal(f(a.AsInt(), b.AsInt())))
}

func (vm *VM) cmpU(f func(a, b uint64) bool) {
	b, a := vm.pop(), vm.pop()
	vm.push(BoolVal(f(a.AsUint(), b.AsUint())))
}

func (vm *VM) cmpF(f func(a, b float64) bool) {
	b, a := vm.pop(), vm.pop()
	vm.push(BoolVal(f(a.AsFloat(), b.AsFloat())))
}

func (vm *VM) readField(obj Value, idx int) Value {
	switch obj.Kind {
	case KindHandle:
		if obj.Handle == nil || idx >= len(obj.Handle.Fields) {
			return VoidVal()
		}
		return obj.Handle.Fields[idx]
	case KindValue:
		if obj.Inline == nil || idx >= len(obj.Inline.Fields) {
			return VoidVal()
		}
		return obj.Inline.Fields[idx]
	default:
		return VoidVal()
	}
}

func (vm *VM) writeField(obj Value, idx int, val Value) {
	switch obj.Kind {
	case KindHandle:
		if obj.Handle != nil && idx < len(obj.Handle.Fields) {
			obj.Handle.Fields[idx] = val
		}
	case KindValue:
		if obj.Inline != nil && idx < len(obj.Inline.Fields) {
			obj.Inline.Fields[idx] = val
		}
	}
}
