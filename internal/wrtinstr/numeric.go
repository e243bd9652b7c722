package wrtinstr

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Numeric executes one of the numeric opcodes, popping its operands off
// ctx's stack and pushing the result, per spec §4.5 "Numeric". Division,
// remainder, and truncating conversions trap per spec §4.3's WebAssembly
// numeric semantics (signed division, i32 signed remainder and trapping
// truncations delegate to internal/wrtvalue; unsigned division/remainder
// and i64 signed remainder check inline).
func Numeric(ctx Context, op Opcode) error {
	switch op {
	case OpI32Add:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S32(a.AsS32() + b.AsS32()))
	case OpI32Sub:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S32(a.AsS32() - b.AsS32()))
	case OpI32Mul:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S32(a.AsS32() * b.AsS32()))
	case OpI32DivS:
		b, a := ctx.Pop(), ctx.Pop()
		r, err := wrtvalue.DivS32(a.AsS32(), b.AsS32())
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.S32(r))
	case OpI32DivU:
		b, a := ctx.Pop(), ctx.Pop()
		if b.AsU32() == 0 {
			return wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i32.div_u by zero")
		}
		ctx.Push(wrtvalue.U32(a.AsU32() / b.AsU32()))
	case OpI32RemS:
		b, a := ctx.Pop(), ctx.Pop()
		r, err := wrtvalue.RemS32(a.AsS32(), b.AsS32())
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.S32(r))
	case OpI32RemU:
		b, a := ctx.Pop(), ctx.Pop()
		if b.AsU32() == 0 {
			return wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i32.rem_u by zero")
		}
		ctx.Push(wrtvalue.U32(a.AsU32() % b.AsU32()))
	case OpI32And:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.U32(a.AsU32() & b.AsU32()))
	case OpI32Or:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.U32(a.AsU32() | b.AsU32()))
	case OpI32Xor:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.U32(a.AsU32() ^ b.AsU32()))
	case OpI32Shl:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.U32(a.AsU32() << (b.AsU32() & 31)))
	case OpI32ShrS:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S32(a.AsS32() >> (b.AsU32() & 31)))
	case OpI32ShrU:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.U32(a.AsU32() >> (b.AsU32() & 31)))
	case OpI32Eq:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU32() == b.AsU32()))
	case OpI32Ne:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU32() != b.AsU32()))
	case OpI32LtS:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsS32() < b.AsS32()))
	case OpI32LtU:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU32() < b.AsU32()))
	case OpI32GtS:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsS32() > b.AsS32()))
	case OpI32GtU:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU32() > b.AsU32()))
	case OpI32Eqz:
		a := ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU32() == 0))

	case OpI64Add:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S64(a.AsS64() + b.AsS64()))
	case OpI64Sub:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S64(a.AsS64() - b.AsS64()))
	case OpI64Mul:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.S64(a.AsS64() * b.AsS64()))
	case OpI64DivS:
		b, a := ctx.Pop(), ctx.Pop()
		r, err := wrtvalue.DivS64(a.AsS64(), b.AsS64())
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.S64(r))
	case OpI64DivU:
		b, a := ctx.Pop(), ctx.Pop()
		if b.AsU64() == 0 {
			return wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i64.div_u by zero")
		}
		ctx.Push(wrtvalue.U64(a.AsU64() / b.AsU64()))
	case OpI64RemS:
		b, a := ctx.Pop(), ctx.Pop()
		if b.AsS64() == 0 {
			return wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i64.rem_s by zero")
		}
		if b.AsS64() == -1 {
			ctx.Push(wrtvalue.S64(0))
			return nil
		}
		ctx.Push(wrtvalue.S64(a.AsS64() % b.AsS64()))
	case OpI64RemU:
		b, a := ctx.Pop(), ctx.Pop()
		if b.AsU64() == 0 {
			return wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i64.rem_u by zero")
		}
		ctx.Push(wrtvalue.U64(a.AsU64() % b.AsU64()))
	case OpI64Eqz:
		a := ctx.Pop()
		ctx.Push(wrtvalue.Bool(a.AsU64() == 0))

	case OpF32Add:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F32(a.AsF32() + b.AsF32()))
	case OpF32Sub:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F32(a.AsF32() - b.AsF32()))
	case OpF32Mul:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F32(a.AsF32() * b.AsF32()))
	case OpF32Div:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F32(a.AsF32() / b.AsF32()))
	case OpF64Add:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F64(a.AsF64() + b.AsF64()))
	case OpF64Sub:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F64(a.AsF64() - b.AsF64()))
	case OpF64Mul:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F64(a.AsF64() * b.AsF64()))
	case OpF64Div:
		b, a := ctx.Pop(), ctx.Pop()
		ctx.Push(wrtvalue.F64(a.AsF64() / b.AsF64()))

	case OpI32TruncF32S:
		a := ctx.Pop()
		r, err := wrtvalue.TruncF32ToS32(a.AsF32())
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.S32(r))
	case OpI32TruncSatF32S:
		a := ctx.Pop()
		ctx.Push(wrtvalue.S32(wrtvalue.TruncSatF32ToS32(a.AsF32())))
	case OpI64TruncF64S:
		a := ctx.Pop()
		r, err := wrtvalue.TruncF64ToS64(a.AsF64())
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.S64(r))
	case OpI64TruncSatF64S:
		a := ctx.Pop()
		ctx.Push(wrtvalue.S64(wrtvalue.TruncSatF64ToS64(a.AsF64())))

	default:
		return wrterror.Trap(wrterror.CodeUnreachable, "opcode is not a numeric instruction")
	}
	return nil
}
