package wrtinstr

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Load executes an i32.load/i64.load family opcode: pops the base address,
// adds arg.Offset, reads from ctx.Memory(), pushes the result.
func Load(ctx Context, op Opcode, arg MemArg) error {
	addr := ctx.Pop().AsU32()
	base := addr + arg.Offset
	switch op {
	case OpI32Load:
		raw, err := ctx.Memory().Read(base, 4)
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.U32(leUint32(raw)))
	case OpI64Load:
		raw, err := ctx.Memory().Read(base, 8)
		if err != nil {
			return err
		}
		ctx.Push(wrtvalue.U64(leUint64(raw)))
	default:
		return wrterror.Trap(wrterror.CodeUnreachable, "opcode is not a load instruction")
	}
	return nil
}

// Store executes an i32.store/i64.store family opcode: pops the value then
// the base address, writes to ctx.Memory() at address+arg.Offset.
func Store(ctx Context, op Opcode, arg MemArg) error {
	val := ctx.Pop()
	addr := ctx.Pop().AsU32()
	base := addr + arg.Offset
	switch op {
	case OpI32Store:
		return ctx.Memory().Write(base, leBytes32(val.AsU32()))
	case OpI64Store:
		return ctx.Memory().Write(base, leBytes64(val.AsU64()))
	default:
		return wrterror.Trap(wrterror.CodeUnreachable, "opcode is not a store instruction")
	}
}

// MemorySize pushes the current page count, memory.size.
func MemorySize(ctx Context) error {
	ctx.Push(wrtvalue.U32(ctx.Memory().SizePages()))
	return nil
}

// MemoryGrow pops delta pages, pushes the previous page count (or -1),
// memory.grow.
func MemoryGrow(ctx Context) error {
	delta := ctx.Pop().AsU32()
	result := ctx.Memory().Grow(delta)
	ctx.Push(wrtvalue.S32(int32(result)))
	return nil
}

// MemoryFill pops length, value, dest (in that order) and fills, memory.fill.
func MemoryFill(ctx Context) error {
	length := ctx.Pop().AsU32()
	value := byte(ctx.Pop().AsU32())
	dest := ctx.Pop().AsU32()
	return ctx.Memory().Fill(dest, value, length)
}

// MemoryCopy pops length, src, dest and copies, memory.copy.
func MemoryCopy(ctx Context) error {
	length := ctx.Pop().AsU32()
	src := ctx.Pop().AsU32()
	dest := ctx.Pop().AsU32()
	return ctx.Memory().Copy(dest, src, length)
}

// MemoryInit pops length, src (offset into the segment), dest and copies
// from data segment segIdx, trapping CodeDataSegmentDropped if it was
// already dropped. memory.init.
func MemoryInit(ctx Context, segIdx uint32) error {
	length := ctx.Pop().AsU32()
	src := ctx.Pop().AsU32()
	dest := ctx.Pop().AsU32()
	data, err := ctx.DataSegment(segIdx)
	if err != nil {
		return err
	}
	if uint64(src)+uint64(length) > uint64(len(data)) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "memory.init source range exceeds segment length")
	}
	return ctx.Memory().Write(dest, data[src:src+length])
}

// DataDrop marks data segment segIdx dropped, data.drop.
func DataDrop(ctx Context, segIdx uint32) error {
	ctx.DropData(segIdx)
	return nil
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func leBytes32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func leBytes64(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}
