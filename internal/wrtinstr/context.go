package wrtinstr

import (
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Context is the engine-supplied environment every opcode function in this
// package executes against: the operand stack, locals, globals, the
// module's memories/tables, and the data/element segment drop state.
// internal/wrtengine implements this interface over its frame/value stacks.
type Context interface {
	Push(v wrtvalue.Value)
	Pop() wrtvalue.Value

	Local(idx uint32) wrtvalue.Value
	SetLocal(idx uint32, v wrtvalue.Value)

	Global(idx uint32) wrtvalue.Value
	SetGlobal(idx uint32, v wrtvalue.Value)

	Memory() *wrtmem.Memory
	Table(idx uint32) *wrtmem.Table

	// DataSegment returns segment idx's bytes, failing with
	// CodeDataSegmentDropped if DropData(idx) already ran.
	DataSegment(idx uint32) ([]byte, error)
	DropData(idx uint32)

	// ElemSegment returns segment idx's entries, failing with
	// CodeElementSegmentDropped if DropElem(idx) already ran.
	ElemSegment(idx uint32) ([]wrtvalue.Value, error)
	DropElem(idx uint32)
}

// MemArg is the offset/align immediate pair carried by every load/store
// opcode, spec §4.5 "Memory instructions carry a static offset and
// alignment hint."
type MemArg struct {
	Offset uint32
	Align  uint32
}
