package wrtengine

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// DebugHook is the C14 integration point: called before every instruction
// with the currently executing frame, so a debugger can decide whether to
// pause. Machine's step loop treats a true return from ShouldBreak as
// "suspend now" and returns a Paused RunResult carrying a PauseState,
// exactly like fuel exhaustion does, per spec §4.6 "debugger breakpoints suspend the engine the same way
// fuel exhaustion does — through the ordinary Paused path, not a separate
// mechanism."
type DebugHook interface {
	ShouldBreak(frame *Frame) bool
}

// Machine is one component instance's executing state: the heap frame
// stack, the value stack all frames share, and the instance's memory,
// tables, globals, and segments. Stackless per spec §4.6: Run's step loop
// never recurses into Go call frames for a WebAssembly call — Call and
// ReturnCall push or replace entries in m.frames instead.
type Machine struct {
	frames  []*Frame
	stack   []wrtvalue.Value
	globals []wrtvalue.Value

	mem    *wrtmem.Memory
	tables []*wrtmem.Table

	functions []*Function

	dataSegs    [][]byte
	dataDropped []bool
	elemSegs    [][]wrtvalue.Value
	elemDropped []bool

	fuel    uint64
	Debug   DebugHook
	maxCall int
}

// NewMachine constructs a Machine ready to Call into functions, owning mem/
// tables/globals/functions/segments for one component instance.
func NewMachine(mem *wrtmem.Memory, tables []*wrtmem.Table, globals []wrtvalue.Value, functions []*Function, dataSegs [][]byte, elemSegs [][]wrtvalue.Value, fuel uint64, maxCallDepth int) *Machine {
	return &Machine{
		mem:         mem,
		tables:      tables,
		globals:     globals,
		functions:   functions,
		dataSegs:    dataSegs,
		dataDropped: make([]bool, len(dataSegs)),
		elemSegs:    elemSegs,
		elemDropped: make([]bool, len(elemSegs)),
		fuel:        fuel,
		maxCall:     maxCallDepth,
	}
}

// --- wrtinstr.Context ---

func (m *Machine) Push(v wrtvalue.Value) { m.stack = append(m.stack, v) }
func (m *Machine) Pop() wrtvalue.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}
func (m *Machine) Local(idx uint32) wrtvalue.Value        { return m.curFrame().Locals[idx] }
func (m *Machine) SetLocal(idx uint32, v wrtvalue.Value)  { m.curFrame().Locals[idx] = v }
func (m *Machine) Global(idx uint32) wrtvalue.Value       { return m.globals[idx] }
func (m *Machine) SetGlobal(idx uint32, v wrtvalue.Value) { m.globals[idx] = v }
func (m *Machine) Memory() *wrtmem.Memory                 { return m.mem }
func (m *Machine) Table(idx uint32) *wrtmem.Table         { return m.tables[idx] }

func (m *Machine) DataSegment(idx uint32) ([]byte, error) {
	if m.dataDropped[idx] {
		return nil, wrterror.Trap(wrterror.CodeDataSegmentDropped, "data segment already dropped")
	}
	return m.dataSegs[idx], nil
}
func (m *Machine) DropData(idx uint32) { m.dataDropped[idx] = true }

func (m *Machine) ElemSegment(idx uint32) ([]wrtvalue.Value, error) {
	if m.elemDropped[idx] {
		return nil, wrterror.Trap(wrterror.CodeElementSegmentDropped, "element segment already dropped")
	}
	return m.elemSegs[idx], nil
}
func (m *Machine) DropElem(idx uint32) { m.elemDropped[idx] = true }

func (m *Machine) curFrame() *Frame { return m.frames[len(m.frames)-1] }

// Functions returns the instance's function index space (imports followed
// by locally defined functions), for C12's export-by-name dispatch.
func (m *Machine) Functions() []*Function { return m.functions }

// Depth returns the current call-frame stack depth, for C14's StepOver/
// StepOut (which must compare frame depth across ShouldBreak calls, not
// just inspect the single current Frame each call receives).
func (m *Machine) Depth() int { return len(m.frames) }

// Frames returns the live frame stack, innermost last, for C14's stack
// trace builder.
func (m *Machine) Frames() []*Frame { return m.frames }

var _ wrtinstr.Context = (*Machine)(nil)
