// Package wrtengine implements the stackless execution engine of spec §4.6:
// a heap-allocated frame stack and shared value stack driven by an explicit
// step loop rather than recursive Go calls, so execution can suspend at any
// instruction boundary (fuel exhaustion, a debugger breakpoint) and resume
// later from saved state.
//
// Grounded on tetratelabs-wazero's internal/engine/interpreter/
// interpreter.go: callEngine's frames slice with explicit pushFrame/
// popFrame, the pc-indexed instruction loop in callNativeFunc, and the
// panic/recover trap boundary in moduleEngine.Call (a single recover point
// converts any panic into a structured error, walking every live frame to
// build the trace) — generalized here to internal/wrterror's trap
// convention and to an explicit heap frame rather than a Go call stack.
package wrtengine

import (
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Instr is one compiled instruction: an opcode plus whichever immediate
// fields it needs. Control-flow targets (Br/BrIf/If's else-target/BrTable)
// are pre-resolved absolute program counters, the same flattening
// tetratelabs-wazero's own wazeroir compiler performs ahead of execution —
// this engine never walks nested block structure at run time.
type Instr struct {
	Op Opcode

	// Index immediates: local/global/func/table/elem/data index depending
	// on Op. TableIdx2 carries a second table index for table.copy.
	Index     uint32
	TableIdx2 uint32

	MemArg wrtinstr.MemArg

	// RefKind is ref.null's operand type.
	RefKind wrtvalue.Kind

	// Br is the absolute PC a taken branch jumps to. For If, it is the
	// target used when the popped condition is zero (the "else" or "end"
	// program point, whichever the compiler resolved).
	Br int

	// BrTable holds br_table's jump targets; the last entry is the default.
	BrTable []int

	// FuncType is call_indirect's declared signature, checked against the
	// resolved function's actual type.
	FuncType wrtvalue.FuncType
}

// Opcode extends wrtinstr.Opcode's numbering space unchanged — the engine
// reuses it directly rather than redefining a parallel enum, since
// execute.go's execute/executeFlat switch on the same wrtinstr constants.
type Opcode = wrtinstr.Opcode
