package wrtengine

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
)

// execute runs one instruction against frame, dispatching control-transfer
// opcodes inline (they need the frame/call stack this package owns) and
// everything else through internal/wrtinstr's pure opcode functions over m
// as a wrtinstr.Context.
func (m *Machine) execute(frame *Frame, instr Instr) error {
	op := instr.Op
	if !wrtinstr.IsControl(op) {
		return m.executeFlat(instr)
	}

	switch op {
	case wrtinstr.OpUnreachable:
		return wrterror.Trap(wrterror.CodeUnreachable, "unreachable instruction executed")
	case wrtinstr.OpNop, wrtinstr.OpBlock, wrtinstr.OpLoop, wrtinstr.OpElse, wrtinstr.OpEnd:
		return nil // pure labels in this flattened representation; no runtime effect
	case wrtinstr.OpIf:
		cond := m.Pop()
		if cond.AsU32() == 0 {
			frame.PC = instr.Br
		}
		return nil
	case wrtinstr.OpBr:
		frame.PC = instr.Br
		return nil
	case wrtinstr.OpBrIf:
		cond := m.Pop()
		if cond.AsU32() != 0 {
			frame.PC = instr.Br
		}
		return nil
	case wrtinstr.OpBrTable:
		idx := int(m.Pop().AsU32())
		if idx < 0 || idx >= len(instr.BrTable)-1 {
			idx = len(instr.BrTable) - 1 // default target, last entry
		}
		frame.PC = instr.BrTable[idx]
		return nil
	case wrtinstr.OpReturn:
		m.returnFromFrame()
		return nil
	case wrtinstr.OpCall:
		return m.pushCall(m.functions[instr.Index])
	case wrtinstr.OpReturnCall:
		return m.tailCall(m.functions[instr.Index])
	case wrtinstr.OpCallIndirect:
		return m.callIndirect(instr)
	case wrtinstr.OpReturnCallIndirect:
		fn, err := m.resolveIndirect(instr)
		if err != nil {
			return err
		}
		return m.tailCall(fn)
	default:
		return wrterror.Trap(wrterror.CodeUnreachable, "unhandled control opcode")
	}
}

// executeFlat dispatches a non-control opcode to the matching wrtinstr
// function, translating Instr's pre-resolved immediates into that
// function's explicit arguments.
func (m *Machine) executeFlat(instr Instr) error {
	op := instr.Op
	switch {
	case isNumeric(op):
		return wrtinstr.Numeric(m, op)
	case op == wrtinstr.OpI32Load || op == wrtinstr.OpI64Load:
		return wrtinstr.Load(m, op, instr.MemArg)
	case op == wrtinstr.OpI32Store || op == wrtinstr.OpI64Store:
		return wrtinstr.Store(m, op, instr.MemArg)
	case op == wrtinstr.OpMemorySize:
		return wrtinstr.MemorySize(m)
	case op == wrtinstr.OpMemoryGrow:
		return wrtinstr.MemoryGrow(m)
	case op == wrtinstr.OpMemoryFill:
		return wrtinstr.MemoryFill(m)
	case op == wrtinstr.OpMemoryCopy:
		return wrtinstr.MemoryCopy(m)
	case op == wrtinstr.OpMemoryInit:
		return wrtinstr.MemoryInit(m, instr.Index)
	case op == wrtinstr.OpDataDrop:
		return wrtinstr.DataDrop(m, instr.Index)
	case op == wrtinstr.OpLocalGet:
		return wrtinstr.LocalGet(m, instr.Index)
	case op == wrtinstr.OpLocalSet:
		return wrtinstr.LocalSet(m, instr.Index)
	case op == wrtinstr.OpLocalTee:
		return wrtinstr.LocalTee(m, instr.Index)
	case op == wrtinstr.OpGlobalGet:
		return wrtinstr.GlobalGet(m, instr.Index)
	case op == wrtinstr.OpGlobalSet:
		return wrtinstr.GlobalSet(m, instr.Index)
	case op == wrtinstr.OpDrop:
		return wrtinstr.Drop(m)
	case op == wrtinstr.OpSelect:
		return wrtinstr.Select(m)
	case op == wrtinstr.OpRefNull:
		return wrtinstr.RefNull(m, instr.RefKind)
	case op == wrtinstr.OpRefIsNull:
		return wrtinstr.RefIsNull(m)
	case op == wrtinstr.OpRefFunc:
		return wrtinstr.RefFunc(m, instr.Index)
	case op == wrtinstr.OpTableGet:
		return wrtinstr.TableGet(m, instr.Index)
	case op == wrtinstr.OpTableSet:
		return wrtinstr.TableSet(m, instr.Index)
	case op == wrtinstr.OpTableInit:
		return wrtinstr.TableInit(m, instr.Index, instr.TableIdx2)
	case op == wrtinstr.OpElemDrop:
		return wrtinstr.ElemDrop(m, instr.Index)
	case op == wrtinstr.OpTableCopy:
		return wrtinstr.TableCopy(m, instr.Index, instr.TableIdx2)
	case op == wrtinstr.OpTableGrow:
		return wrtinstr.TableGrow(m, instr.Index)
	case op == wrtinstr.OpTableFill:
		return wrtinstr.TableFill(m, instr.Index)
	case op == wrtinstr.OpTableSize:
		return wrtinstr.TableSize(m, instr.Index)
	default:
		return wrterror.Trap(wrterror.CodeUnreachable, "unknown opcode")
	}
}

func isNumeric(op Opcode) bool {
	return op <= wrtinstr.OpI64TruncSatF64S
}

func (m *Machine) callIndirect(instr Instr) error {
	fn, err := m.resolveIndirect(instr)
	if err != nil {
		return err
	}
	return m.pushCall(fn)
}

func (m *Machine) resolveIndirect(instr Instr) (*Function, error) {
	idx := m.Pop().AsU32()
	v, err := m.tables[instr.TableIdx2].Get(idx)
	if err != nil {
		return nil, err
	}
	if v.IsNullFuncRef() {
		return nil, wrterror.Trap(wrterror.CodeInvalidTableAccess, "call_indirect through a null funcref")
	}
	fn := m.functions[v.AsU32()]
	if !fn.Type.Matches(instr.FuncType) {
		return nil, wrterror.Trap(wrterror.CodeIndirectCallTypeMismatch, "call_indirect signature mismatch")
	}
	return fn, nil
}
