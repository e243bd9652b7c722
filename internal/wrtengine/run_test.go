package wrtengine

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestCall_AddsTwoLocals(t *testing.T) {
	// local.get 0; local.get 1; i32.add
	fn := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type(), i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32Add},
		},
	}
	m := testMachine(t, []*Function{fn}, 1000)

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(2), wrtvalue.S32(3)})
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 5, result.Results[0].AsS32())
}

func TestCall_CallsAnotherFunction(t *testing.T) {
	// callee: local.get 0; local.get 0; i32.mul  (square)
	callee := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpI32Mul},
		},
	}
	// caller: local.get 0, then call callee
	caller := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpCall, Index: 0},
		},
	}
	m := testMachine(t, []*Function{callee, caller}, 1000)

	result, err := m.Call(caller, []wrtvalue.Value{wrtvalue.S32(6)})
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 36, result.Results[0].AsS32())
}

func TestCall_ReturnCallReplacesFrameInPlace(t *testing.T) {
	callee := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpI32Add},
		},
	}
	caller := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpReturnCall, Index: 0},
		},
	}
	m := testMachine(t, []*Function{callee, caller}, 1000)

	result, err := m.Call(caller, []wrtvalue.Value{wrtvalue.S32(9)})
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 18, result.Results[0].AsS32())
	require.Empty(t, m.frames, "tail call must not leave the replaced frame behind")
}

func TestCall_TrapPropagatesAsError(t *testing.T) {
	fn := &Function{
		Type: wrtvalue.FuncType{Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpUnreachable},
		},
	}
	m := testMachine(t, []*Function{fn}, 1000)

	_, err := m.Call(fn, nil)
	require.Error(t, err)
}

func TestCall_DivideByZeroTraps(t *testing.T) {
	fn := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type(), i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32DivS},
		},
	}
	m := testMachine(t, []*Function{fn}, 1000)

	_, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(1), wrtvalue.S32(0)})
	require.Error(t, err)
}

func TestCall_FuelExhaustionPausesAndResumeCompletes(t *testing.T) {
	fn := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type(), i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32Add},
		},
	}
	// local.get costs 1 each; only enough fuel for the first local.get.
	m := testMachine(t, []*Function{fn}, 1)

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(4), wrtvalue.S32(5)})
	require.NoError(t, err)
	require.True(t, result.Paused)
	require.NotNil(t, result.PauseState)

	m.AddFuel(1000)
	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 9, result.Results[0].AsS32())
}

func TestCall_ResumeDoesNotDoubleCountLeftoverFuelAtNonUnitCostOpcode(t *testing.T) {
	// callee: local.get 0; local.get 0; i32.mul (square) — cost 1+1+2 = 4.
	callee := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpI32Mul},
		},
	}
	// caller: local.get 0 (cost 1); call callee (cost 8).
	caller := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpCall, Index: 0},
		},
	}
	// Total cost to run to completion is 1+8+1+1+2 = 13. Fuel 5 pays for the
	// local.get (cost 1) and then can't afford the call (cost 8), pausing
	// with a nonzero leftover of 4 — the non-unit-cost remainder the fix
	// targets (TestCall_FuelExhaustionPausesAndResumeCompletes only ever
	// leaves a leftover of exactly 0, since every opcode it uses costs 1).
	m := testMachine(t, []*Function{callee, caller}, 5)

	result, err := m.Call(caller, []wrtvalue.Value{wrtvalue.S32(6)})
	require.NoError(t, err)
	require.True(t, result.Paused)
	require.EqualValues(t, 4, result.PauseState.Fuel())
	require.Zero(t, m.fuel, "snapshot must zero the live Machine's fuel, or restoreInto's additive grant double-counts the leftover")

	// Grant exactly the remaining 8 needed (13 total - 5 already granted;
	// the leftover 4 pays for the rest) and resume; if the leftover 4 were
	// double-counted this would complete with 4 fuel to spare instead of
	// exactly 0.
	m.AddFuel(8)
	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 36, result.Results[0].AsS32())
	require.Zero(t, m.fuel, "fuel granted across the pause/resume cycle must be spent exactly, not doubled")
}

func TestCall_HostImportedFunctionBridges(t *testing.T) {
	host := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Host: func(args []wrtvalue.Value) ([]wrtvalue.Value, error) {
			return []wrtvalue.Value{wrtvalue.S32(args[0].AsS32() * 10)}, nil
		},
	}
	caller := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpCall, Index: 0},
		},
	}
	m := testMachine(t, []*Function{host, caller}, 1000)

	result, err := m.Call(caller, []wrtvalue.Value{wrtvalue.S32(4)})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 40, result.Results[0].AsS32())
}

func TestCall_HostImportErrorPropagates(t *testing.T) {
	host := &Function{
		Type: wrtvalue.FuncType{},
		Host: func(args []wrtvalue.Value) ([]wrtvalue.Value, error) {
			return nil, wrterror.Trap(wrterror.CodeUnreachable, "host handler failed")
		},
	}
	caller := &Function{
		Type: wrtvalue.FuncType{},
		Body: []Instr{{Op: wrtinstr.OpCall, Index: 0}},
	}
	m := testMachine(t, []*Function{host, caller}, 1000)

	_, err := m.Call(caller, nil)
	require.Error(t, err)
}

type breakOnce struct {
	broken bool
}

func (b *breakOnce) ShouldBreak(frame *Frame) bool {
	if b.broken {
		return false
	}
	b.broken = true
	return true
}

func TestCall_DebuggerBreakpointPauses(t *testing.T) {
	fn := &Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
		},
	}
	m := testMachine(t, []*Function{fn}, 1000)
	m.Debug = &breakOnce{}

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(7)})
	require.NoError(t, err)
	require.True(t, result.Paused)

	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 7, result.Results[0].AsS32())
}
