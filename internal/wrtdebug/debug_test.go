package wrtdebug

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func i32Type() wrtvalue.ValueType { return wrtvalue.ValueType{Kind: wrtvalue.KindS32} }

func testMachine(t *testing.T, functions []*wrtengine.Function, fuel uint64) *wrtengine.Machine {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 2*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	mem, err := wrtmem.NewMemory(ctx, wrtcap.CrateRuntime, 1, 1, wrtcap.ProfileASILD)
	require.NoError(t, err)
	return wrtengine.NewMachine(mem, nil, nil, functions, nil, nil, fuel, 128)
}

func addLocalsFn() *wrtengine.Function {
	return &wrtengine.Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type(), i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []wrtengine.Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32Add},
		},
	}
}

func TestDebugger_BreakpointPausesAtExactLocation(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1000)

	d := New()
	d.Attach(m)
	d.AddBreakpoint(0, 2, Condition{Kind: ConditionAlways})

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(3), wrtvalue.S32(4)})
	require.NoError(t, err)
	require.True(t, result.Paused)

	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.EqualValues(t, 7, result.Results[0].AsS32())
}

func TestDebugger_StepInstructionPausesEveryStep(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1000)

	d := New()
	d.Attach(m)
	d.SetAction(StepInstruction)

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(1), wrtvalue.S32(2)})
	require.NoError(t, err)
	require.True(t, result.Paused)

	steps := 1
	for result.Paused {
		result, err = m.Resume(result.PauseState)
		require.NoError(t, err)
		steps++
		if steps > 10 {
			t.Fatal("single-step never completed")
		}
	}
	require.EqualValues(t, 3, result.Results[0].AsS32())
	// Three pause points for a 3-instruction body: before the second
	// local.get, before i32.add, and before the implicit return once the
	// body is exhausted (the first instruction runs before any pause).
	// steps counts the Call plus the three Resumes, the last of which
	// completes the call.
	require.Equal(t, 4, steps)
}

func doubleFn() *wrtengine.Function {
	return &wrtengine.Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []wrtengine.Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpI32Add},
		},
	}
}

func callerCallingDoubleFn() *wrtengine.Function {
	return &wrtengine.Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32Type(), i32Type()}, Results: []wrtvalue.ValueType{i32Type()}},
		Body: []wrtengine.Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpCall, Index: 0}, // double(local0)
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32Add},
		},
	}
}

func TestDebugger_StepOverSkipsNestedCall(t *testing.T) {
	callee := doubleFn()
	caller := callerCallingDoubleFn()
	m := testMachine(t, []*wrtengine.Function{callee, caller}, 1000)

	d := New()
	d.Attach(m)
	id := d.AddBreakpoint(1, 1, Condition{Kind: ConditionAlways}) // caller's OpCall

	result, err := m.Call(caller, []wrtvalue.Value{wrtvalue.S32(5), wrtvalue.S32(100)})
	require.NoError(t, err)
	require.True(t, result.Paused, "breakpoint at the call instruction")
	require.NoError(t, d.RemoveBreakpoint(id))

	d.SetAction(StepOver)
	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.True(t, result.Paused, "step-over must stop again once control returns to the caller")

	trace := d.Trace()
	require.Len(t, trace.Frames, 1, "must be back in the caller, not still inside the callee")
	require.EqualValues(t, 2, trace.Frames[0].PC, "paused right before local.get 1, after the skipped call")

	d.SetAction(Continue)
	result, err = m.Resume(result.PauseState)
	require.NoError(t, err)
	require.False(t, result.Paused)
	require.EqualValues(t, 110, result.Results[0].AsS32()) // double(5) + 100
}

func TestDebugger_HitCountConditionBreaksWhenCountReached(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1000)

	d := New()
	d.Attach(m)
	d.AddBreakpoint(0, 0, Condition{Kind: ConditionHitCount, HitCount: 1})

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(5), wrtvalue.S32(6)})
	require.NoError(t, err)
	require.True(t, result.Paused, "hit count 1 satisfied on first visit")
}

func TestDebugger_RemoveBreakpointStopsPausing(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1000)

	d := New()
	d.Attach(m)
	id := d.AddBreakpoint(0, 0, Condition{Kind: ConditionAlways})
	require.NoError(t, d.RemoveBreakpoint(id))

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(1), wrtvalue.S32(1)})
	require.NoError(t, err)
	require.False(t, result.Paused)
}

func TestDebugger_RemoveUnknownBreakpointErrors(t *testing.T) {
	d := New()
	require.Error(t, d.RemoveBreakpoint(999))
}

func TestDebugger_DetachStopsBreaking(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1000)

	d := New()
	d.Attach(m)
	d.AddBreakpoint(0, 0, Condition{Kind: ConditionAlways})
	d.Detach()

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(1), wrtvalue.S32(1)})
	require.NoError(t, err)
	require.False(t, result.Paused)
}

func TestBuildTrace_ReportsCurrentFrame(t *testing.T) {
	fn := addLocalsFn()
	m := testMachine(t, []*wrtengine.Function{fn}, 1)

	d := New()
	d.Attach(m)

	result, err := m.Call(fn, []wrtvalue.Value{wrtvalue.S32(1), wrtvalue.S32(2)})
	require.NoError(t, err)
	require.True(t, result.Paused, "fuel=1 exhausts after the first local.get")

	trace := d.Trace()
	require.Len(t, trace.Frames, 1)
	require.True(t, trace.Frames[0].HasFunc)
	require.EqualValues(t, 0, trace.Frames[0].FuncIdx)
	require.Contains(t, trace.String(), "func0@pc")
}
