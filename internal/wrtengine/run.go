package wrtengine

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// RunResult is what Run returns on any non-error exit.
type RunResult struct {
	Results []wrtvalue.Value
	Paused  bool
	// PauseState is set iff Paused — Resume(state) continues from exactly
	// this point, per spec §4.6 "suspend/resume via saved state."
	PauseState *PauseState
}

// Call starts execution of fn with args, running until the function
// returns, pauses (fuel exhaustion or a debugger breakpoint), or traps.
func (m *Machine) Call(fn *Function, args []wrtvalue.Value) (result RunResult, err error) {
	if len(m.frames) != 0 {
		return RunResult{}, wrterror.FatalProcess(wrterror.CategoryResource, wrterror.CodeCallStackExhausted, "Call invoked on a non-empty frame stack; use Resume instead")
	}
	if fn.Host != nil {
		results, err := fn.Host(args)
		if err != nil {
			return RunResult{}, err
		}
		return RunResult{Results: results}, nil
	}
	m.frames = append(m.frames, newFrame(fn, args))
	return m.run()
}

// Resume continues execution from a previously paused state, spec §4.6's
// suspend/resume contract.
func (m *Machine) Resume(state *PauseState) (RunResult, error) {
	state.restoreInto(m)
	return m.run()
}

// run is the step loop: verify-not-trapped, deduct fuel, fetch/advance PC,
// execute, continue/branch/call/return/trap. Grounded on
// moduleEngine.Call's panic/recover boundary — a single recover here
// converts any panic (a trap raised deep in wrtinstr or an unexpected
// index-out-of-range bug) into a *wrterror.Error, collecting the live
// frames into the trap's context exactly like wasmdebug.ErrorBuilder walks
// ce.frames in the teacher.
func (m *Machine) run() (result RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if trapErr, ok := r.(*wrterror.Error); ok {
				err = trapErr
				return
			}
			err = wrterror.FatalInstance(wrterror.CategoryResource, wrterror.CodeUnreachable, "unexpected panic during execution")
		}
	}()

	for len(m.frames) > 0 {
		frame := m.curFrame()
		if m.Debug != nil && m.Debug.ShouldBreak(frame) {
			return RunResult{Paused: true, PauseState: m.snapshot()}, nil
		}
		if frame.PC >= len(frame.Func.Body) {
			m.returnFromFrame()
			continue
		}
		instr := frame.Func.Body[frame.PC]
		cost := costOf(instr.Op)
		switch instr.Op {
		case wrtinstr.OpMemoryFill, wrtinstr.OpMemoryCopy, wrtinstr.OpMemoryInit,
			wrtinstr.OpTableInit, wrtinstr.OpTableCopy, wrtinstr.OpTableFill:
			// bulk ops pay for their length operand, which is on top of the stack
			if len(m.stack) > 0 {
				cost = wrtinstr.FuelCostBulk(m.stack[len(m.stack)-1].AsU32())
			}
		}
		if m.fuel < cost {
			return RunResult{Paused: true, PauseState: m.snapshot()}, nil
		}
		m.fuel -= cost
		frame.PC++
		if err := m.execute(frame, instr); err != nil {
			return RunResult{}, err
		}
	}
	return RunResult{Results: append([]wrtvalue.Value(nil), m.stack...)}, nil
}

// returnFromFrame pops the top frame when its instruction stream is
// exhausted (an implicit return at the end of the function body). Results
// are already on the shared value stack in the correct order, so there is
// nothing further to move.
func (m *Machine) returnFromFrame() {
	m.frames = m.frames[:len(m.frames)-1]
}

func (m *Machine) pushCall(fn *Function) error {
	if fn.Host != nil {
		return m.callHost(fn)
	}
	if len(m.frames) >= m.maxCall {
		return wrterror.Trap(wrterror.CodeCallStackExhausted, "call stack depth exceeded")
	}
	params := m.popN(len(fn.Type.Params))
	m.frames = append(m.frames, newFrame(fn, params))
	return nil
}

// callHost pops fn's declared parameters, invokes its host handler, and
// pushes the results — no frame is ever pushed for a host function.
func (m *Machine) callHost(fn *Function) error {
	params := m.popN(len(fn.Type.Params))
	results, err := fn.Host(params)
	if err != nil {
		return err
	}
	for _, r := range results {
		m.Push(r)
	}
	return nil
}

// tailCall replaces the current frame in place rather than growing the
// frame stack, spec §4.6 "return_call performs an in-place frame
// replacement rather than growing the call stack" — the defining property
// that makes tail calls not exhaust the call-depth budget. Tail-calling a
// host function has nothing to replace the frame with: callHost runs, then
// the current frame returns as if the callee's results were the caller's.
func (m *Machine) tailCall(fn *Function) error {
	if fn.Host != nil {
		if err := m.callHost(fn); err != nil {
			return err
		}
		m.returnFromFrame()
		return nil
	}
	params := m.popN(len(fn.Type.Params))
	m.frames[len(m.frames)-1] = newFrame(fn, params)
	return nil
}

func (m *Machine) popN(n int) []wrtvalue.Value {
	start := len(m.stack) - n
	out := append([]wrtvalue.Value(nil), m.stack[start:]...)
	m.stack = m.stack[:start]
	return out
}

func costOf(op Opcode) uint64 {
	return wrtinstr.FuelCost(op)
}
