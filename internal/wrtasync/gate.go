package wrtasync

import "github.com/pulseengine/wrt-go/internal/wrtengine"

// instructionGate implements wrtengine.DebugHook to cap the raw instruction
// count executed within one scheduler step, independent of fuel (spec §6
// lists max_instructions_per_step alongside max_fuel_per_step as distinct
// bounds — fuel is a weighted cost, this is a flat count). Composed ahead
// of whatever DebugHook a caller already attached (C14's Debugger, most
// commonly) rather than replacing it, so a step-slice budget and an active
// debugger session coexist.
type instructionGate struct {
	remaining uint64
	inner     wrtengine.DebugHook
}

func (g *instructionGate) ShouldBreak(frame *wrtengine.Frame) bool {
	if g.inner != nil && g.inner.ShouldBreak(frame) {
		return true
	}
	if g.remaining == 0 {
		return true
	}
	g.remaining--
	return false
}

// withInstructionGate installs a gate bounding m to at most n further
// instructions, returning a restore func that puts back whatever hook was
// attached before.
func withInstructionGate(m *wrtengine.Machine, n uint64) (restore func()) {
	prev := m.Debug
	m.Debug = &instructionGate{remaining: n, inner: prev}
	return func() { m.Debug = prev }
}
