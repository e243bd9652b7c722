package wrtengine

import "github.com/pulseengine/wrt-go/internal/wrtvalue"

// PauseState captures everything Run needs to resume an in-flight call: the
// frame stack (each frame's locals and program counter), the shared value
// stack, and the remaining fuel at the moment of suspension. Globals,
// memory, and tables are not copied — they live on Machine itself and are
// mutated in place, so pausing and resuming the same Machine sees them
// exactly as execution left them.
type PauseState struct {
	frames []*Frame
	stack  []wrtvalue.Value
	fuel   uint64
}

// snapshot captures m's current frame/value stacks and remaining fuel so
// Resume can later continue from exactly this instruction boundary, then
// zeroes m.fuel. Pausing is the only way m.fuel's unspent remainder moves
// into a PauseState; leaving it on m as well would let restoreInto's
// additive m.fuel += s.fuel double-count it on the very next Resume on the
// same live Machine (the common case: runtime.go's auto-resume loop and
// wrtasync's Step both call AddFuel then Resume on the same Machine
// repeatedly). Frames are copied shallowly (each *Frame is reused, not
// deep-cloned) since a paused Machine does not keep executing concurrently
// with its snapshot.
func (m *Machine) snapshot() *PauseState {
	s := &PauseState{
		frames: append([]*Frame(nil), m.frames...),
		stack:  append([]wrtvalue.Value(nil), m.stack...),
		fuel:   m.fuel,
	}
	m.fuel = 0
	return s
}

// restoreInto installs s into m so the next run() call continues from
// exactly the paused instruction boundary. Fuel is additive, not
// overwriting: s.fuel (whatever remained unspent at the pause point) is
// added to m.fuel rather than replacing it, so a caller that already called
// AddFuel on this same Machine before resuming (or a freshly reconstructed
// Machine, fuel 0 from NewMachine) ends up with exactly the sum of the two
// grants — correct because snapshot() above zeroes m.fuel at pause time, so
// there is no longer a live leftover for this add to double up against.
func (s *PauseState) restoreInto(m *Machine) {
	m.frames = s.frames
	m.stack = s.stack
	m.fuel += s.fuel
}

// AddFuel grants m additional fuel, for a caller resuming a paused Machine
// past the point where its original budget ran out.
func (m *Machine) AddFuel(n uint64) { m.fuel += n }

// NewPauseState reconstructs a PauseState from its constituent parts,
// exported for internal/wrtsnapshot: a snapshot loaded back from persisted
// bytes (spec §6 "Persisted state") was never produced by this process's
// own snapshot(), so there is no *PauseState to hand back other than one
// built from the deserialized frames/stack/fuel directly.
func NewPauseState(frames []*Frame, stack []wrtvalue.Value, fuel uint64) *PauseState {
	return &PauseState{frames: frames, stack: stack, fuel: fuel}
}

// Frames, Stack, and Fuel expose a PauseState's contents for
// internal/wrtsnapshot to persist — the only consumer outside this package
// that needs to read a pause point apart from resuming it directly.
func (s *PauseState) Frames() []*Frame        { return s.frames }
func (s *PauseState) Stack() []wrtvalue.Value { return s.stack }
func (s *PauseState) Fuel() uint64            { return s.fuel }
