package wrtdebug

import (
	"fmt"
	"strings"

	"github.com/pulseengine/wrt-go/internal/wrtengine"
)

// StackFrame is one entry of a StackTrace: the function index (when known)
// and program counter of a live call frame.
type StackFrame struct {
	FuncIdx uint32
	HasFunc bool
	PC      int
	Depth   int
}

// StackTrace is an ordered list of StackFrame, outermost call last —
// grounded on wrt-debug/src/stack_trace.rs's StackTrace/StackTraceBuilder,
// generalized from that package's fixed-capacity array (a no_std
// constraint this runtime does not share) to a plain slice.
type StackTrace struct {
	Frames []StackFrame
}

// BuildTrace walks m's live frame stack (innermost first) into a
// StackTrace, resolving each frame's function index via funcIndex when
// available. Mirrors wasmdebug.ErrorBuilder's walk of ce.frames in the
// teacher, generalized to this engine's heap frame stack instead of a
// native Go call stack.
func BuildTrace(m *wrtengine.Machine, funcIndex map[*wrtengine.Function]uint32) StackTrace {
	live := m.Frames()
	frames := make([]StackFrame, 0, len(live))
	for i := len(live) - 1; i >= 0; i-- {
		f := live[i]
		sf := StackFrame{PC: f.PC, Depth: len(live) - 1 - i}
		if idx, ok := funcIndex[f.Func]; ok {
			sf.FuncIdx, sf.HasFunc = idx, true
		}
		frames = append(frames, sf)
	}
	return StackTrace{Frames: frames}
}

// Trace builds a StackTrace from the Debugger's own attached Machine and
// function index, the common case where a caller already has a Debugger
// handy (e.g. formatting a trap raised while debugging).
func (d *Debugger) Trace() StackTrace {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.machine == nil {
		return StackTrace{}
	}
	return BuildTrace(d.machine, d.funcIndex)
}

// String renders the trace one frame per line, "#<depth> func<idx>@pc<pc>"
// or "#<depth> pc<pc>" when the function index is unknown — deliberately
// plain text rather than the teacher's hex-address format, since this
// runtime indexes functions rather than native code addresses.
func (t StackTrace) String() string {
	var b strings.Builder
	for _, f := range t.Frames {
		if f.HasFunc {
			fmt.Fprintf(&b, "#%d func%d@pc%d\n", f.Depth, f.FuncIdx, f.PC)
		} else {
			fmt.Fprintf(&b, "#%d pc%d\n", f.Depth, f.PC)
		}
	}
	return b.String()
}
