package wrtsnapshot

import (
	"encoding/binary"

	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// FrameState is the persisted form of one wrtengine.Frame: a function
// index (resolved against the functions slice a caller supplies) rather
// than the live *Function pointer PauseState carries, since a pointer has
// no meaning once written to disk and read back in another process.
type FrameState struct {
	FuncIdx uint32
	Locals  []wrtvalue.Value
	PC      int
}

// Snapshot is the decoded, in-memory form of a persisted execution state —
// spec §6's "state-snapshot section ... carrying ... subsections for
// stack, frames, globals, and memory."
type Snapshot struct {
	Fuel        uint64
	Stack       []wrtvalue.Value
	Frames      []FrameState
	Globals     []wrtvalue.Value
	MemoryPages uint32
	Memory      []byte
}

// Capture builds a Snapshot from a Machine's PauseState (as returned by
// Machine.Call/Resume when RunResult.Paused is true), plus the Machine's
// globals and full memory image. funcIndex is built the same way C14's
// Debugger.Attach builds one, from the instance's function index space —
// it turns each frame's *Function back into a stable index, since a
// pointer has no meaning once written to disk and read back in another
// process.
func Capture(state *wrtengine.PauseState, globals []wrtvalue.Value, mem *wrtmem.Memory, funcIndex map[*wrtengine.Function]uint32) (*Snapshot, error) {
	frames := state.Frames()
	fs := make([]FrameState, len(frames))
	for i, f := range frames {
		idx, ok := funcIndex[f.Func]
		if !ok {
			return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeSnapshotCorrupt, "frame's function is not present in the supplied function index")
		}
		fs[i] = FrameState{FuncIdx: idx, Locals: append([]wrtvalue.Value(nil), f.Locals...), PC: f.PC}
	}

	pages := mem.SizePages()
	data, err := mem.Read(0, pages*wrtmem.PageSize)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Fuel:        state.Fuel(),
		Stack:       append([]wrtvalue.Value(nil), state.Stack()...),
		Frames:      fs,
		Globals:     append([]wrtvalue.Value(nil), globals...),
		MemoryPages: pages,
		Memory:      data,
	}, nil
}

// Marshal renders s as the section-framed byte format: one section per
// subsystem, concatenated in Meta/Stack/Frames/Globals/Memory order. Stack
// and Frames payloads are left uncompressed (value-encoded data rarely
// repeats long byte runs); Memory uses RLE, since guest linear memory is
// typically mostly zero-filled.
func (s *Snapshot) Marshal() []byte {
	meta := make([]byte, 0, 16)
	meta = binary.LittleEndian.AppendUint64(meta, s.Fuel)
	meta = binary.LittleEndian.AppendUint32(meta, uint32(len(s.Frames)))
	meta = binary.LittleEndian.AppendUint32(meta, s.MemoryPages)

	stack := encodeValueSlice(nil, s.Stack)

	frames := make([]byte, 0)
	frames = binary.LittleEndian.AppendUint32(frames, uint32(len(s.Frames)))
	for _, f := range s.Frames {
		frames = binary.LittleEndian.AppendUint32(frames, f.FuncIdx)
		frames = binary.LittleEndian.AppendUint32(frames, uint32(f.PC))
		frames = encodeValueSlice(frames, f.Locals)
	}

	globals := encodeValueSlice(nil, s.Globals)

	out := encodeSection(SectionMeta, CompressionNone, meta)
	out = append(out, encodeSection(SectionStack, CompressionNone, stack)...)
	out = append(out, encodeSection(SectionFrames, CompressionNone, frames)...)
	out = append(out, encodeSection(SectionGlobals, CompressionNone, globals)...)
	out = append(out, encodeSection(SectionMemory, CompressionRLE, s.Memory)...)
	return out
}

// Unmarshal parses the byte format Marshal produces, tolerating the
// sections arriving in any order (each is self-describing) but requiring
// all five to be present exactly once.
func Unmarshal(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	seen := make(map[SectionType]bool, 5)

	for len(data) > 0 {
		payload, section, consumed, err := decodeSection(data)
		if err != nil {
			return nil, err
		}
		data = data[consumed:]
		if seen[section] {
			return nil, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "duplicate snapshot section")
		}
		seen[section] = true

		switch section {
		case SectionMeta:
			if len(payload) < 16 {
				return nil, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "meta section truncated")
			}
			s.Fuel = binary.LittleEndian.Uint64(payload[0:8])
			s.MemoryPages = binary.LittleEndian.Uint32(payload[12:16])
		case SectionStack:
			d := &valueDecoder{data: payload}
			if s.Stack, err = d.valueSlice(); err != nil {
				return nil, err
			}
		case SectionFrames:
			d := &valueDecoder{data: payload}
			n, err := d.u32()
			if err != nil {
				return nil, err
			}
			s.Frames = make([]FrameState, n)
			for i := range s.Frames {
				if s.Frames[i].FuncIdx, err = d.u32(); err != nil {
					return nil, err
				}
				pc, err := d.u32()
				if err != nil {
					return nil, err
				}
				s.Frames[i].PC = int(pc)
				if s.Frames[i].Locals, err = d.valueSlice(); err != nil {
					return nil, err
				}
			}
		case SectionGlobals:
			d := &valueDecoder{data: payload}
			if s.Globals, err = d.valueSlice(); err != nil {
				return nil, err
			}
		case SectionMemory:
			s.Memory = payload
		}
	}

	for _, want := range []SectionType{SectionMeta, SectionStack, SectionFrames, SectionGlobals, SectionMemory} {
		if !seen[want] {
			return nil, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "snapshot missing a required section")
		}
	}
	return s, nil
}

// RestoreMemory grows mem (if needed) to s.MemoryPages and writes s.Memory
// into it starting at offset zero. mem must belong to the same capability
// context/profile the original memory was created under — Snapshot carries
// no capability metadata of its own, matching spec §5's rule that the
// capability context is shared infrastructure, not part of one context's
// suspendable state.
func (s *Snapshot) RestoreMemory(mem *wrtmem.Memory) error {
	if s.MemoryPages > mem.SizePages() {
		if mem.Grow(s.MemoryPages-mem.SizePages()) < 0 {
			return wrterror.New(wrterror.CategoryMemory, wrterror.CodeMemoryGrowFailed, "cannot grow memory to the snapshot's page count")
		}
	}
	return mem.Write(0, s.Memory)
}

// RestoreGlobals writes s.Globals into m, one SetGlobal call per index —
// m's global count must already match len(s.Globals).
func (s *Snapshot) RestoreGlobals(m *wrtengine.Machine) {
	for i, v := range s.Globals {
		m.SetGlobal(uint32(i), v)
	}
}

// RestorePauseState rebuilds a *wrtengine.PauseState from s, resolving each
// frame's function index against functions (the same function index space
// funcIndex in Capture was built from). The returned state is handed to
// Machine.Resume to continue execution from exactly the point it was
// captured.
func (s *Snapshot) RestorePauseState(functions []*wrtengine.Function) (*wrtengine.PauseState, error) {
	frames := make([]*wrtengine.Frame, len(s.Frames))
	for i, fs := range s.Frames {
		if int(fs.FuncIdx) >= len(functions) {
			return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeSnapshotCorrupt, "frame references a function index outside the supplied function space")
		}
		frames[i] = &wrtengine.Frame{Func: functions[fs.FuncIdx], Locals: fs.Locals, PC: fs.PC}
	}
	return wrtengine.NewPauseState(frames, s.Stack, s.Fuel), nil
}
