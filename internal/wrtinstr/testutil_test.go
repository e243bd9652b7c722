package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

// fakeContext is a minimal Context for exercising opcode functions without
// the full stackless engine (C11).
type fakeContext struct {
	stack    []wrtvalue.Value
	locals   []wrtvalue.Value
	globals  []wrtvalue.Value
	mem      *wrtmem.Memory
	tables   []*wrtmem.Table
	data     map[uint32][]byte
	droppedD map[uint32]bool
	elems    map[uint32][]wrtvalue.Value
	droppedE map[uint32]bool
}

func newFakeContext(t *testing.T) *fakeContext {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 2*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	mem, err := wrtmem.NewMemory(ctx, wrtcap.CrateRuntime, 1, 1, wrtcap.ProfileASILD)
	require.NoError(t, err)
	return &fakeContext{
		locals:   make([]wrtvalue.Value, 8),
		globals:  make([]wrtvalue.Value, 8),
		mem:      mem,
		tables:   []*wrtmem.Table{wrtmem.NewTable(wrtmem.RefTypeFunc, 4, 8)},
		data:     map[uint32][]byte{},
		droppedD: map[uint32]bool{},
		elems:    map[uint32][]wrtvalue.Value{},
		droppedE: map[uint32]bool{},
	}
}

func (f *fakeContext) Push(v wrtvalue.Value) { f.stack = append(f.stack, v) }
func (f *fakeContext) Pop() wrtvalue.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}
func (f *fakeContext) Local(idx uint32) wrtvalue.Value          { return f.locals[idx] }
func (f *fakeContext) SetLocal(idx uint32, v wrtvalue.Value)    { f.locals[idx] = v }
func (f *fakeContext) Global(idx uint32) wrtvalue.Value         { return f.globals[idx] }
func (f *fakeContext) SetGlobal(idx uint32, v wrtvalue.Value)   { f.globals[idx] = v }
func (f *fakeContext) Memory() *wrtmem.Memory                   { return f.mem }
func (f *fakeContext) Table(idx uint32) *wrtmem.Table           { return f.tables[idx] }

func (f *fakeContext) DataSegment(idx uint32) ([]byte, error) {
	if f.droppedD[idx] {
		return nil, wrterror.Trap(wrterror.CodeDataSegmentDropped, "data segment dropped")
	}
	return f.data[idx], nil
}
func (f *fakeContext) DropData(idx uint32) { f.droppedD[idx] = true }

func (f *fakeContext) ElemSegment(idx uint32) ([]wrtvalue.Value, error) {
	if f.droppedE[idx] {
		return nil, wrterror.Trap(wrterror.CodeElementSegmentDropped, "element segment dropped")
	}
	return f.elems[idx], nil
}
func (f *fakeContext) DropElem(idx uint32) { f.droppedE[idx] = true }
