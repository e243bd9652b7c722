package wrtasync

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

func testMachine(t *testing.T, functions []*wrtengine.Function) *wrtengine.Machine {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 2*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	mem, err := wrtmem.NewMemory(ctx, wrtcap.CrateRuntime, 1, 1, wrtcap.ProfileASILD)
	require.NoError(t, err)
	return wrtengine.NewMachine(mem, nil, nil, functions, nil, nil, 0, 128)
}

// addLocalsFn is a 3-instruction body: local.get 0; local.get 1; i32.add.
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
