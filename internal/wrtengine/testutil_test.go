package wrtengine

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func testMachine(t *testing.T, functions []*Function, fuel uint64) *Machine {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 2*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	mem, err := wrtmem.NewMemory(ctx, wrtcap.CrateRuntime, 1, 1, wrtcap.ProfileASILD)
	require.NoError(t, err)
	tables := []*wrtmem.Table{wrtmem.NewTable(wrtmem.RefTypeFunc, 4, 8)}
	globals := make([]wrtvalue.Value, 4)
	return NewMachine(mem, tables, globals, functions, nil, nil, fuel, 128)
}

func i32Type() wrtvalue.ValueType { return wrtvalue.ValueType{Kind: wrtvalue.KindS32} }
