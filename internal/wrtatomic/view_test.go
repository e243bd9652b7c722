package wrtatomic

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) wrtcap.Provider {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 64, wrtcap.VerificationStandard))
	ctx.Start()
	p, err := wrtcap.SafeManagedAlloc(ctx, wrtcap.CrateRuntime, 64, wrtcap.ProfileASILD)
	require.NoError(t, err)
	return p
}

func TestView_LoadStoreU32(t *testing.T) {
	v, err := NewView(newTestProvider(t), 0, 64)
	require.NoError(t, err)

	require.NoError(t, v.StoreU32(4, 42, SeqCst))
	got, err := v.LoadU32(4, SeqCst)
	require.NoError(t, err)
	require.EqualValues(t, 42, got)
}

func TestView_CompareAndSwapU32(t *testing.T) {
	v, _ := NewView(newTestProvider(t), 0, 64)
	require.NoError(t, v.StoreU32(0, 10, SeqCst))

	ok, err := v.CompareAndSwapU32(0, 10, 20, SeqCst)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = v.CompareAndSwapU32(0, 10, 30, SeqCst) // old no longer matches
	require.NoError(t, err)
	require.False(t, ok)
}

func TestView_FetchAddU64(t *testing.T) {
	v, _ := NewView(newTestProvider(t), 0, 64)
	require.NoError(t, v.StoreU64(8, 100, SeqCst))

	prev, err := v.FetchAddU64(8, 5, SeqCst)
	require.NoError(t, err)
	require.EqualValues(t, 100, prev)

	got, _ := v.LoadU64(8, SeqCst)
	require.EqualValues(t, 105, got)
}

func TestView_MisalignedAccessTraps(t *testing.T) {
	v, _ := NewView(newTestProvider(t), 0, 64)
	_, err := v.LoadU32(3, SeqCst)
	require.Error(t, err)
}

func TestView_OutOfBoundsTraps(t *testing.T) {
	v, _ := NewView(newTestProvider(t), 0, 16)
	_, err := v.LoadU64(12, SeqCst)
	require.Error(t, err)
}
