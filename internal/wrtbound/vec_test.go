package wrtbound

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/stretchr/testify/require"
)

func TestVec_PushPopRespectsCapacity(t *testing.T) {
	ctx := testCtx(t, 1024)
	v, err := NewVec[uint32](ctx, wrtcap.CrateFoundation, 4, Uint32Codec, wrtcap.ProfileASILD)
	require.NoError(t, err)

	for i := uint32(0); i < 4; i++ {
		require.NoError(t, v.Push(i*10))
	}
	require.True(t, v.IsFull())
	require.Error(t, v.Push(999))

	last, err := v.Pop()
	require.NoError(t, err)
	require.EqualValues(t, 30, last)
	require.Equal(t, 3, v.Len())
}

func TestVec_GetSetInsertRemove(t *testing.T) {
	ctx := testCtx(t, 1024)
	v, err := NewVec[uint32](ctx, wrtcap.CrateFoundation, 8, Uint32Codec, wrtcap.ProfileASILD)
	require.NoError(t, err)

	for i := uint32(0); i < 3; i++ {
		require.NoError(t, v.Push(i))
	}
	require.NoError(t, v.Set(1, 100))
	got, err := v.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 100, got)

	require.NoError(t, v.Insert(1, 50))
	got, _ = v.Get(1)
	require.EqualValues(t, 50, got)
	got, _ = v.Get(2)
	require.EqualValues(t, 100, got)

	removed, err := v.Remove(0)
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)
	require.Equal(t, 3, v.Len())
}

func TestVec_OutOfRangeTraps(t *testing.T) {
	ctx := testCtx(t, 1024)
	v, err := NewVec[uint32](ctx, wrtcap.CrateFoundation, 2, Uint32Codec, wrtcap.ProfileASILD)
	require.NoError(t, err)
	_, err = v.Get(0)
	require.Error(t, err)
}

func TestVec_ForEachVisitsInOrder(t *testing.T) {
	ctx := testCtx(t, 1024)
	v, err := NewVec[uint32](ctx, wrtcap.CrateFoundation, 4, Uint32Codec, wrtcap.ProfileASILD)
	require.NoError(t, err)
	for i := uint32(1); i <= 3; i++ {
		require.NoError(t, v.Push(i))
	}

	var seen []uint32
	require.NoError(t, v.ForEach(func(i int, value uint32) error {
		seen = append(seen, value)
		return nil
	}))
	require.Equal(t, []uint32{1, 2, 3}, seen)
}

func TestVec_ExternalMutationTrapsOnNextRead(t *testing.T) {
	ctx := testCtx(t, 1024)
	v, err := NewVec[uint32](ctx, wrtcap.CrateFoundation, 4, Uint32Codec, wrtcap.ProfileASILD)
	require.NoError(t, err)
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Push(2))

	// Corrupt the backing store directly, bypassing the checksum update.
	require.NoError(t, v.provider.Write(0, []byte{0xff, 0xff, 0xff, 0xff}))

	_, err = v.Get(0)
	require.Error(t, err)
}
