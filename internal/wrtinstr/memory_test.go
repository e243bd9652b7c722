package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestMemory_StoreLoadRoundtrip(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(0))  // addr
	ctx.Push(wrtvalue.U32(42)) // value
	require.NoError(t, Store(ctx, OpI32Store, MemArg{}))

	ctx.Push(wrtvalue.U32(0))
	require.NoError(t, Load(ctx, OpI32Load, MemArg{}))
	require.EqualValues(t, 42, ctx.Pop().AsU32())
}

func TestMemory_FillAndCopy(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(0))  // dest
	ctx.Push(wrtvalue.U32(9))  // value
	ctx.Push(wrtvalue.U32(4))  // length
	require.NoError(t, MemoryFill(ctx))

	ctx.Push(wrtvalue.U32(8)) // dest
	ctx.Push(wrtvalue.U32(0)) // src
	ctx.Push(wrtvalue.U32(4)) // length
	require.NoError(t, MemoryCopy(ctx))

	got, err := ctx.Memory().Read(8, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9, 9}, got)
}

func TestMemory_InitTrapsAfterDrop(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.data[0] = []byte{1, 2, 3, 4}
	ctx.Push(wrtvalue.U32(0)) // dest
	ctx.Push(wrtvalue.U32(0)) // src
	ctx.Push(wrtvalue.U32(4)) // length
	require.NoError(t, MemoryInit(ctx, 0))

	require.NoError(t, DataDrop(ctx, 0))
	ctx.Push(wrtvalue.U32(0))
	ctx.Push(wrtvalue.U32(0))
	ctx.Push(wrtvalue.U32(1))
	err := MemoryInit(ctx, 0)
	require.Error(t, err)
}

func TestMemory_GrowAndSize(t *testing.T) {
	ctx := newFakeContext(t)
	require.NoError(t, MemorySize(ctx))
	require.EqualValues(t, 1, ctx.Pop().AsU32())

	ctx.Push(wrtvalue.U32(1)) // delta: memory was created with min==max==1, so growth fails
	require.NoError(t, MemoryGrow(ctx))
	require.EqualValues(t, -1, ctx.Pop().AsS32())
}
