package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestBulk_TableInitThenElemDropTraps(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.elems[0] = []wrtvalue.Value{wrtvalue.FuncRef(1, false), wrtvalue.FuncRef(2, false)}

	ctx.Push(wrtvalue.U32(0)) // dest
	ctx.Push(wrtvalue.U32(0)) // src
	ctx.Push(wrtvalue.U32(2)) // length
	require.NoError(t, TableInit(ctx, 0, 0))

	v, err := ctx.Table(0).Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 2, v.Bits64)

	require.NoError(t, ElemDrop(ctx, 0))
	ctx.Push(wrtvalue.U32(0))
	ctx.Push(wrtvalue.U32(0))
	ctx.Push(wrtvalue.U32(1))
	err = TableInit(ctx, 0, 0)
	require.Error(t, err)
}

func TestBulk_TableFillAndSize(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(0))             // dest
	ctx.Push(wrtvalue.FuncRef(5, false))  // value
	ctx.Push(wrtvalue.U32(2))             // length
	require.NoError(t, TableFill(ctx, 0))

	require.NoError(t, TableSize(ctx, 0))
	require.EqualValues(t, 4, ctx.Pop().AsU32())
}

func TestBulk_TableGrowRespectsMax(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(2)) // delta
	ctx.Push(wrtvalue.FuncRef(0, true))
	require.NoError(t, TableGrow(ctx, 0))
	require.EqualValues(t, 4, ctx.Pop().AsS32())
}
