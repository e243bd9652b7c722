package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestVariable_LocalGetSetTee(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(5))
	require.NoError(t, LocalSet(ctx, 0))
	require.NoError(t, LocalGet(ctx, 0))
	require.EqualValues(t, 5, ctx.Pop().AsU32())

	ctx.Push(wrtvalue.U32(9))
	require.NoError(t, LocalTee(ctx, 1))
	require.EqualValues(t, 9, ctx.Pop().AsU32()) // tee leaves it on the stack too
	require.EqualValues(t, 9, ctx.Local(1).AsU32())
}

func TestVariable_GlobalGetSet(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(77))
	require.NoError(t, GlobalSet(ctx, 2))
	require.NoError(t, GlobalGet(ctx, 2))
	require.EqualValues(t, 77, ctx.Pop().AsU32())
}
