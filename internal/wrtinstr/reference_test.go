package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestReference_RefNullIsNull(t *testing.T) {
	ctx := newFakeContext(t)
	require.NoError(t, RefNull(ctx, wrtvalue.KindFuncRef))
	require.NoError(t, RefIsNull(ctx))
	require.True(t, ctx.Pop().AsBool())
}

func TestReference_RefFuncIsNotNull(t *testing.T) {
	ctx := newFakeContext(t)
	require.NoError(t, RefFunc(ctx, 3))
	require.NoError(t, RefIsNull(ctx))
	require.False(t, ctx.Pop().AsBool())
}

func TestReference_TableGetSet(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(1))             // index
	ctx.Push(wrtvalue.FuncRef(11, false)) // value
	require.NoError(t, TableSet(ctx, 0))

	ctx.Push(wrtvalue.U32(1))
	require.NoError(t, TableGet(ctx, 0))
	require.EqualValues(t, 11, ctx.Pop().Bits64)
}
