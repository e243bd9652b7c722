package wrtinstr

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestParametric_Drop(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(1))
	require.NoError(t, Drop(ctx))
	require.Empty(t, ctx.stack)
}

func TestParametric_SelectPicksVal1WhenConditionNonzero(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(10)) // val1
	ctx.Push(wrtvalue.U32(20)) // val2
	ctx.Push(wrtvalue.U32(1))  // cond
	require.NoError(t, Select(ctx))
	require.EqualValues(t, 10, ctx.Pop().AsU32())
}

func TestParametric_SelectPicksVal2WhenConditionZero(t *testing.T) {
	ctx := newFakeContext(t)
	ctx.Push(wrtvalue.U32(10))
	ctx.Push(wrtvalue.U32(20))
	ctx.Push(wrtvalue.U32(0))
	require.NoError(t, Select(ctx))
	require.EqualValues(t, 20, ctx.Pop().AsU32())
}
