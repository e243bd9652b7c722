package wrtmem

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestTable_GetSetTypeChecks(t *testing.T) {
	tbl := NewTable(RefTypeFunc, 4, 8)

	require.NoError(t, tbl.Set(1, wrtvalue.FuncRef(42, false)))
	v, err := tbl.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Bits64)

	err = tbl.Set(2, wrtvalue.Value{Kind: wrtvalue.KindExternRef})
	require.Error(t, err)
}

func TestTable_GetOutOfBoundsTraps(t *testing.T) {
	tbl := NewTable(RefTypeFunc, 2, 2)
	_, err := tbl.Get(5)
	require.Error(t, err)
}

func TestTable_GrowRespectsMax(t *testing.T) {
	tbl := NewTable(RefTypeExtern, 2, 4)
	old := tbl.Grow(2, wrtvalue.Value{Kind: wrtvalue.KindExternRef})
	require.EqualValues(t, 2, old)
	require.EqualValues(t, 4, tbl.Size())

	result := tbl.Grow(1, wrtvalue.Value{Kind: wrtvalue.KindExternRef})
	require.EqualValues(t, -1, result)
}

func TestTable_FillAndCopy(t *testing.T) {
	tbl := NewTable(RefTypeFunc, 5, 5)
	require.NoError(t, tbl.Fill(0, wrtvalue.FuncRef(7, false), 3))

	require.NoError(t, tbl.Copy(3, 0, 2))
	v, _ := tbl.Get(3)
	require.EqualValues(t, 7, v.Bits64)
}

func TestTable_InitRejectsTypeMismatch(t *testing.T) {
	tbl := NewTable(RefTypeFunc, 3, 3)
	entries := []wrtvalue.Value{{Kind: wrtvalue.KindExternRef}}
	err := tbl.Init(0, entries)
	require.Error(t, err)
}
