package wrtvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_NumericRoundTrip(t *testing.T) {
	require.EqualValues(t, 42, S32(42).AsS32())
	require.EqualValues(t, -1, S64(-1).AsS64())
	require.EqualValues(t, 3.5, F64(3.5).AsF64())
}

func TestValue_F32PreservesNaNBits(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001) // quiet NaN with a payload
	v := F32(nan)
	require.Equal(t, math.Float32bits(nan), uint32(v.Bits64))
}

func TestChar_RejectsSurrogate(t *testing.T) {
	_, err := Char(0xD800)
	require.Error(t, err)

	v, err := Char('A')
	require.NoError(t, err)
	require.Equal(t, 'A', v.AsChar())
}

func TestOptionResult_Helpers(t *testing.T) {
	none := None()
	require.False(t, none.IsSome())

	some := Some(S32(5))
	require.True(t, some.IsSome())

	ok := Ok(S32(1))
	require.True(t, ok.IsOk())

	errv := ErrVal(String("boom"))
	require.False(t, errv.IsOk())
}

func TestFuncType_MatchesStructurally(t *testing.T) {
	a := FuncType{Params: []ValueType{Primitive(KindS32)}, Results: []ValueType{Primitive(KindBool)}}
	b := FuncType{Params: []ValueType{Primitive(KindS32)}, Results: []ValueType{Primitive(KindBool)}}
	require.True(t, a.Matches(b))

	c := FuncType{Params: []ValueType{Primitive(KindS64)}, Results: []ValueType{Primitive(KindBool)}}
	require.False(t, a.Matches(c))
}

func TestValueType_RecordCompatibleAfterNameErasure(t *testing.T) {
	a := ValueType{Kind: KindRecord, Fields: []FieldType{
		{Name: "x", Type: Primitive(KindS32)},
		{Name: "y", Type: Primitive(KindS32)},
	}}
	b := ValueType{Kind: KindRecord, Fields: []FieldType{
		{Name: "different-name", Type: Primitive(KindS32)},
		{Name: "also-different", Type: Primitive(KindS32)},
	}}
	require.True(t, a.Compatible(b))
}
