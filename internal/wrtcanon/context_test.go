package wrtcanon

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func TestLowerLift_Primitives(t *testing.T) {
	mem := testMemory(t, 1)
	lo := &LowerContext{Mem: mem, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	require.NoError(t, lo.Lower(0, wrtvalue.Primitive(wrtvalue.KindS32), wrtvalue.S32(-7)))
	v, err := li.Lift(0, wrtvalue.Primitive(wrtvalue.KindS32))
	require.NoError(t, err)
	require.EqualValues(t, -7, v.AsS32())

	require.NoError(t, lo.Lower(8, wrtvalue.Primitive(wrtvalue.KindF64), wrtvalue.F64(3.5)))
	v, err = li.Lift(8, wrtvalue.Primitive(wrtvalue.KindF64))
	require.NoError(t, err)
	require.InDelta(t, 3.5, v.AsF64(), 0)
}

func TestLift_BoolRejectsByteOtherThanZeroOrOne(t *testing.T) {
	mem := testMemory(t, 1)
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	require.NoError(t, mem.Write(0, []byte{2}))
	_, err := li.Lift(0, wrtvalue.Primitive(wrtvalue.KindBool))
	require.Error(t, err)
}

func TestLowerLift_String(t *testing.T) {
	mem := testMemory(t, 1)
	var base uint32 = 256
	ledger := NewReallocLedger(1, bumpRealloc(&base))
	lo := &LowerContext{Mem: mem, Ledger: ledger, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	require.NoError(t, lo.Lower(0, wrtvalue.Primitive(wrtvalue.KindString), wrtvalue.String("hello, component")))
	v, err := li.Lift(0, wrtvalue.Primitive(wrtvalue.KindString))
	require.NoError(t, err)
	require.Equal(t, "hello, component", v.Str)
}

func TestLowerLift_StringUTF16Roundtrip(t *testing.T) {
	mem := testMemory(t, 1)
	var base uint32 = 256
	ledger := NewReallocLedger(1, bumpRealloc(&base))
	lo := &LowerContext{Mem: mem, Ledger: ledger, Encoding: EncodingUTF16LE}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF16LE}

	require.NoError(t, lo.Lower(0, wrtvalue.Primitive(wrtvalue.KindString), wrtvalue.String("héllo")))
	v, err := li.Lift(0, wrtvalue.Primitive(wrtvalue.KindString))
	require.NoError(t, err)
	require.Equal(t, "héllo", v.Str)
}

func TestLowerLift_List(t *testing.T) {
	mem := testMemory(t, 1)
	var base uint32 = 256
	ledger := NewReallocLedger(1, bumpRealloc(&base))
	lo := &LowerContext{Mem: mem, Ledger: ledger, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	listType := wrtvalue.ValueType{Kind: wrtvalue.KindList, Elem: ptr(wrtvalue.Primitive(wrtvalue.KindU32))}
	listVal := wrtvalue.List([]wrtvalue.Value{wrtvalue.U32(1), wrtvalue.U32(2), wrtvalue.U32(3)})

	require.NoError(t, lo.Lower(0, listType, listVal))
	v, err := li.Lift(0, listType)
	require.NoError(t, err)
	require.Len(t, v.List, 3)
	require.EqualValues(t, 2, v.List[1].AsU32())
}

func TestLowerLift_RecordAndOption(t *testing.T) {
	mem := testMemory(t, 1)
	recType := wrtvalue.ValueType{Kind: wrtvalue.KindRecord, Fields: []wrtvalue.FieldType{
		{Name: "flag", Type: wrtvalue.Primitive(wrtvalue.KindBool)},
		{Name: "count", Type: wrtvalue.Primitive(wrtvalue.KindU32)},
	}}
	optType := wrtvalue.ValueType{Kind: wrtvalue.KindOption, Some: &recType}

	lo := &LowerContext{Mem: mem, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	rec := wrtvalue.Record([]wrtvalue.Field{{Name: "flag", Value: wrtvalue.Bool(true)}, {Name: "count", Value: wrtvalue.U32(99)}})
	some := wrtvalue.Some(rec)

	require.NoError(t, lo.Lower(0, optType, some))
	v, err := li.Lift(0, optType)
	require.NoError(t, err)
	require.True(t, v.IsSome())
	require.EqualValues(t, 99, v.Option.Fields[1].Value.AsU32())

	require.NoError(t, lo.Lower(16, optType, wrtvalue.None()))
	v, err = li.Lift(16, optType)
	require.NoError(t, err)
	require.False(t, v.IsSome())
}

func TestLowerLift_ResultAndVariant(t *testing.T) {
	mem := testMemory(t, 1)
	okT := wrtvalue.Primitive(wrtvalue.KindU32)
	errT := wrtvalue.Primitive(wrtvalue.KindU8)
	resType := wrtvalue.ValueType{Kind: wrtvalue.KindResult, OKType: &okT, ErrType: &errT}

	lo := &LowerContext{Mem: mem, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	require.NoError(t, lo.Lower(0, resType, wrtvalue.Ok(wrtvalue.U32(42))))
	v, err := li.Lift(0, resType)
	require.NoError(t, err)
	require.True(t, v.IsOk())
	require.EqualValues(t, 42, v.OK.AsU32())

	require.NoError(t, lo.Lower(16, resType, wrtvalue.ErrVal(wrtvalue.Value{Kind: wrtvalue.KindU8, Bits64: 9})))
	v, err = li.Lift(16, resType)
	require.NoError(t, err)
	require.False(t, v.IsOk())
	require.EqualValues(t, 9, v.Err.Bits64)

	varType := wrtvalue.ValueType{Kind: wrtvalue.KindVariant, Cases: []wrtvalue.CaseType{
		{Name: "none"},
		{Name: "some", Payload: &okT},
	}}
	payload := wrtvalue.U32(7)
	require.NoError(t, lo.Lower(32, varType, wrtvalue.Variant(1, &payload)))
	v, err = li.Lift(32, varType)
	require.NoError(t, err)
	require.EqualValues(t, 1, v.Case)
	require.EqualValues(t, 7, v.Option.AsU32())
}

func TestLowerLift_Flags(t *testing.T) {
	mem := testMemory(t, 1)
	ft := wrtvalue.ValueType{Kind: wrtvalue.KindFlags, FlagsLen: 5}
	lo := &LowerContext{Mem: mem, Encoding: EncodingUTF8}
	li := &LiftContext{Mem: mem, Encoding: EncodingUTF8}

	bits := []bool{true, false, true, false, true}
	require.NoError(t, lo.Lower(0, ft, wrtvalue.Flags(bits)))
	v, err := li.Lift(0, ft)
	require.NoError(t, err)
	require.Equal(t, bits, v.Flags)
}

func TestPostReturn_FreesMostRecentFirst(t *testing.T) {
	var order []uint32
	var base uint32 = 0
	ledger := NewReallocLedger(1, func(oldPtr, oldSize, align, newSize uint32) (uint32, error) {
		if newSize == 0 {
			order = append(order, oldPtr)
			return 0, nil
		}
		p := base
		base += newSize
		return p, nil
	})

	p1, err := ledger.Allocate(8, 1)
	require.NoError(t, err)
	p2, err := ledger.Allocate(8, 1)
	require.NoError(t, err)
	require.Greater(t, p2, p1)

	PostReturn(ledger, wrtlog.Nop())
	require.Equal(t, []uint32{p2, p1}, order)
	require.EqualValues(t, 2, ledger.Stats().TotalDeallocations)
	require.Empty(t, ledger.LiveAllocations())
}

func ptr[T any](v T) *T { return &v }
