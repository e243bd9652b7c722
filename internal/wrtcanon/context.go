package wrtcanon

import (
	"encoding/binary"

	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"go.uber.org/zap"
)

// LowerContext carries everything a lower pass needs to flatten a Value
// into guest linear memory: the target memory, the instance's realloc
// ledger (for strings/lists/records that need fresh buffers), and the
// component's declared string encoding.
type LowerContext struct {
	Mem      *wrtmem.Memory
	Ledger   *ReallocLedger
	Encoding StringEncoding
}

// LiftContext is LowerContext's read-side counterpart.
type LiftContext struct {
	Mem      *wrtmem.Memory
	Encoding StringEncoding
}

// Lower writes v (of type t) into lc.Mem starting at offset, per spec §4.4's
// flattening rules. Aggregate kinds that need indirect storage (string,
// list) allocate their own buffer via the ledger and write only a
// (pointer, length) pair at offset.
func (lc *LowerContext) Lower(offset uint32, t wrtvalue.ValueType, v wrtvalue.Value) error {
	if v.Kind != t.Kind {
		return wrterror.Trap(wrterror.CodeTypeMismatch, "value kind does not match declared canonical type")
	}
	switch t.Kind {
	case wrtvalue.KindBool, wrtvalue.KindS8, wrtvalue.KindU8:
		return lc.Mem.Write(offset, []byte{byte(v.Bits64)})
	case wrtvalue.KindS16, wrtvalue.KindU16:
		return lc.writeUint(offset, v.Bits64, 2)
	case wrtvalue.KindS32, wrtvalue.KindU32, wrtvalue.KindChar, wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		return lc.writeUint(offset, v.Bits64, 4)
	case wrtvalue.KindF32:
		return lc.writeUint(offset, v.Bits64, 4)
	case wrtvalue.KindS64, wrtvalue.KindU64, wrtvalue.KindF64:
		return lc.writeUint(offset, v.Bits64, 8)
	case wrtvalue.KindString:
		return lc.lowerString(offset, v.Str)
	case wrtvalue.KindList:
		return lc.lowerList(offset, *t.Elem, v.List)
	case wrtvalue.KindRecord:
		return lc.lowerRecord(offset, t.Fields, v.Fields)
	case wrtvalue.KindTuple:
		return lc.lowerTuple(offset, t.Elems, v.Tuple)
	case wrtvalue.KindOption:
		return lc.lowerOption(offset, t, v)
	case wrtvalue.KindResult:
		return lc.lowerResult(offset, t, v)
	case wrtvalue.KindVariant:
		return lc.lowerVariant(offset, t, v)
	case wrtvalue.KindEnum:
		return lc.writeUint(offset, uint64(v.Case), int(discriminantWidth(int(t.EnumSize))))
	case wrtvalue.KindFlags:
		return lc.lowerFlags(offset, t.FlagsLen, v.Flags)
	case wrtvalue.KindV128:
		return lc.Mem.Write(offset, v.V128[:])
	default:
		return wrterror.Trap(wrterror.CodeUnknownValueType, "unknown canonical value kind in lower")
	}
}

func (lc *LowerContext) writeUint(offset uint32, bits uint64, width int) error {
	buf := make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(buf, bits)
	}
	return lc.Mem.Write(offset, buf)
}

func (lc *LowerContext) lowerString(offset uint32, s string) error {
	raw, err := encodeString(s, lc.Encoding)
	if err != nil {
		return err
	}
	ptr := uint32(0)
	if len(raw) > 0 {
		p, err := lc.Ledger.Allocate(uint32(len(raw)), 1)
		if err != nil {
			return err
		}
		if err := lc.Mem.Write(p, raw); err != nil {
			return err
		}
		ptr = p
	}
	if err := lc.writeUint(offset, uint64(ptr), 4); err != nil {
		return err
	}
	return lc.writeUint(offset+4, uint64(len(raw)), 4)
}

func (lc *LowerContext) lowerList(offset uint32, elemType wrtvalue.ValueType, elems []wrtvalue.Value) error {
	elemSize := Size(elemType)
	ptr := uint32(0)
	if len(elems) > 0 {
		total := elemSize * uint32(len(elems))
		p, err := lc.Ledger.Allocate(total, max32(1, Align(elemType)))
		if err != nil {
			return err
		}
		for i, e := range elems {
			if err := lc.Lower(p+uint32(i)*elemSize, elemType, e); err != nil {
				return err
			}
		}
		ptr = p
	}
	if err := lc.writeUint(offset, uint64(ptr), 4); err != nil {
		return err
	}
	return lc.writeUint(offset+4, uint64(len(elems)), 4)
}

func (lc *LowerContext) lowerRecord(offset uint32, fieldTypes []wrtvalue.FieldType, fields []wrtvalue.Field) error {
	if len(fieldTypes) != len(fields) {
		return wrterror.Trap(wrterror.CodeTypeMismatch, "record field count mismatch in lower")
	}
	var cur uint32
	for i, ft := range fieldTypes {
		cur = alignUp(cur, Align(ft.Type))
		if err := lc.Lower(offset+cur, ft.Type, fields[i].Value); err != nil {
			return err
		}
		cur += Size(ft.Type)
	}
	return nil
}

func (lc *LowerContext) lowerTuple(offset uint32, elemTypes []wrtvalue.ValueType, elems []wrtvalue.Value) error {
	if len(elemTypes) != len(elems) {
		return wrterror.Trap(wrterror.CodeTypeMismatch, "tuple arity mismatch in lower")
	}
	var cur uint32
	for i, et := range elemTypes {
		cur = alignUp(cur, Align(et))
		if err := lc.Lower(offset+cur, et, elems[i]); err != nil {
			return err
		}
		cur += Size(et)
	}
	return nil
}

func (lc *LowerContext) lowerOption(offset uint32, t wrtvalue.ValueType, v wrtvalue.Value) error {
	payloadAlign := uint32(1)
	if t.Some != nil {
		payloadAlign = Align(*t.Some)
	}
	payloadOff := alignUp(1, payloadAlign)
	if !v.IsSome() {
		return lc.Mem.Write(offset, []byte{0})
	}
	if err := lc.Mem.Write(offset, []byte{1}); err != nil {
		return err
	}
	return lc.Lower(offset+payloadOff, *t.Some, *v.Option)
}

func (lc *LowerContext) lowerResult(offset uint32, t wrtvalue.ValueType, v wrtvalue.Value) error {
	align := uint32(1)
	if t.OKType != nil {
		align = max32(align, Align(*t.OKType))
	}
	if t.ErrType != nil {
		align = max32(align, Align(*t.ErrType))
	}
	payloadOff := alignUp(1, align)
	if v.IsOk() {
		if err := lc.Mem.Write(offset, []byte{0}); err != nil {
			return err
		}
		if t.OKType == nil {
			return nil
		}
		return lc.Lower(offset+payloadOff, *t.OKType, *v.OK)
	}
	if err := lc.Mem.Write(offset, []byte{1}); err != nil {
		return err
	}
	if t.ErrType == nil {
		return nil
	}
	return lc.Lower(offset+payloadOff, *t.ErrType, *v.Err)
}

func (lc *LowerContext) lowerVariant(offset uint32, t wrtvalue.ValueType, v wrtvalue.Value) error {
	if int(v.Case) >= len(t.Cases) {
		return wrterror.Trap(wrterror.CodeUnknownDiscriminant, "variant case index out of range in lower")
	}
	dw := discriminantWidth(len(t.Cases))
	if err := lc.writeUint(offset, uint64(v.Case), int(dw)); err != nil {
		return err
	}
	payload := t.Cases[v.Case].Payload
	if payload == nil {
		return nil
	}
	if v.Option == nil {
		return wrterror.Trap(wrterror.CodeTypeMismatch, "variant case declares a payload but value carries none")
	}
	align := uint32(1)
	for _, c := range t.Cases {
		if c.Payload != nil {
			align = max32(align, Align(*c.Payload))
		}
	}
	return lc.Lower(offset+alignUp(dw, align), *payload, *v.Option)
}

func (lc *LowerContext) lowerFlags(offset uint32, n uint32, bits []bool) error {
	nbytes := (n + 7) / 8
	buf := make([]byte, nbytes)
	for i, b := range bits {
		if i >= int(n) || !b {
			continue
		}
		buf[i/8] |= 1 << uint(i%8)
	}
	return lc.Mem.Write(offset, buf)
}

// Lift reads a Value of type t out of lc.Mem starting at offset, the
// inverse of LowerContext.Lower.
func (lc *LiftContext) Lift(offset uint32, t wrtvalue.ValueType) (wrtvalue.Value, error) {
	switch t.Kind {
	case wrtvalue.KindBool:
		b, err := lc.read(offset, 1)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		if b[0] > 1 {
			return wrtvalue.Value{}, wrterror.Trap(wrterror.CodeTypeMismatch, "bool lift saw a byte other than 0 or 1")
		}
		return wrtvalue.Bool(b[0] != 0), nil
	case wrtvalue.KindS8, wrtvalue.KindU8:
		b, err := lc.read(offset, 1)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: t.Kind, Bits64: uint64(b[0])}, nil
	case wrtvalue.KindS16, wrtvalue.KindU16:
		bits, err := lc.readUint(offset, 2)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: t.Kind, Bits64: bits}, nil
	case wrtvalue.KindS32, wrtvalue.KindU32:
		bits, err := lc.readUint(offset, 4)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: t.Kind, Bits64: bits}, nil
	case wrtvalue.KindF32:
		bits, err := lc.readUint(offset, 4)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: wrtvalue.KindF32, Bits64: bits}, nil
	case wrtvalue.KindF64:
		bits, err := lc.readUint(offset, 8)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: wrtvalue.KindF64, Bits64: bits}, nil
	case wrtvalue.KindS64, wrtvalue.KindU64:
		bits, err := lc.readUint(offset, 8)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: t.Kind, Bits64: bits}, nil
	case wrtvalue.KindChar:
		bits, err := lc.readUint(offset, 4)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Char(uint32(bits))
	case wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		bits, err := lc.readUint(offset, 4)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Value{Kind: t.Kind, Bits64: bits}, nil
	case wrtvalue.KindString:
		return lc.liftString(offset)
	case wrtvalue.KindList:
		return lc.liftList(offset, *t.Elem)
	case wrtvalue.KindRecord:
		return lc.liftRecord(offset, t.Fields)
	case wrtvalue.KindTuple:
		return lc.liftTuple(offset, t.Elems)
	case wrtvalue.KindOption:
		return lc.liftOption(offset, t)
	case wrtvalue.KindResult:
		return lc.liftResult(offset, t)
	case wrtvalue.KindVariant:
		return lc.liftVariant(offset, t)
	case wrtvalue.KindEnum:
		bits, err := lc.readUint(offset, int(discriminantWidth(int(t.EnumSize))))
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Enum(uint32(bits)), nil
	case wrtvalue.KindFlags:
		return lc.liftFlags(offset, t.FlagsLen)
	case wrtvalue.KindV128:
		raw, err := lc.read(offset, 16)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		var arr [16]byte
		copy(arr[:], raw)
		return wrtvalue.V128(arr), nil
	default:
		return wrtvalue.Value{}, wrterror.Trap(wrterror.CodeUnknownValueType, "unknown canonical value kind in lift")
	}
}

func (lc *LiftContext) read(offset, length uint32) ([]byte, error) {
	return lc.Mem.Read(offset, length)
}

func (lc *LiftContext) readUint(offset uint32, width int) (uint64, error) {
	raw, err := lc.read(offset, uint32(width))
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(raw[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(raw)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(raw)), nil
	case 8:
		return binary.LittleEndian.Uint64(raw), nil
	}
	return 0, nil
}

func (lc *LiftContext) liftString(offset uint32) (wrtvalue.Value, error) {
	ptr, err := lc.readUint(offset, 4)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	length, err := lc.readUint(offset+4, 4)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	if length == 0 {
		return wrtvalue.String(""), nil
	}
	raw, err := lc.read(uint32(ptr), uint32(length))
	if err != nil {
		return wrtvalue.Value{}, err
	}
	s, err := decodeString(raw, lc.Encoding)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	return wrtvalue.String(s), nil
}

func (lc *LiftContext) liftList(offset uint32, elemType wrtvalue.ValueType) (wrtvalue.Value, error) {
	ptr, err := lc.readUint(offset, 4)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	count, err := lc.readUint(offset+4, 4)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	elemSize := Size(elemType)
	out := make([]wrtvalue.Value, count)
	for i := range out {
		v, err := lc.Lift(uint32(ptr)+uint32(i)*elemSize, elemType)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		out[i] = v
	}
	return wrtvalue.List(out), nil
}

func (lc *LiftContext) liftRecord(offset uint32, fieldTypes []wrtvalue.FieldType) (wrtvalue.Value, error) {
	fields := make([]wrtvalue.Field, len(fieldTypes))
	var cur uint32
	for i, ft := range fieldTypes {
		cur = alignUp(cur, Align(ft.Type))
		v, err := lc.Lift(offset+cur, ft.Type)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		fields[i] = wrtvalue.Field{Name: ft.Name, Value: v}
		cur += Size(ft.Type)
	}
	return wrtvalue.Record(fields), nil
}

func (lc *LiftContext) liftTuple(offset uint32, elemTypes []wrtvalue.ValueType) (wrtvalue.Value, error) {
	elems := make([]wrtvalue.Value, len(elemTypes))
	var cur uint32
	for i, et := range elemTypes {
		cur = alignUp(cur, Align(et))
		v, err := lc.Lift(offset+cur, et)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		elems[i] = v
		cur += Size(et)
	}
	return wrtvalue.Tuple(elems), nil
}

func (lc *LiftContext) liftOption(offset uint32, t wrtvalue.ValueType) (wrtvalue.Value, error) {
	tag, err := lc.read(offset, 1)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	if tag[0] == 0 {
		return wrtvalue.None(), nil
	}
	align := uint32(1)
	if t.Some != nil {
		align = Align(*t.Some)
	}
	v, err := lc.Lift(offset+alignUp(1, align), *t.Some)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	return wrtvalue.Some(v), nil
}

func (lc *LiftContext) liftResult(offset uint32, t wrtvalue.ValueType) (wrtvalue.Value, error) {
	tag, err := lc.read(offset, 1)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	align := uint32(1)
	if t.OKType != nil {
		align = max32(align, Align(*t.OKType))
	}
	if t.ErrType != nil {
		align = max32(align, Align(*t.ErrType))
	}
	payloadOff := offset + alignUp(1, align)
	if tag[0] == 0 {
		if t.OKType == nil {
			return wrtvalue.Ok(wrtvalue.Value{}), nil
		}
		v, err := lc.Lift(payloadOff, *t.OKType)
		if err != nil {
			return wrtvalue.Value{}, err
		}
		return wrtvalue.Ok(v), nil
	}
	if t.ErrType == nil {
		return wrtvalue.ErrVal(wrtvalue.Value{}), nil
	}
	v, err := lc.Lift(payloadOff, *t.ErrType)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	return wrtvalue.ErrVal(v), nil
}

func (lc *LiftContext) liftVariant(offset uint32, t wrtvalue.ValueType) (wrtvalue.Value, error) {
	dw := discriminantWidth(len(t.Cases))
	bits, err := lc.readUint(offset, int(dw))
	if err != nil {
		return wrtvalue.Value{}, err
	}
	caseIdx := uint32(bits)
	if int(caseIdx) >= len(t.Cases) {
		return wrtvalue.Value{}, wrterror.Trap(wrterror.CodeUnknownDiscriminant, "variant discriminant out of range in lift")
	}
	payload := t.Cases[caseIdx].Payload
	if payload == nil {
		return wrtvalue.Variant(caseIdx, nil), nil
	}
	align := uint32(1)
	for _, c := range t.Cases {
		if c.Payload != nil {
			align = max32(align, Align(*c.Payload))
		}
	}
	v, err := lc.Lift(offset+alignUp(dw, align), *payload)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	return wrtvalue.Variant(caseIdx, &v), nil
}

func (lc *LiftContext) liftFlags(offset uint32, n uint32) (wrtvalue.Value, error) {
	nbytes := (n + 7) / 8
	raw, err := lc.read(offset, nbytes)
	if err != nil {
		return wrtvalue.Value{}, err
	}
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = raw[i/8]&(1<<uint(i%8)) != 0
	}
	return wrtvalue.Flags(bits), nil
}

// PostReturn frees every allocation the ledger recorded during a call, most
// recent first, per spec §4.4: "post-return releases allocations in
// most-recent-first order; a failing deallocation is logged but does not
// block the rest of the release." A failure to free any one allocation is
// logged via log and does not stop the remaining frees.
func PostReturn(ledger *ReallocLedger, log *wrtlog.Logger) {
	for _, a := range ledger.LiveAllocations() {
		if err := ledger.Deallocate(a.Ptr); err != nil {
			log.Warn("post-return dealloc failed", zap.Uint32("ptr", a.Ptr), zap.Error(err))
		}
	}
}
