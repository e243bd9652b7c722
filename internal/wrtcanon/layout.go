package wrtcanon

import "github.com/pulseengine/wrt-go/internal/wrtvalue"

// discriminantWidth returns the minimum byte width needed to hold n distinct
// case indices, per spec §4.4: "Variant/Enum discriminants use the minimum
// width (1, 2, or 4 bytes) that fits the case count."
func discriminantWidth(n int) uint32 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

// Size returns the flat encoded size in bytes of a value of type t, per
// spec §4.4's "natural alignment" layout rules.
func Size(t wrtvalue.ValueType) uint32 {
	switch t.Kind {
	case wrtvalue.KindBool, wrtvalue.KindS8, wrtvalue.KindU8:
		return 1
	case wrtvalue.KindS16, wrtvalue.KindU16:
		return 2
	case wrtvalue.KindS32, wrtvalue.KindU32, wrtvalue.KindF32, wrtvalue.KindChar:
		return 4
	case wrtvalue.KindS64, wrtvalue.KindU64, wrtvalue.KindF64:
		return 8
	case wrtvalue.KindString, wrtvalue.KindList:
		return 8 // pointer (4) + length/count (4)
	case wrtvalue.KindRecord:
		return recordSize(t.Fields)
	case wrtvalue.KindTuple:
		fields := make([]wrtvalue.FieldType, len(t.Elems))
		for i, e := range t.Elems {
			fields[i] = wrtvalue.FieldType{Type: e}
		}
		return recordSize(fields)
	case wrtvalue.KindOption:
		payload, align := uint32(0), uint32(1)
		if t.Some != nil {
			payload, align = Size(*t.Some), Align(*t.Some)
		}
		return alignUp(1, align) + payload
	case wrtvalue.KindResult:
		var okSize, errSize uint32
		align := uint32(1)
		if t.OKType != nil {
			okSize = Size(*t.OKType)
			align = max32(align, Align(*t.OKType))
		}
		if t.ErrType != nil {
			errSize = Size(*t.ErrType)
			align = max32(align, Align(*t.ErrType))
		}
		return alignUp(1, align) + max32(okSize, errSize)
	case wrtvalue.KindVariant:
		dw := discriminantWidth(len(t.Cases))
		payload, align := uint32(0), dw
		for _, c := range t.Cases {
			if c.Payload == nil {
				continue
			}
			payload = max32(payload, Size(*c.Payload))
			align = max32(align, Align(*c.Payload))
		}
		return alignUp(dw, align) + payload
	case wrtvalue.KindEnum:
		return discriminantWidth(int(t.EnumSize))
	case wrtvalue.KindFlags:
		return (t.FlagsLen + 7) / 8
	case wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		return 4
	case wrtvalue.KindV128:
		return 16
	default:
		return 0
	}
}

func recordSize(fields []wrtvalue.FieldType) uint32 {
	var offset uint32
	for _, f := range fields {
		offset = alignUp(offset, Align(f.Type))
		offset += Size(f.Type)
	}
	return alignUp(offset, recordAlign(fields))
}

func recordAlign(fields []wrtvalue.FieldType) uint32 {
	a := uint32(1)
	for _, f := range fields {
		a = max32(a, Align(f.Type))
	}
	return a
}

// Align returns the natural alignment in bytes of a value of type t.
func Align(t wrtvalue.ValueType) uint32 {
	switch t.Kind {
	case wrtvalue.KindBool, wrtvalue.KindS8, wrtvalue.KindU8:
		return 1
	case wrtvalue.KindS16, wrtvalue.KindU16:
		return 2
	case wrtvalue.KindS32, wrtvalue.KindU32, wrtvalue.KindF32, wrtvalue.KindChar,
		wrtvalue.KindString, wrtvalue.KindList, wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		return 4
	case wrtvalue.KindS64, wrtvalue.KindU64, wrtvalue.KindF64:
		return 8
	case wrtvalue.KindRecord:
		return recordAlign(t.Fields)
	case wrtvalue.KindTuple:
		a := uint32(1)
		for _, e := range t.Elems {
			a = max32(a, Align(e))
		}
		return a
	case wrtvalue.KindOption:
		if t.Some != nil {
			return max32(1, Align(*t.Some))
		}
		return 1
	case wrtvalue.KindResult:
		a := uint32(1)
		if t.OKType != nil {
			a = max32(a, Align(*t.OKType))
		}
		if t.ErrType != nil {
			a = max32(a, Align(*t.ErrType))
		}
		return a
	case wrtvalue.KindVariant:
		a := discriminantWidth(len(t.Cases))
		for _, c := range t.Cases {
			if c.Payload != nil {
				a = max32(a, Align(*c.Payload))
			}
		}
		return a
	case wrtvalue.KindEnum:
		return discriminantWidth(int(t.EnumSize))
	case wrtvalue.KindFlags:
		switch n := (t.FlagsLen + 7) / 8; {
		case n <= 1:
			return 1
		case n <= 2:
			return 2
		default:
			return 4
		}
	case wrtvalue.KindV128:
		return 16
	default:
		return 1
	}
}

func alignUp(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) / align * align
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
