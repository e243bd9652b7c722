package wrtsnapshot

import (
	"encoding/binary"

	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// encodeValue appends v's wire representation to buf: a Kind byte followed
// by whichever of Value's fields that Kind actually uses, recursing for
// the aggregate kinds (List, Record, Tuple, Option, Result, Variant).
func encodeValue(buf []byte, v wrtvalue.Value) []byte {
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case wrtvalue.KindBool, wrtvalue.KindS8, wrtvalue.KindU8, wrtvalue.KindS16, wrtvalue.KindU16,
		wrtvalue.KindS32, wrtvalue.KindU32, wrtvalue.KindS64, wrtvalue.KindU64,
		wrtvalue.KindF32, wrtvalue.KindF64, wrtvalue.KindChar, wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		buf = binary.LittleEndian.AppendUint64(buf, v.Bits64)
	case wrtvalue.KindString:
		buf = encodeString(buf, v.Str)
	case wrtvalue.KindList:
		buf = encodeValueSlice(buf, v.List)
	case wrtvalue.KindRecord:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Fields)))
		for _, f := range v.Fields {
			buf = encodeString(buf, f.Name)
			buf = encodeValue(buf, f.Value)
		}
	case wrtvalue.KindTuple:
		buf = encodeValueSlice(buf, v.Tuple)
	case wrtvalue.KindOption:
		buf = encodeOptPtr(buf, v.Option)
	case wrtvalue.KindResult:
		if v.OK != nil {
			buf = append(buf, 1)
			buf = encodeValue(buf, *v.OK)
		} else {
			buf = append(buf, 0)
			buf = encodeOptPtr(buf, v.Err)
		}
	case wrtvalue.KindVariant:
		buf = binary.LittleEndian.AppendUint32(buf, v.Case)
		buf = encodeOptPtr(buf, v.Option)
	case wrtvalue.KindEnum:
		buf = binary.LittleEndian.AppendUint32(buf, v.Case)
		buf = binary.LittleEndian.AppendUint64(buf, v.Bits64)
	case wrtvalue.KindFlags:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.Flags)))
		for _, b := range v.Flags {
			if b {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	case wrtvalue.KindV128:
		buf = append(buf, v.V128[:]...)
	}
	return buf
}

func encodeOptPtr(buf []byte, p *wrtvalue.Value) []byte {
	if p == nil {
		return append(buf, 0)
	}
	buf = append(buf, 1)
	return encodeValue(buf, *p)
}

func encodeString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func encodeValueSlice(buf []byte, vs []wrtvalue.Value) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(vs)))
	for _, e := range vs {
		buf = encodeValue(buf, e)
	}
	return buf
}

// valueDecoder walks an encoded value stream, tracking the read cursor —
// a plain cursor rather than re-slicing on every call, since aggregate
// values recurse arbitrarily deep.
type valueDecoder struct {
	data []byte
	pos  int
}

func (d *valueDecoder) u32() (uint32, error) {
	if d.pos+4 > len(d.data) {
		return 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "value stream truncated reading u32")
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *valueDecoder) u64() (uint64, error) {
	if d.pos+8 > len(d.data) {
		return 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "value stream truncated reading u64")
	}
	v := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *valueDecoder) byte1() (byte, error) {
	if d.pos+1 > len(d.data) {
		return 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "value stream truncated reading a byte")
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *valueDecoder) bytes(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "value stream truncated reading raw bytes")
	}
	v := d.data[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

func (d *valueDecoder) str() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	b, err := d.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *valueDecoder) value() (wrtvalue.Value, error) {
	kindByte, err := d.byte1()
	if err != nil {
		return wrtvalue.Value{}, err
	}
	kind := wrtvalue.Kind(kindByte)
	v := wrtvalue.Value{Kind: kind}

	switch kind {
	case wrtvalue.KindBool, wrtvalue.KindS8, wrtvalue.KindU8, wrtvalue.KindS16, wrtvalue.KindU16,
		wrtvalue.KindS32, wrtvalue.KindU32, wrtvalue.KindS64, wrtvalue.KindU64,
		wrtvalue.KindF32, wrtvalue.KindF64, wrtvalue.KindChar, wrtvalue.KindFuncRef, wrtvalue.KindExternRef:
		v.Bits64, err = d.u64()
	case wrtvalue.KindString:
		v.Str, err = d.str()
	case wrtvalue.KindList:
		v.List, err = d.valueSlice()
	case wrtvalue.KindRecord:
		var n uint32
		if n, err = d.u32(); err != nil {
			break
		}
		v.Fields = make([]wrtvalue.Field, n)
		for i := range v.Fields {
			if v.Fields[i].Name, err = d.str(); err != nil {
				break
			}
			if v.Fields[i].Value, err = d.value(); err != nil {
				break
			}
		}
	case wrtvalue.KindTuple:
		v.Tuple, err = d.valueSlice()
	case wrtvalue.KindOption:
		v.Option, err = d.optValue()
	case wrtvalue.KindResult:
		var hasOK byte
		if hasOK, err = d.byte1(); err != nil {
			break
		}
		if hasOK == 1 {
			var ok wrtvalue.Value
			if ok, err = d.value(); err != nil {
				break
			}
			v.OK = &ok
		} else {
			v.Err, err = d.optValue()
		}
	case wrtvalue.KindVariant:
		if v.Case, err = d.u32(); err != nil {
			break
		}
		v.Option, err = d.optValue()
	case wrtvalue.KindEnum:
		if v.Case, err = d.u32(); err != nil {
			break
		}
		v.Bits64, err = d.u64()
	case wrtvalue.KindFlags:
		var n uint32
		if n, err = d.u32(); err != nil {
			break
		}
		v.Flags = make([]bool, n)
		for i := range v.Flags {
			var b byte
			if b, err = d.byte1(); err != nil {
				break
			}
			v.Flags[i] = b != 0
		}
	case wrtvalue.KindV128:
		var b []byte
		if b, err = d.bytes(16); err != nil {
			break
		}
		copy(v.V128[:], b)
	default:
		err = wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "unknown value kind in snapshot")
	}
	if err != nil {
		return wrtvalue.Value{}, err
	}
	return v, nil
}

func (d *valueDecoder) optValue() (*wrtvalue.Value, error) {
	tag, err := d.byte1()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *valueDecoder) valueSlice() ([]wrtvalue.Value, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	out := make([]wrtvalue.Value, n)
	for i := range out {
		if out[i], err = d.value(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
