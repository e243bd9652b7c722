// Package wrtvalue implements the Value tagged union and ValueType closed
// enum of spec §3 ("Data Model" / "Value", "ValueType") — the Component
// Model's value vocabulary layered over api.ValueType's four WebAssembly
// core numeric kinds.
//
// Grounded on wazero's api.ValueType (the core four kinds plus funcref/
// externref) extended the way its own internal/wasm package layers richer
// kinds (v128, multi-value) over the public api surface — Value here plays
// the role api.ValueType plays for the host boundary, but carries an actual
// payload rather than being a single-byte descriptor.
package wrtvalue

import (
	"math"

	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Kind discriminates Value's tagged union, closed per spec §3.
type Kind uint8

const (
	KindBool Kind = iota
	KindS8
	KindU8
	KindS16
	KindU16
	KindS32
	KindU32
	KindS64
	KindU64
	KindF32
	KindF64
	KindChar
	KindString
	KindList
	KindRecord
	KindTuple
	KindOption
	KindResult
	KindVariant
	KindEnum
	KindFlags
	KindFuncRef
	KindExternRef
	KindV128
)

// Field is one (name, Value) pair of a Record.
type Field struct {
	Name  string
	Value Value
}

// Value is the tagged union of spec §3. Numeric payloads are stored as raw
// bit patterns (Bits64) to preserve NaN payloads through float operations,
// exactly as spec §4.3 requires ("NaN payloads are preserved through
// bit-level storage").
type Value struct {
	Kind Kind

	Bits64 uint64 // Bool, S8..U64, F32, F64, Char, Enum case index, FuncRef index
	Str    string // String
	List   []Value
	Fields []Field  // Record
	Tuple  []Value  // Tuple
	Option *Value   // Option: nil == none
	OK     *Value   // Result: non-nil == ok(OK)
	Err    *Value   // Result: non-nil == err(Err)
	Case   uint32   // Variant/Enum case index
	Flags  []bool   // Flags, one bit per declared flag
	V128   [16]byte // SIMD lane storage
}

func Bool(v bool) Value {
	var b uint64
	if v {
		b = 1
	}
	return Value{Kind: KindBool, Bits64: b}
}

func (v Value) AsBool() bool { return v.Bits64 != 0 }

func S32(v int32) Value  { return Value{Kind: KindS32, Bits64: uint64(uint32(v))} }
func U32(v uint32) Value { return Value{Kind: KindU32, Bits64: uint64(v)} }
func S64(v int64) Value  { return Value{Kind: KindS64, Bits64: uint64(v)} }
func U64(v uint64) Value { return Value{Kind: KindU64, Bits64: v} }

func (v Value) AsS32() int32  { return int32(uint32(v.Bits64)) }
func (v Value) AsU32() uint32 { return uint32(v.Bits64) }
func (v Value) AsS64() int64  { return int64(v.Bits64) }
func (v Value) AsU64() uint64 { return v.Bits64 }

// F32/F64 store the IEEE-754 bit pattern, per spec §4.3's NaN-payload
// preservation requirement — never round-trip through a Go float directly
// if the bits might carry a signaling NaN.
func F32(v float32) Value { return Value{Kind: KindF32, Bits64: uint64(math.Float32bits(v))} }
func F64(v float64) Value { return Value{Kind: KindF64, Bits64: math.Float64bits(v)} }

func (v Value) AsF32() float32 { return math.Float32frombits(uint32(v.Bits64)) }
func (v Value) AsF64() float64 { return math.Float64frombits(v.Bits64) }

// Char constructs a Value from a Unicode scalar, trapping on surrogates or
// out-of-range code points per spec §4.4's lift rule for Char.
func Char(codepoint uint32) (Value, error) {
	if codepoint > 0x10FFFF || (codepoint >= 0xD800 && codepoint <= 0xDFFF) {
		return Value{}, wrterror.Trap(wrterror.CodeSurrogateInChar, "char code point is a surrogate or out of range")
	}
	return Value{Kind: KindChar, Bits64: uint64(codepoint)}, nil
}

func (v Value) AsChar() rune { return rune(v.Bits64) }

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func List(elems []Value) Value { return Value{Kind: KindList, List: elems} }

func Record(fields []Field) Value { return Value{Kind: KindRecord, Fields: fields} }

func Tuple(elems []Value) Value { return Value{Kind: KindTuple, Tuple: elems} }

func None() Value          { return Value{Kind: KindOption} }
func Some(v Value) Value   { return Value{Kind: KindOption, Option: &v} }
func (v Value) IsSome() bool { return v.Kind == KindOption && v.Option != nil }

func Ok(v Value) Value  { return Value{Kind: KindResult, OK: &v} }
func ErrVal(v Value) Value { return Value{Kind: KindResult, Err: &v} }
func (v Value) IsOk() bool { return v.Kind == KindResult && v.OK != nil }

func Variant(caseIdx uint32, payload *Value) Value {
	v := Value{Kind: KindVariant, Case: caseIdx}
	if payload != nil {
		v.Option = payload
	}
	return v
}

func Enum(caseIdx uint32) Value { return Value{Kind: KindEnum, Case: caseIdx, Bits64: uint64(caseIdx)} }

func Flags(bits []bool) Value { return Value{Kind: KindFlags, Flags: bits} }

func FuncRef(index uint32, isNull bool) Value {
	v := Value{Kind: KindFuncRef, Bits64: uint64(index)}
	if isNull {
		v.Bits64 = math.MaxUint64
	}
	return v
}

func (v Value) IsNullFuncRef() bool { return v.Kind == KindFuncRef && v.Bits64 == math.MaxUint64 }

func ExternRef(handle uintptr) Value { return Value{Kind: KindExternRef, Bits64: uint64(handle)} }

func V128(bytes [16]byte) Value { return Value{Kind: KindV128, V128: bytes} }
