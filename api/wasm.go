// Package api holds the public value-model facade: type aliases over
// internal/wrtvalue so embedders can reference argument/result types without
// importing an internal package. It carries no logic of its own — every
// constructor and accessor lives on the aliased internal/wrtvalue types and
// is simply visible here under its public name, the same facade role
// tetratelabs-wazero's own api package plays over its internal/wasm types.
package api

import "github.com/pulseengine/wrt-go/internal/wrtvalue"

// Kind discriminates the variant stored in a Value, spec.md §3's closed
// value-type union (primitives, string, and the Component Model's
// list/record/tuple/option/result/variant/enum/flags aggregates).
type Kind = wrtvalue.Kind

// ValueType describes the static type of one value: its Kind plus whichever
// aggregate shape (field/case list) that Kind carries.
type ValueType = wrtvalue.ValueType

// FuncType is a function signature: ordered parameter and result types.
type FuncType = wrtvalue.FuncType

// Value is a single WebAssembly Core or Component Model value, tagged by
// Kind. Construct one with the wrtvalue package's constructors (S32, U32,
// String, Record, ...), re-exported here as api.S32, api.U32, and so on.
type Value = wrtvalue.Value

// Field is one named member of a Record value.
type Field = wrtvalue.Field

const (
	KindBool      = wrtvalue.KindBool
	KindS8        = wrtvalue.KindS8
	KindU8        = wrtvalue.KindU8
	KindS16       = wrtvalue.KindS16
	KindU16       = wrtvalue.KindU16
	KindS32       = wrtvalue.KindS32
	KindU32       = wrtvalue.KindU32
	KindS64       = wrtvalue.KindS64
	KindU64       = wrtvalue.KindU64
	KindF32       = wrtvalue.KindF32
	KindF64       = wrtvalue.KindF64
	KindChar      = wrtvalue.KindChar
	KindString    = wrtvalue.KindString
	KindList      = wrtvalue.KindList
	KindRecord    = wrtvalue.KindRecord
	KindTuple     = wrtvalue.KindTuple
	KindOption    = wrtvalue.KindOption
	KindResult    = wrtvalue.KindResult
	KindVariant   = wrtvalue.KindVariant
	KindEnum      = wrtvalue.KindEnum
	KindFlags     = wrtvalue.KindFlags
	KindFuncRef   = wrtvalue.KindFuncRef
	KindExternRef = wrtvalue.KindExternRef
	KindV128      = wrtvalue.KindV128
)

// Bool, S32, U32, S64, U64, F32, F64, Char, StringOf, ListOf, RecordOf,
// TupleOf, None, Some, Ok, ErrVal, Variant, Enum, Flags are re-exported
// constructors (StringOf/ListOf/RecordOf/TupleOf wrap String/List/Record/
// Tuple); see
// internal/wrtvalue for their documentation.
var (
	Bool     = wrtvalue.Bool
	S32      = wrtvalue.S32
	U32      = wrtvalue.U32
	S64      = wrtvalue.S64
	U64      = wrtvalue.U64
	F32      = wrtvalue.F32
	F64      = wrtvalue.F64
	Char     = wrtvalue.Char
	StringOf = wrtvalue.String
	ListOf   = wrtvalue.List
	RecordOf = wrtvalue.Record
	TupleOf  = wrtvalue.Tuple
	None     = wrtvalue.None
	Some     = wrtvalue.Some
	Ok       = wrtvalue.Ok
	ErrVal   = wrtvalue.ErrVal
	Variant  = wrtvalue.Variant
	Enum     = wrtvalue.Enum
	Flags    = wrtvalue.Flags
	Primitive = wrtvalue.Primitive
)
