// Package wrtinstance implements the linked module instance of spec §4
// ("Module instance: functions, globals, memories, tables, element/data
// segments"): turning a decoded core module into runnable, owned state and
// applying its segment initializers and start function.
//
// DecodedModule stands in for the binary decoder's output, which spec.md
// scopes out as an external concern — this package consumes whatever shape
// that decoder produces, the same way tetratelabs-wazero's wasm.Module (the
// decoder's output) feeds wasm.ModuleInstance (the linked, running form).
//
// Grounded on tetratelabs-wazero's internal/wasm ModuleInstance/Store
// instantiation path: applyData/applyElements/validateElements walk
// constant-expression offsets and copy into already-allocated memory/table
// storage in declaration order, exactly mirrored here.
package wrtinstance

import (
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// DataSegment is one decoded passive-or-active data segment. OffsetExpr is
// nil for a passive segment (only reachable via memory.init).
type DataSegment struct {
	OffsetExpr *ConstExpr
	Init       []byte
}

// ElementSegment is one decoded passive-or-active element segment.
// OffsetExpr is nil for a passive segment (only reachable via table.init).
type ElementSegment struct {
	OffsetExpr *ConstExpr
	TableIndex uint32
	Init       []wrtvalue.Value
}

// ConstExpr is a constant initializer expression: an i32/i64 const, or a
// global.get of an already-initialized earlier global, per spec §4.8
// "element and data segment initializers...may execute constant
// expressions against partially-initialized globals in declaration order."
type ConstExpr struct {
	Kind      ConstExprKind
	Value     wrtvalue.Value
	GlobalIdx uint32
}

type ConstExprKind uint8

const (
	ConstExprValue ConstExprKind = iota
	ConstExprGlobalGet
)

// MemoryLimits/TableLimits describe a declared memory or table before
// allocation; mirrors the decoded module's own limits records.
type MemoryLimits struct {
	Min, Max uint32
	HasMax   bool
}

type TableLimits struct {
	RefKind  wrtvalue.Kind
	Min, Max uint32
	HasMax   bool
}

// GlobalDef is one declared global: its type, mutability, and constant
// initializer expression.
type GlobalDef struct {
	Type    wrtvalue.ValueType
	Mutable bool
	Init    *ConstExpr
}

// ExportKind distinguishes what an Export name refers to.
type ExportKind uint8

const (
	ExportFunc ExportKind = iota
	ExportGlobal
	ExportMemory
	ExportTable
)

// Export names one of the instance's internal indices.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// Import names an external dependency this module expects its linker to
// resolve before instantiation, spec §4.8 step 1.
type Import struct {
	Module, Name string
	Kind         ExportKind
	Type         wrtvalue.FuncType // meaningful when Kind == ExportFunc
}

// DecodedModule is a fully decoded, not-yet-linked core module: everything
// instantiation needs and nothing the external decoder wouldn't already
// have computed (validation, constant folding).
type DecodedModule struct {
	Types     []wrtvalue.FuncType
	Functions []*wrtengine.Function // index space: imports first, then locally defined
	Globals   []GlobalDef
	Memory    *MemoryLimits
	Tables    []TableLimits
	Data      []DataSegment
	Elements  []ElementSegment
	Exports   []Export
	Imports   []Import
	StartFunc *uint32 // nil if no start function
}
