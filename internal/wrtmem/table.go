package wrtmem

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// RefType is the element type of a Table: FuncRef or ExternRef, per spec §3
// ("Table... whose element type is a RefType").
type RefType uint8

const (
	RefTypeFunc RefType = iota
	RefTypeExtern
)

// Table is an indexed sequence of wrtvalue.Value whose element type is a
// RefType, spec §3's "Table" data model entry. Stored as a plain Go slice
// of Value rather than serialized bytes (unlike internal/wrtbound's
// collections) because table elements are references, not bulk data the
// safety profile needs checksummed byte-for-byte — the owning Memory
// already carries that guarantee for guest-visible bytes.
type Table struct {
	elemType RefType
	elems    []wrtvalue.Value
	maxSize  uint32
}

// NewTable allocates a Table with minSize initial null entries, growable to
// maxSize (0 = unbounded other than the platform cap).
func NewTable(elemType RefType, minSize, maxSize uint32) *Table {
	elems := make([]wrtvalue.Value, minSize)
	for i := range elems {
		elems[i] = nullFor(elemType)
	}
	return &Table{elemType: elemType, elems: elems, maxSize: maxSize}
}

func nullFor(t RefType) wrtvalue.Value {
	if t == RefTypeFunc {
		return wrtvalue.FuncRef(0, true)
	}
	return wrtvalue.Value{Kind: wrtvalue.KindExternRef}
}

func (t *Table) Size() uint32 { return uint32(len(t.elems)) }

// Get implements table.get, trapping out-of-bounds per spec §4.3.
func (t *Table) Get(i uint32) (wrtvalue.Value, error) {
	if i >= uint32(len(t.elems)) {
		return wrtvalue.Value{}, wrterror.Trap(wrterror.CodeInvalidTableAccess, "table.get index out of bounds")
	}
	return t.elems[i], nil
}

func (t *Table) typeCheck(v wrtvalue.Value) error {
	wantKind := wrtvalue.KindFuncRef
	if t.elemType == RefTypeExtern {
		wantKind = wrtvalue.KindExternRef
	}
	if v.Kind != wantKind {
		return wrterror.Trap(wrterror.CodeInvalidTableAccess, "table element type mismatch")
	}
	return nil
}

// Set implements table.set, type-checking v against the table's declared
// element type per spec §4.3: "Type-check on every set and init; mismatch
// is a trap."
func (t *Table) Set(i uint32, v wrtvalue.Value) error {
	if i >= uint32(len(t.elems)) {
		return wrterror.Trap(wrterror.CodeInvalidTableAccess, "table.set index out of bounds")
	}
	if err := t.typeCheck(v); err != nil {
		return err
	}
	t.elems[i] = v
	return nil
}

// Grow implements table.grow: appends delta entries initialized to
// initValue, returning the previous size, or -1 (leaving the table
// untouched) if the new size would exceed maxSize.
func (t *Table) Grow(delta uint32, initValue wrtvalue.Value) int64 {
	newSize := uint32(len(t.elems)) + delta
	if newSize < uint32(len(t.elems)) {
		return -1
	}
	if t.maxSize != 0 && newSize > t.maxSize {
		return -1
	}
	old := uint32(len(t.elems))
	grown := make([]wrtvalue.Value, newSize)
	copy(grown, t.elems)
	for i := old; i < newSize; i++ {
		grown[i] = initValue
	}
	t.elems = grown
	return int64(old)
}

// Fill implements table.fill.
func (t *Table) Fill(offset uint32, value wrtvalue.Value, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(len(t.elems)) {
		return wrterror.Trap(wrterror.CodeInvalidTableAccess, "table.fill out of bounds")
	}
	if err := t.typeCheck(value); err != nil {
		return err
	}
	for i := uint32(0); i < length; i++ {
		t.elems[offset+i] = value
	}
	return nil
}

// Init implements table.init: copies entries from a (possibly dropped)
// element segment into the table.
func (t *Table) Init(offset uint32, entries []wrtvalue.Value) error {
	if uint64(offset)+uint64(len(entries)) > uint64(len(t.elems)) {
		return wrterror.Trap(wrterror.CodeInvalidTableAccess, "table.init out of bounds")
	}
	for _, v := range entries {
		if err := t.typeCheck(v); err != nil {
			return err
		}
	}
	copy(t.elems[offset:], entries)
	return nil
}

// Copy implements table.copy, moving length entries from src to dst within
// the same table, correctly handling overlap.
func (t *Table) Copy(dst, src, length uint32) error {
	if uint64(dst)+uint64(length) > uint64(len(t.elems)) || uint64(src)+uint64(length) > uint64(len(t.elems)) {
		return wrterror.Trap(wrterror.CodeInvalidTableAccess, "table.copy out of bounds")
	}
	if dst <= src {
		copy(t.elems[dst:dst+length], t.elems[src:src+length])
	} else {
		for i := int(length) - 1; i >= 0; i-- {
			t.elems[int(dst)+i] = t.elems[int(src)+i]
		}
	}
	return nil
}
