package wrtinstr

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// TableInit pops length, src, dest and copies from element segment elemIdx
// into table tableIdx, trapping CodeElementSegmentDropped if the segment
// was already dropped, table.init.
func TableInit(ctx Context, tableIdx, elemIdx uint32) error {
	length := ctx.Pop().AsU32()
	src := ctx.Pop().AsU32()
	dest := ctx.Pop().AsU32()
	entries, err := ctx.ElemSegment(elemIdx)
	if err != nil {
		return err
	}
	if uint64(src)+uint64(length) > uint64(len(entries)) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "table.init source range exceeds segment length")
	}
	return ctx.Table(tableIdx).Init(dest, entries[src:src+length])
}

// ElemDrop marks element segment elemIdx dropped, elem.drop.
func ElemDrop(ctx Context, elemIdx uint32) error {
	ctx.DropElem(elemIdx)
	return nil
}

// TableCopy pops length, src, dest and copies between (or within) tables,
// table.copy.
func TableCopy(ctx Context, dstTable, srcTable uint32) error {
	length := ctx.Pop().AsU32()
	src := ctx.Pop().AsU32()
	dest := ctx.Pop().AsU32()
	if dstTable == srcTable {
		return ctx.Table(dstTable).Copy(dest, src, length)
	}
	s, d := ctx.Table(srcTable), ctx.Table(dstTable)
	for i := uint32(0); i < length; i++ {
		v, err := s.Get(src + i)
		if err != nil {
			return err
		}
		if err := d.Set(dest+i, v); err != nil {
			return err
		}
	}
	return nil
}

// TableGrow pops init value and delta, pushes the previous size (or -1),
// table.grow.
func TableGrow(ctx Context, tableIdx uint32) error {
	initVal := ctx.Pop()
	delta := ctx.Pop().AsU32()
	result := ctx.Table(tableIdx).Grow(delta, initVal)
	ctx.Push(wrtvalue.S32(int32(result)))
	return nil
}

// TableFill pops length, value, dest and fills, table.fill.
func TableFill(ctx Context, tableIdx uint32) error {
	length := ctx.Pop().AsU32()
	val := ctx.Pop()
	dest := ctx.Pop().AsU32()
	return ctx.Table(tableIdx).Fill(dest, val, length)
}

// TableSize pushes table tableIdx's current element count, table.size.
func TableSize(ctx Context, tableIdx uint32) error {
	ctx.Push(wrtvalue.U32(ctx.Table(tableIdx).Size()))
	return nil
}
