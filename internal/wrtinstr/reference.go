package wrtinstr

import "github.com/pulseengine/wrt-go/internal/wrtvalue"

// RefNull pushes a null reference of the given kind, ref.null.
func RefNull(ctx Context, kind wrtvalue.Kind) error {
	if kind == wrtvalue.KindExternRef {
		ctx.Push(wrtvalue.ExternRef(0))
		return nil
	}
	ctx.Push(wrtvalue.FuncRef(0, true))
	return nil
}

// RefIsNull pops a reference and pushes whether it is null, ref.is_null.
func RefIsNull(ctx Context) error {
	v := ctx.Pop()
	ctx.Push(wrtvalue.Bool(v.IsNullFuncRef() || (v.Kind == wrtvalue.KindExternRef && v.Bits64 == 0)))
	return nil
}

// RefFunc pushes a non-null funcref to funcIdx, ref.func.
func RefFunc(ctx Context, funcIdx uint32) error {
	ctx.Push(wrtvalue.FuncRef(funcIdx, false))
	return nil
}

// TableGet pops an index and pushes table tableIdx's element, table.get.
func TableGet(ctx Context, tableIdx uint32) error {
	idx := ctx.Pop().AsU32()
	v, err := ctx.Table(tableIdx).Get(idx)
	if err != nil {
		return err
	}
	ctx.Push(v)
	return nil
}

// TableSet pops a value then an index and stores it into table tableIdx,
// table.set.
func TableSet(ctx Context, tableIdx uint32) error {
	val := ctx.Pop()
	idx := ctx.Pop().AsU32()
	return ctx.Table(tableIdx).Set(idx, val)
}
