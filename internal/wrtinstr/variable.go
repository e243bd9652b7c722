package wrtinstr

// LocalGet pushes the current value of local idx, local.get.
func LocalGet(ctx Context, idx uint32) error {
	ctx.Push(ctx.Local(idx))
	return nil
}

// LocalSet pops a value and stores it to local idx, local.set.
func LocalSet(ctx Context, idx uint32) error {
	ctx.SetLocal(idx, ctx.Pop())
	return nil
}

// LocalTee stores the top-of-stack value to local idx without popping it,
// local.tee.
func LocalTee(ctx Context, idx uint32) error {
	v := ctx.Pop()
	ctx.SetLocal(idx, v)
	ctx.Push(v)
	return nil
}

// GlobalGet pushes the current value of global idx, global.get.
func GlobalGet(ctx Context, idx uint32) error {
	ctx.Push(ctx.Global(idx))
	return nil
}

// GlobalSet pops a value and stores it to global idx, global.set.
func GlobalSet(ctx Context, idx uint32) error {
	ctx.SetGlobal(idx, ctx.Pop())
	return nil
}
