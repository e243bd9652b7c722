package wrtinstr

// Drop discards the top-of-stack value, drop.
func Drop(ctx Context) error {
	ctx.Pop()
	return nil
}

// Select pops condition, val2, val1 (in that order) and pushes val1 if
// condition is nonzero, else val2, select.
func Select(ctx Context) error {
	cond := ctx.Pop()
	val2 := ctx.Pop()
	val1 := ctx.Pop()
	if cond.AsU32() != 0 {
		ctx.Push(val1)
	} else {
		ctx.Push(val2)
	}
	return nil
}
