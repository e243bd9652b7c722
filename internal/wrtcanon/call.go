package wrtcanon

import "github.com/pulseengine/wrt-go/internal/wrtvalue"

// maxDirectResults is the largest result count the canonical ABI returns
// directly on the core value stack before switching to the retptr
// convention, per spec §4.4: "functions with more than one result value (or
// any aggregate result) return via a caller-allocated pointer (retptr)
// rather than flattening onto the core value stack."
const maxDirectResults = 1

// NeedsRetPtr reports whether a function returning results must use the
// retptr convention instead of direct value-stack results.
func NeedsRetPtr(results []wrtvalue.ValueType) bool {
	if len(results) > maxDirectResults {
		return true
	}
	for _, r := range results {
		switch r.Kind {
		case wrtvalue.KindRecord, wrtvalue.KindTuple, wrtvalue.KindList, wrtvalue.KindString,
			wrtvalue.KindVariant, wrtvalue.KindOption, wrtvalue.KindResult, wrtvalue.KindFlags:
			return true
		}
	}
	return false
}

// RetAreaLayout computes the byte size and alignment of the caller-allocated
// return area for a sequence of result types, laid out at successive
// natural-alignment offsets exactly like a Record's fields (spec §4.4:
// "the retptr area is laid out as an anonymous record of the result
// types").
func RetAreaLayout(results []wrtvalue.ValueType) (size, align uint32) {
	align = 1
	var cur uint32
	for _, r := range results {
		a := Align(r)
		align = max32(align, a)
		cur = alignUp(cur, a)
		cur += Size(r)
	}
	return alignUp(cur, align), align
}

// LowerArgs lowers a sequence of argument values into mem starting at
// offset, using successive natural-alignment slots (the same layout rule
// the retptr area uses for results).
func (lc *LowerContext) LowerArgs(offset uint32, types []wrtvalue.ValueType, args []wrtvalue.Value) error {
	var cur uint32
	for i, t := range types {
		cur = alignUp(cur, Align(t))
		if err := lc.Lower(offset+cur, t, args[i]); err != nil {
			return err
		}
		cur += Size(t)
	}
	return nil
}

// LiftResults reads back a retptr-convention result area written by a
// callee, the read-side counterpart of LowerArgs.
func (lc *LiftContext) LiftResults(offset uint32, types []wrtvalue.ValueType) ([]wrtvalue.Value, error) {
	out := make([]wrtvalue.Value, len(types))
	var cur uint32
	for i, t := range types {
		cur = alignUp(cur, Align(t))
		v, err := lc.Lift(offset+cur, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
		cur += Size(t)
	}
	return out, nil
}
