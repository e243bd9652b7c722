package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// BoundedSlice is a read-only, non-owning view over a contiguous run of
// serialized elements inside a Provider, spec §4.2's "borrowed read-only
// window" distinct from the owning collections above: it holds a reference
// to a provider and an element range rather than allocating its own
// storage.
type BoundedSlice[T any] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	start    int // element index, not byte offset
	length   int
}

// NewBoundedSlice constructs a BoundedSlice over [start, start+length)
// elements of p, validating the range eagerly so an out-of-bounds view can
// never be constructed.
func NewBoundedSlice[T any](p wrtcap.Provider, codec Codec[T], start, length int) (BoundedSlice[T], error) {
	if _, err := p.Borrow(start*codec.Size, length*codec.Size); err != nil {
		return BoundedSlice[T]{}, err
	}
	return BoundedSlice[T]{provider: p, codec: codec, start: start, length: length}, nil
}

func (s BoundedSlice[T]) Len() int      { return s.length }
func (s BoundedSlice[T]) IsEmpty() bool { return s.length == 0 }

// Get returns the element at logical index i.
func (s BoundedSlice[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= s.length {
		return zero, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded slice index out of range")
	}
	raw, err := s.provider.Borrow((s.start+i)*s.codec.Size, s.codec.Size)
	if err != nil {
		return zero, err
	}
	return s.codec.Decode(raw), nil
}

// SplitAt divides the slice into [0, i) and [i, len) without copying.
func (s BoundedSlice[T]) SplitAt(i int) (left, right BoundedSlice[T], err error) {
	if i < 0 || i > s.length {
		return BoundedSlice[T]{}, BoundedSlice[T]{}, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded slice split index out of range")
	}
	left = BoundedSlice[T]{provider: s.provider, codec: s.codec, start: s.start, length: i}
	right = BoundedSlice[T]{provider: s.provider, codec: s.codec, start: s.start + i, length: s.length - i}
	return left, right, nil
}

// Iter visits every element in order, stopping and returning the visitor's
// error, if any.
func (s BoundedSlice[T]) Iter(visit func(i int, value T) error) error {
	for i := 0; i < s.length; i++ {
		v, err := s.Get(i)
		if err != nil {
			return err
		}
		if err := visit(i, v); err != nil {
			return err
		}
	}
	return nil
}
