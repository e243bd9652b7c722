package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Vec is an inline-capacity vector over a Provider, `C<T, N, P>` from spec
// §3 specialized to an ordered, insertion-order-iterated sequence. N is a
// runtime value (NewVec's capacity argument): Go has no const generics, so
// the compile-time capacity of the original is modeled as a constructor
// argument fixed for the collection's lifetime instead — see DESIGN.md.
type Vec[T any] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	capacity int
	length   int
	level    wrtcap.VerificationLevel
	checksum uint64
}

// NewVec allocates a Vec able to hold up to capacity elements, backed by a
// provider obtained through ctx for crate. This is the only allocation path
// bounded collections use — per spec §4.1, "No allocation bypasses this
// path."
func NewVec[T any](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, codec Codec[T], profile wrtcap.Profile) (*Vec[T], error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*codec.Size), profile)
	if err != nil {
		return nil, err
	}
	return &Vec[T]{provider: p, codec: codec, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (v *Vec[T]) Len() int      { return v.length }
func (v *Vec[T]) Capacity() int { return v.capacity }
func (v *Vec[T]) IsEmpty() bool { return v.length == 0 }
func (v *Vec[T]) IsFull() bool  { return v.length == v.capacity }

func (v *Vec[T]) slotOffset(i int) int { return i * v.codec.Size }

// recomputeChecksum covers the entire used region; N is small by design
// (spec §4.2 "Keyed collections": "N is small, typical N ≤ 256"), so a full
// rehash on every mutation is cheap and keeps the invariant simple: the
// checksum always covers exactly the logically-occupied bytes.
func (v *Vec[T]) recomputeChecksum() {
	if v.level < wrtcap.VerificationStandard {
		return
	}
	raw, err := v.provider.Borrow(0, v.length*v.codec.Size)
	if err != nil {
		return
	}
	v.checksum = wrtcap.Checksum(raw)
}

func (v *Vec[T]) validate() error {
	if v.level < wrtcap.VerificationStandard {
		return nil
	}
	raw, err := v.provider.Borrow(0, v.length*v.codec.Size)
	if err != nil {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeIntegrityCheckFailed, "bounded vec provider shrank")
	}
	if wrtcap.Checksum(raw) != v.checksum {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeChecksumMismatch, "bounded vec checksum mismatch")
	}
	return nil
}

// Push appends value. Fails with CategoryCapacity/CodeCapacityExceeded and
// leaves the vector unchanged if it is already full, per spec §4.2
// "No mutation may exceed N".
func (v *Vec[T]) Push(value T) error {
	if v.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded vec at capacity")
	}
	buf := make([]byte, v.codec.Size)
	v.codec.Encode(value, buf)
	if err := v.provider.Write(v.slotOffset(v.length), buf); err != nil {
		return err
	}
	v.length++
	v.recomputeChecksum()
	return nil
}

// Pop removes and returns the last element.
func (v *Vec[T]) Pop() (T, error) {
	var zero T
	if v.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded vec is empty")
	}
	if err := v.validate(); err != nil {
		return zero, err
	}
	raw, err := v.provider.Borrow(v.slotOffset(v.length-1), v.codec.Size)
	if err != nil {
		return zero, err
	}
	out := v.codec.Decode(raw)
	v.length--
	v.recomputeChecksum()
	return out, nil
}

// Get returns the element at i by value (spec §4.2: "get therefore returns
// T by value, not by reference, and there is no Index operation").
func (v *Vec[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= v.length {
		return zero, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded vec index out of range")
	}
	if err := v.validate(); err != nil {
		return zero, err
	}
	raw, err := v.provider.Borrow(v.slotOffset(i), v.codec.Size)
	if err != nil {
		return zero, err
	}
	return v.codec.Decode(raw), nil
}

// Set overwrites the element at i.
func (v *Vec[T]) Set(i int, value T) error {
	if i < 0 || i >= v.length {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded vec index out of range")
	}
	buf := make([]byte, v.codec.Size)
	v.codec.Encode(value, buf)
	if err := v.provider.Write(v.slotOffset(i), buf); err != nil {
		return err
	}
	v.recomputeChecksum()
	return nil
}

// Insert shifts elements at and after i right by one and stores value at i.
func (v *Vec[T]) Insert(i int, value T) error {
	if v.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded vec at capacity")
	}
	if i < 0 || i > v.length {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded vec insert index out of range")
	}
	if i < v.length {
		if err := v.provider.CopyWithin(v.slotOffset(i+1), v.slotOffset(i), (v.length-i)*v.codec.Size); err != nil {
			return err
		}
	}
	buf := make([]byte, v.codec.Size)
	v.codec.Encode(value, buf)
	if err := v.provider.Write(v.slotOffset(i), buf); err != nil {
		return err
	}
	v.length++
	v.recomputeChecksum()
	return nil
}

// Remove deletes the element at i, shifting later elements left.
func (v *Vec[T]) Remove(i int) (T, error) {
	var zero T
	if i < 0 || i >= v.length {
		return zero, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "bounded vec remove index out of range")
	}
	raw, err := v.provider.Borrow(v.slotOffset(i), v.codec.Size)
	if err != nil {
		return zero, err
	}
	out := v.codec.Decode(raw)
	if i < v.length-1 {
		if err := v.provider.CopyWithin(v.slotOffset(i), v.slotOffset(i+1), (v.length-i-1)*v.codec.Size); err != nil {
			return zero, err
		}
	}
	v.length--
	v.recomputeChecksum()
	return out, nil
}

// ForEach iterates elements in insertion order, per spec §4.2 "Iteration
// over ordered containers yields elements in insertion order." Stops and
// returns the visitor's error, if any.
func (v *Vec[T]) ForEach(visit func(i int, value T) error) error {
	if err := v.validate(); err != nil {
		return err
	}
	for i := 0; i < v.length; i++ {
		val, err := v.Get(i)
		if err != nil {
			return err
		}
		if err := visit(i, val); err != nil {
			return err
		}
	}
	return nil
}
