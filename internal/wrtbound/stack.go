package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Stack is a capacity-bounded LIFO, spec §4.2 "Sequential collections". Its
// storage layout and checksum discipline are identical to Vec's append end;
// it is a distinct type because the spec names push/pop/peek as a closed
// contract separate from Vec's random-access operations.
type Stack[T any] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	capacity int
	length   int
	level    wrtcap.VerificationLevel
	checksum uint64
}

// NewStack allocates a Stack able to hold up to capacity elements.
func NewStack[T any](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, codec Codec[T], profile wrtcap.Profile) (*Stack[T], error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*codec.Size), profile)
	if err != nil {
		return nil, err
	}
	return &Stack[T]{provider: p, codec: codec, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (s *Stack[T]) Len() int      { return s.length }
func (s *Stack[T]) Capacity() int { return s.capacity }
func (s *Stack[T]) IsEmpty() bool { return s.length == 0 }
func (s *Stack[T]) IsFull() bool  { return s.length == s.capacity }

func (s *Stack[T]) slotOffset(i int) int { return i * s.codec.Size }

func (s *Stack[T]) recomputeChecksum() {
	if s.level < wrtcap.VerificationStandard {
		return
	}
	raw, err := s.provider.Borrow(0, s.length*s.codec.Size)
	if err != nil {
		return
	}
	s.checksum = wrtcap.Checksum(raw)
}

func (s *Stack[T]) validate() error {
	if s.level < wrtcap.VerificationStandard {
		return nil
	}
	raw, err := s.provider.Borrow(0, s.length*s.codec.Size)
	if err != nil {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeIntegrityCheckFailed, "bounded stack provider shrank")
	}
	if wrtcap.Checksum(raw) != s.checksum {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeChecksumMismatch, "bounded stack checksum mismatch")
	}
	return nil
}

// Push places value on top. Fails with CapacityExceeded and leaves the
// stack unchanged if it is already full.
func (s *Stack[T]) Push(value T) error {
	if s.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded stack at capacity")
	}
	buf := make([]byte, s.codec.Size)
	s.codec.Encode(value, buf)
	if err := s.provider.Write(s.slotOffset(s.length), buf); err != nil {
		return err
	}
	s.length++
	s.recomputeChecksum()
	return nil
}

// Pop removes and returns the top element.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if s.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded stack is empty")
	}
	if err := s.validate(); err != nil {
		return zero, err
	}
	raw, err := s.provider.Borrow(s.slotOffset(s.length-1), s.codec.Size)
	if err != nil {
		return zero, err
	}
	out := s.codec.Decode(raw)
	s.length--
	s.recomputeChecksum()
	return out, nil
}

// Peek returns the top element without removing it.
func (s *Stack[T]) Peek() (T, error) {
	var zero T
	if s.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded stack is empty")
	}
	if err := s.validate(); err != nil {
		return zero, err
	}
	raw, err := s.provider.Borrow(s.slotOffset(s.length-1), s.codec.Size)
	if err != nil {
		return zero, err
	}
	return s.codec.Decode(raw), nil
}
