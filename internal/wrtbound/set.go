package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Set is a capacity-bounded set, the keys-only specialization of Map (spec
// §4.2 "Keyed collections" applies the same linear-search trade-off).
type Set[T comparable] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	capacity int
	length   int
	level    wrtcap.VerificationLevel
	checksum uint64
}

// NewSet allocates a Set able to hold up to capacity distinct elements.
func NewSet[T comparable](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, codec Codec[T], profile wrtcap.Profile) (*Set[T], error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*codec.Size), profile)
	if err != nil {
		return nil, err
	}
	return &Set[T]{provider: p, codec: codec, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (s *Set[T]) Len() int      { return s.length }
func (s *Set[T]) Capacity() int { return s.capacity }
func (s *Set[T]) IsEmpty() bool { return s.length == 0 }

func (s *Set[T]) slotOffset(i int) int { return i * s.codec.Size }

func (s *Set[T]) recomputeChecksum() {
	if s.level < wrtcap.VerificationStandard {
		return
	}
	raw, err := s.provider.Borrow(0, s.length*s.codec.Size)
	if err != nil {
		return
	}
	s.checksum = wrtcap.Checksum(raw)
}

func (s *Set[T]) indexOf(value T) (int, error) {
	for i := 0; i < s.length; i++ {
		raw, err := s.provider.Borrow(s.slotOffset(i), s.codec.Size)
		if err != nil {
			return -1, err
		}
		if s.codec.Decode(raw) == value {
			return i, nil
		}
	}
	return -1, nil
}

// Contains reports whether value is a member.
func (s *Set[T]) Contains(value T) (bool, error) {
	idx, err := s.indexOf(value)
	return idx >= 0, err
}

// Insert adds value if absent. Returns false (no error) if value was
// already a member. Fails with CapacityExceeded if the set is full and
// value is new.
func (s *Set[T]) Insert(value T) (bool, error) {
	idx, err := s.indexOf(value)
	if err != nil {
		return false, err
	}
	if idx >= 0 {
		return false, nil
	}
	if s.length == s.capacity {
		return false, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded set at capacity")
	}
	buf := make([]byte, s.codec.Size)
	s.codec.Encode(value, buf)
	if err := s.provider.Write(s.slotOffset(s.length), buf); err != nil {
		return false, err
	}
	s.length++
	s.recomputeChecksum()
	return true, nil
}

// Remove deletes value if present, compacting the slot array.
func (s *Set[T]) Remove(value T) (bool, error) {
	idx, err := s.indexOf(value)
	if err != nil || idx < 0 {
		return false, err
	}
	if idx < s.length-1 {
		if err := s.provider.CopyWithin(s.slotOffset(idx), s.slotOffset(idx+1), (s.length-idx-1)*s.codec.Size); err != nil {
			return false, err
		}
	}
	s.length--
	s.recomputeChecksum()
	return true, nil
}

// ForEach visits every member in storage order.
func (s *Set[T]) ForEach(visit func(value T) error) error {
	for i := 0; i < s.length; i++ {
		raw, err := s.provider.Borrow(s.slotOffset(i), s.codec.Size)
		if err != nil {
			return err
		}
		if err := visit(s.codec.Decode(raw)); err != nil {
			return err
		}
	}
	return nil
}
