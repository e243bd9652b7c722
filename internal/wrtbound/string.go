package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// BoundedString is a capacity-bounded, UTF-8 byte buffer — spec §4.2's
// fixed-capacity string, specialized so that capacity is a byte count rather
// than a rune count (matching how Rust's heapless::String<N> is sized).
type BoundedString struct {
	provider wrtcap.Provider
	capacity int
	length   int
	level    wrtcap.VerificationLevel
	checksum uint64
}

// NewBoundedString allocates a BoundedString able to hold up to capacity
// bytes.
func NewBoundedString(ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, profile wrtcap.Profile) (*BoundedString, error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity), profile)
	if err != nil {
		return nil, err
	}
	return &BoundedString{provider: p, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (s *BoundedString) Len() int      { return s.length }
func (s *BoundedString) Capacity() int { return s.capacity }
func (s *BoundedString) IsEmpty() bool { return s.length == 0 }

func (s *BoundedString) recomputeChecksum() {
	if s.level < wrtcap.VerificationStandard {
		return
	}
	raw, err := s.provider.Borrow(0, s.length)
	if err != nil {
		return
	}
	s.checksum = wrtcap.Checksum(raw)
}

func (s *BoundedString) validate() error {
	if s.level < wrtcap.VerificationStandard {
		return nil
	}
	raw, err := s.provider.Borrow(0, s.length)
	if err != nil {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeIntegrityCheckFailed, "bounded string provider shrank")
	}
	if wrtcap.Checksum(raw) != s.checksum {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeChecksumMismatch, "bounded string checksum mismatch")
	}
	return nil
}

// PushStr appends text to the string. Fails with CapacityExceeded and leaves
// the string unchanged if the combined length would exceed capacity.
func (s *BoundedString) PushStr(text string) error {
	if s.length+len(text) > s.capacity {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded string would exceed capacity")
	}
	if err := s.provider.Write(s.length, []byte(text)); err != nil {
		return err
	}
	s.length += len(text)
	s.recomputeChecksum()
	return nil
}

// Truncate shrinks the string to at most n bytes. It is a no-op if the
// string is already shorter than n.
func (s *BoundedString) Truncate(n int) error {
	if n < 0 {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "truncate length must be non-negative")
	}
	if n >= s.length {
		return nil
	}
	s.length = n
	s.recomputeChecksum()
	return nil
}

// Clear empties the string without releasing its backing allocation.
func (s *BoundedString) Clear() {
	s.length = 0
	s.recomputeChecksum()
}

// AsString materializes the current contents, revalidating the checksum
// first when the provider's verification level requires it.
func (s *BoundedString) AsString() (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}
	raw, err := s.provider.Borrow(0, s.length)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
