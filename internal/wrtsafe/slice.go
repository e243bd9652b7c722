// Package wrtsafe implements the bounds-checked, integrity-verified slice
// type of spec §4.1 ("Safe slice"): a borrow that, at verification level
// Standard or above, revalidates its parent provider's checksum on every
// access rather than trusting Go's normal slice-aliasing rules, since the
// parent provider can be mutated by code that doesn't hold this particular
// borrow. Below Standard no checksum is kept or checked.
package wrtsafe

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Slice is a borrow (base_ptr, len, verification_level, parent_provider_id)
// per spec §3 "Safe memory handler". Its zero value is not usable; obtain
// one via Borrow.
type Slice struct {
	provider wrtcap.Provider
	offset   int
	length   int
	level    wrtcap.VerificationLevel
	checksum uint64
	accesses uint64 // access counter, spec §3 Memory "atomic access counter" analogue for slices
}

// Borrow constructs a Slice over [offset, offset+length) of p, recording
// the checksum at borrow time so Bytes can detect a provider mutated out
// from under this borrow (verification levels Standard and above).
func Borrow(p wrtcap.Provider, offset, length int) (*Slice, error) {
	raw, err := p.Borrow(offset, length)
	if err != nil {
		return nil, err
	}
	level := p.VerificationLevel()
	var sum uint64
	if level >= wrtcap.VerificationStandard {
		sum = wrtcap.Checksum(raw)
	}
	return &Slice{
		provider: p,
		offset:   offset,
		length:   length,
		level:    level,
		checksum: sum,
	}, nil
}

// Len reports the borrow's length in bytes.
func (s *Slice) Len() int { return s.length }

// Bytes returns the borrowed region, revalidating the integrity checksum
// first when the verification level is Standard or above. Per spec §4.1:
// "An invalid slice is a fatal integrity error, never a recoverable
// result" — callers must treat a non-nil error here as
// SeverityFatalInstance, not something to retry.
func (s *Slice) Bytes() ([]byte, error) {
	raw, err := s.provider.Borrow(s.offset, s.length)
	if err != nil {
		return nil, wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeSliceOutlivedProvider,
			"safe slice's backing provider shrank below the borrow's range")
	}
	s.accesses++
	if s.level >= wrtcap.VerificationStandard {
		if wrtcap.Checksum(raw) != s.checksum {
			return nil, wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeChecksumMismatch,
				"safe slice checksum mismatch: parent provider mutated since borrow")
		}
	}
	return raw, nil
}

// Refresh re-derives the checksum from the provider's current contents.
// Call this after a deliberate, authorized mutation through this same
// Slice (e.g. a store instruction writing through it) so the next Bytes
// call doesn't spuriously fail.
func (s *Slice) Refresh() error {
	raw, err := s.provider.Borrow(s.offset, s.length)
	if err != nil {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeSliceOutlivedProvider, "refresh on dead provider")
	}
	if s.level >= wrtcap.VerificationStandard {
		s.checksum = wrtcap.Checksum(raw)
	}
	return nil
}

// AccessCount returns the number of successful Bytes calls, the "access
// counter" of spec §3 "Memory".
func (s *Slice) AccessCount() uint64 { return s.accesses }

// SplitAt divides the slice into [0,i) and [i,length) without copying,
// matching the BoundedSlice.split_at operation described for
// pulseengine/wrt's bounded_slice.rs and spec §4.2 "Slice-like views".
func (s *Slice) SplitAt(i int) (left, right *Slice, err error) {
	if i < 0 || i > s.length {
		return nil, nil, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "split_at index out of range")
	}
	left, err = Borrow(s.provider, s.offset, i)
	if err != nil {
		return nil, nil, err
	}
	right, err = Borrow(s.provider, s.offset+i, s.length-i)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
