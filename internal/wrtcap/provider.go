package wrtcap

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// MemoryStats reports the usage of a Provider for diagnostics, matching
// spec §3 "MemoryProvider" operation list.
type MemoryStats struct {
	Capacity int
	Used     int
	Level    VerificationLevel
}

// Provider is a fixed-capacity region of memory the rest of the runtime
// borrows slices from. Spec §3 "MemoryProvider": "a provider owns its
// backing bytes exclusively for its lifetime; slices are weak borrows whose
// lifetimes cannot outlive the provider."
//
// Go has no borrow checker, so "cannot outlive" is enforced behaviorally:
// Borrow returns a slice aliasing the provider's backing array, and callers
// must not retain it past a Reclaim/Release of the provider. wrtsafe.Slice
// (internal/wrtsafe) is the supported way to hold a borrow safely, since at
// verification level Standard or above it revalidates a checksum on every
// read rather than trusting the aliasing.
type Provider interface {
	// Capacity is the fixed size in bytes this provider was constructed
	// with. It never changes for the lifetime of the provider.
	Capacity() int
	// UsedHighWaterMark is the highest offset ever passed to EnsureUsedUpTo
	// or implied by a Write.
	UsedHighWaterMark() int
	VerificationLevel() VerificationLevel

	// Borrow returns a weak view of [offset, offset+length). Returns a
	// CategoryMemory/CodeMemoryOutOfBounds error if the range exceeds
	// Capacity.
	Borrow(offset, length int) ([]byte, error)
	// Write copies data into the provider at offset.
	Write(offset int, data []byte) error
	// CopyWithin copies length bytes from src to dst inside the same
	// provider, handling overlap per spec §4.3 "memory.copy".
	CopyWithin(dst, src, length int) error
	// EnsureUsedUpTo raises UsedHighWaterMark to at least n, zero-filling
	// any newly-touched bytes. Fails if n exceeds Capacity.
	EnsureUsedUpTo(n int) error
	Stats() MemoryStats

	// crate and size let CapabilityContext credit the right budget back on
	// Release; only this package's allocator constructs providers, so the
	// fields are unexported.
	crate() CrateID
	size() uint64
}

// checksum computes the integrity checksum of a byte range, shared between
// Provider (who updates it, conceptually, on mutation) and internal/wrtsafe
// (who validates it on read). A simple FNV-1a variant is sufficient here:
// spec's invariant is "detects accidental corruption across layers", not
// cryptographic tamper-resistance.
func checksum(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Checksum exposes checksum for internal/wrtsafe without creating an import
// cycle back into this package's unexported helpers.
func Checksum(b []byte) uint64 { return checksum(b) }

// baseProvider holds the fields common to both provider variants: bounds
// checks, high-water mark tracking, and the crate/size pair used for budget
// release.
type baseProvider struct {
	buf      []byte
	used     int
	level    VerificationLevel
	crateID  CrateID
	sizeBytes uint64
}

func (p *baseProvider) Capacity() int                      { return len(p.buf) }
func (p *baseProvider) UsedHighWaterMark() int              { return p.used }
func (p *baseProvider) VerificationLevel() VerificationLevel { return p.level }
func (p *baseProvider) crate() CrateID                      { return p.crateID }
func (p *baseProvider) size() uint64                        { return p.sizeBytes }

func (p *baseProvider) Stats() MemoryStats {
	return MemoryStats{Capacity: len(p.buf), Used: p.used, Level: p.level}
}

func (p *baseProvider) Borrow(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(p.buf) {
		return nil, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "provider borrow out of bounds")
	}
	return p.buf[offset : offset+length], nil
}

func (p *baseProvider) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > len(p.buf) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "provider write out of bounds")
	}
	copy(p.buf[offset:], data)
	if end := offset + len(data); end > p.used {
		p.used = end
	}
	return nil
}

func (p *baseProvider) CopyWithin(dst, src, length int) error {
	if dst < 0 || src < 0 || length < 0 || dst+length > len(p.buf) || src+length > len(p.buf) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "provider copy out of bounds")
	}
	// Forward/backward dispatch per spec §4.3 "copy handles overlap".
	if dst <= src || dst >= src+length {
		copy(p.buf[dst:dst+length], p.buf[src:src+length])
	} else {
		for i := length - 1; i >= 0; i-- {
			p.buf[dst+i] = p.buf[src+i]
		}
	}
	if end := dst + length; end > p.used {
		p.used = end
	}
	return nil
}

func (p *baseProvider) EnsureUsedUpTo(n int) error {
	if n < 0 || n > len(p.buf) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "ensure-used-up-to exceeds capacity")
	}
	if n > p.used {
		for i := p.used; i < n; i++ {
			p.buf[i] = 0
		}
		p.used = n
	}
	return nil
}

// InlineProvider is backed by a buffer allocated exactly once, at
// construction, and never grown. It models the `[u8; N]`-backed region of
// spec §4.1: Go has no const generics to express a compile-time-sized array
// parameterized by N, so the "no further heap growth" guarantee is enforced
// behaviorally (EnsureUsedUpTo/Write/CopyWithin never call append or make)
// rather than by the type system. See DESIGN.md for this trade-off.
type InlineProvider struct{ baseProvider }

// HeapProvider additionally supports growth, and is only constructed in the
// unrestricted (QM) profile per spec §4.1 ("used only in the unrestricted
// profile where dynamic allocation is permitted"). Its read/write surface
// is otherwise identical: code holding a Provider cannot tell which variant
// it has without a type switch, matching "the code cannot assume which
// variant it holds."
type HeapProvider struct{ baseProvider }

// Grow extends the heap provider's capacity by delta bytes, zero-filled.
// Only valid on HeapProvider; InlineProvider has no equivalent method,
// which is the compile-time half of the "inline never grows" guarantee.
func (p *HeapProvider) Grow(delta int) {
	p.buf = append(p.buf, make([]byte, delta)...)
}
