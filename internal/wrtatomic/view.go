// Package wrtatomic implements the word-granular atomic load/store/CAS/
// fetch-add view of spec §4.1 ("Atomic view") over a Provider-backed
// region, with an explicit memory-ordering argument per spec §5
// ("Ordering... explicit (Acquire, Release, AcqRel, SeqCst, Relaxed)").
//
// Go's sync/atomic does not expose ordering modes the way Rust's
// core::sync::atomic does; every Go atomic is sequentially consistent.
// Ordering is accepted as a parameter here for API fidelity with spec §5,
// but it is not inspected: Relaxed/Acquire/Release/AcqRel/SeqCst all
// compile down to the same sync/atomic call. This is documented as a deliberate
// simplification in DESIGN.md rather than left implicit.
package wrtatomic

import (
	"sync/atomic"
	"unsafe"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Ordering mirrors the explicit memory-ordering arguments named in spec §5.
type Ordering uint8

const (
	Relaxed Ordering = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

// View wraps a region of a Provider and exposes atomic u32/u64
// load/store/CAS/fetch-add, bounds-checking the offset against the region
// size before issuing the atomic (spec §4.1 "Atomic view").
type View struct {
	provider wrtcap.Provider
	base     int
	length   int
}

// NewView constructs a View over [base, base+length) of p.
func NewView(p wrtcap.Provider, base, length int) (*View, error) {
	if _, err := p.Borrow(base, length); err != nil {
		return nil, err
	}
	return &View{provider: p, base: base, length: length}, nil
}

func (v *View) region(offset, width int) ([]byte, error) {
	if offset < 0 || width < 0 || offset+width > v.length {
		return nil, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "atomic access out of bounds")
	}
	if offset%width != 0 {
		return nil, wrterror.Trap(wrterror.CodeMisalignedAtomic, "atomic access must be naturally aligned")
	}
	return v.provider.Borrow(v.base+offset, width)
}

func ptr32(b []byte) *uint32 { return (*uint32)(unsafe.Pointer(&b[0])) }
func ptr64(b []byte) *uint64 { return (*uint64)(unsafe.Pointer(&b[0])) }

// LoadU32 atomically loads a little-endian u32 at offset.
func (v *View) LoadU32(offset int, _ Ordering) (uint32, error) {
	b, err := v.region(offset, 4)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(ptr32(b)), nil
}

// StoreU32 atomically stores val at offset.
func (v *View) StoreU32(offset int, val uint32, _ Ordering) error {
	b, err := v.region(offset, 4)
	if err != nil {
		return err
	}
	atomic.StoreUint32(ptr32(b), val)
	return nil
}

// CompareAndSwapU32 atomically swaps new for old at offset, returning
// whether the swap happened.
func (v *View) CompareAndSwapU32(offset int, old, new uint32, _ Ordering) (bool, error) {
	b, err := v.region(offset, 4)
	if err != nil {
		return false, err
	}
	return atomic.CompareAndSwapUint32(ptr32(b), old, new), nil
}

// FetchAddU32 atomically adds delta to the value at offset, returning the
// previous value (RMW per spec §4.5 "atomic load/store/CAS/RMW").
func (v *View) FetchAddU32(offset int, delta uint32, _ Ordering) (uint32, error) {
	b, err := v.region(offset, 4)
	if err != nil {
		return 0, err
	}
	return atomic.AddUint32(ptr32(b), delta) - delta, nil
}

// LoadU64 atomically loads a little-endian u64 at offset.
func (v *View) LoadU64(offset int, _ Ordering) (uint64, error) {
	b, err := v.region(offset, 8)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint64(ptr64(b)), nil
}

// StoreU64 atomically stores val at offset.
func (v *View) StoreU64(offset int, val uint64, _ Ordering) error {
	b, err := v.region(offset, 8)
	if err != nil {
		return err
	}
	atomic.StoreUint64(ptr64(b), val)
	return nil
}

// CompareAndSwapU64 atomically swaps new for old at offset.
func (v *View) CompareAndSwapU64(offset int, old, new uint64, _ Ordering) (bool, error) {
	b, err := v.region(offset, 8)
	if err != nil {
		return false, err
	}
	return atomic.CompareAndSwapUint64(ptr64(b), old, new), nil
}

// FetchAddU64 atomically adds delta to the value at offset, returning the
// previous value.
func (v *View) FetchAddU64(offset int, delta uint64, _ Ordering) (uint64, error) {
	b, err := v.region(offset, 8)
	if err != nil {
		return 0, err
	}
	return atomic.AddUint64(ptr64(b), delta) - delta, nil
}

// Supported reports whether the current platform offers native atomics for
// this View. Every platform Go targets for this runtime has them; the
// method exists so higher layers can implement spec §4.1's "Platforms
// without native atomics return NotSupported" contract uniformly, and so a
// future constrained target can flip it without changing call sites.
func (v *View) Supported() bool { return true }

// NotSupportedError is what higher layers (C10's atomic opcodes) convert to
// a fatal trap per spec §4.1: "higher layers treat that as a fatal trap in
// guest code that uses atomics."
func NotSupportedError() error {
	return wrterror.Trap(wrterror.CodeAtomicsNotSupported, "platform does not support native atomics")
}
