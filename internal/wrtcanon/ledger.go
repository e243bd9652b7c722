// Package wrtcanon implements the Canonical ABI of spec §4.4: lifting and
// lowering of Component Model values across the host/guest linear-memory
// boundary, per-instance reallocation accounting, and encoding-aware string
// transcoding.
//
// Grounded on original_source/wrt-component/src/canonical_abi/host_abi.rs
// and canonical_realloc_example.rs for the realloc ledger shape (ptr, size,
// align) keyed per instance, and on wazero's api.ValueType encoding
// constants (little-endian, natural alignment) for the wire layout this
// package writes into guest memory.
package wrtcanon

import (
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Alloc is one entry of the realloc ledger, spec §3 "Canonical-ABI
// allocation record": "(component_instance, pointer, size, alignment)".
type Alloc struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// ReallocFunc is the instance's registered realloc export, spec §4.4: "using
// the instance's registered realloc to grow or allocate buffers for
// strings, lists, and records." oldPtr==0 && oldSize==0 requests a fresh
// allocation; newSize==0 requests deallocation (shrink-to-zero).
type ReallocFunc func(oldPtr, oldSize, align, newSize uint32) (uint32, error)

// ReallocLedger tracks every allocation a lift/lower pass makes for one
// component instance, per spec §4.4 "Realloc accounting": "records (ptr,
// size, align) on every allocate, updates on every realloc, and removes on
// every deallocate."
type ReallocLedger struct {
	instanceID      uint32
	realloc         ReallocFunc
	live            map[uint32]Alloc
	totalAllocs     uint64
	totalDeallocs   uint64
	totalBytesAlloc uint64
	liveBytes       uint64
	peakLiveBytes   uint64
}

// NewReallocLedger constructs a ledger bound to one component instance's
// realloc export.
func NewReallocLedger(instanceID uint32, realloc ReallocFunc) *ReallocLedger {
	return &ReallocLedger{instanceID: instanceID, realloc: realloc, live: map[uint32]Alloc{}}
}

// Allocate requests size bytes aligned to align, recording the result.
func (l *ReallocLedger) Allocate(size, align uint32) (uint32, error) {
	ptr, err := l.realloc(0, 0, align, size)
	if err != nil {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeReallocFailed, "realloc allocate failed")
	}
	l.live[ptr] = Alloc{Ptr: ptr, Size: size, Align: align}
	l.totalAllocs++
	l.totalBytesAlloc += uint64(size)
	l.liveBytes += uint64(size)
	if l.liveBytes > l.peakLiveBytes {
		l.peakLiveBytes = l.liveBytes
	}
	return ptr, nil
}

// Realloc grows or shrinks an existing allocation, updating the ledger
// entry in place.
func (l *ReallocLedger) Realloc(ptr uint32, newSize uint32) (uint32, error) {
	old, ok := l.live[ptr]
	if !ok {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeCrossInstancePointer, "realloc of pointer not owned by this instance's ledger")
	}
	newPtr, err := l.realloc(old.Ptr, old.Size, old.Align, newSize)
	if err != nil {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeReallocFailed, "realloc grow/shrink failed")
	}
	delete(l.live, ptr)
	l.liveBytes -= uint64(old.Size)
	l.liveBytes += uint64(newSize)
	if l.liveBytes > l.peakLiveBytes {
		l.peakLiveBytes = l.liveBytes
	}
	l.live[newPtr] = Alloc{Ptr: newPtr, Size: newSize, Align: old.Align}
	return newPtr, nil
}

// Deallocate frees ptr via the shrink-to-zero convention, spec §4.4
// "Post-return... frees each recorded allocation via the instance's
// realloc shrink-to-zero convention."
func (l *ReallocLedger) Deallocate(ptr uint32) error {
	old, ok := l.live[ptr]
	if !ok {
		return wrterror.New(wrterror.CategoryResource, wrterror.CodeCrossInstancePointer, "deallocate of pointer not owned by this instance's ledger")
	}
	if _, err := l.realloc(old.Ptr, old.Size, old.Align, 0); err != nil {
		return wrterror.New(wrterror.CategoryResource, wrterror.CodeReallocFailed, "realloc deallocate failed")
	}
	delete(l.live, ptr)
	l.totalDeallocs++
	l.liveBytes -= uint64(old.Size)
	return nil
}

// Stats reports the ledger's running totals, spec §4.4 "Metrics: total
// allocations, total deallocations, total bytes allocated, peak live
// bytes."
type Stats struct {
	TotalAllocations   uint64
	TotalDeallocations uint64
	TotalBytesAlloc    uint64
	PeakLiveBytes      uint64
}

func (l *ReallocLedger) Stats() Stats {
	return Stats{
		TotalAllocations:   l.totalAllocs,
		TotalDeallocations: l.totalDeallocs,
		TotalBytesAlloc:    l.totalBytesAlloc,
		PeakLiveBytes:      l.peakLiveBytes,
	}
}

// LiveAllocations returns every allocation this ledger still owns, in
// most-recent-first order for post-return cleanup (spec §4.4 "Order: most
// recent first").
func (l *ReallocLedger) LiveAllocations() []Alloc {
	out := make([]Alloc, 0, len(l.live))
	for _, a := range l.live {
		out = append(out, a)
	}
	// Map iteration order is unspecified; sort descending by Ptr as a stable
	// proxy for allocation recency (reallocs reassign Ptr on grow/shrink, so
	// a larger Ptr value correlates with a more recent allocation in the
	// bump-style realloc this ledger assumes).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Ptr < out[j].Ptr; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
