// Package wrtmem implements the linear memory and table of spec §4.3
// ("Value, Memory, and Table"), layered on an internal/wrtcap.Provider the
// same way wazero's internal/wasm.MemoryInstance layers bounds-checked
// access over a plain []byte — here the backing bytes additionally carry
// the capability/capacity/checksum guarantees of the bounded-memory
// subsystem.
package wrtmem

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// PageSize is one WebAssembly page, spec §3: "pages for memories where one
// page = 65,536 bytes".
const PageSize = 65536

// Memory is a paged linear memory backed by a Provider, spec §3's "Memory"
// data model entry.
//
// Non-QM profiles preallocate maxPages upfront (InlineProvider never grows
// its backing buffer, per internal/wrtcap's "inline never grows" guarantee)
// so that growth within the declared maximum never needs a reallocation;
// growth past maxPages, or past the capability budget, fails without
// touching state, satisfying spec §4.3's no-allocate-then-fail rule. The QM
// profile instead grows the backing HeapProvider lazily.
type Memory struct {
	provider  wrtcap.Provider
	ctx       *wrtcap.CapabilityContext
	crate     wrtcap.CrateID
	maxPages  uint32
	currPages uint32
	profile   wrtcap.Profile
}

// NewMemory allocates a Memory with minPages initial pages, able to grow to
// maxPages (0 meaning "no declared max" — growth is still bounded by the
// platform/capability budget per spec §4.3).
func NewMemory(ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, minPages, maxPages uint32, profile wrtcap.Profile) (*Memory, error) {
	allocPages := minPages
	if profile != wrtcap.ProfileQM && maxPages > 0 {
		allocPages = maxPages // preallocate the whole bound; inline providers never grow
	}
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(allocPages)*PageSize, profile)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureUsedUpTo(int(minPages) * PageSize); err != nil {
		return nil, err
	}
	return &Memory{provider: p, ctx: ctx, crate: crate, maxPages: maxPages, currPages: minPages, profile: profile}, nil
}

func (m *Memory) SizePages() uint32 { return m.currPages }

// Grow implements memory.grow: returns the previous page count on success,
// or -1 without modifying memory if the new size would exceed maxPages (if
// declared) or the capability budget, per spec §4.3: "the implementation
// must not allocate-then-fail; growth failure leaves state untouched."
func (m *Memory) Grow(deltaPages uint32) int64 {
	newPages := m.currPages + deltaPages
	if newPages < m.currPages { // overflow
		return -1
	}
	if m.maxPages != 0 && newPages > m.maxPages {
		return -1
	}
	neededBytes := int(newPages) * PageSize

	if neededBytes > m.provider.Capacity() {
		heap, ok := m.provider.(*wrtcap.HeapProvider)
		if !ok {
			return -1 // non-QM profile: backing buffer is fixed, bound already exhausted
		}
		extra := uint64(neededBytes - m.provider.Capacity())
		if err := wrtcap.ReserveAdditional(m.ctx, m.crate, extra); err != nil {
			return -1
		}
		heap.Grow(neededBytes - m.provider.Capacity())
	}

	if err := m.provider.EnsureUsedUpTo(neededBytes); err != nil {
		return -1
	}
	old := m.currPages
	m.currPages = newPages
	return int64(old)
}

func (m *Memory) byteLen() int { return int(m.currPages) * PageSize }

// Read returns a copy of length bytes at offset, trapping out-of-bounds per
// spec §4.3.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(m.byteLen()) {
		return nil, wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "memory read out of bounds")
	}
	raw, err := m.provider.Borrow(int(offset), int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, raw)
	return out, nil
}

// Write stores data at offset.
func (m *Memory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(m.byteLen()) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "memory write out of bounds")
	}
	return m.provider.Write(int(offset), data)
}

// Fill sets length bytes starting at offset to value.
func (m *Memory) Fill(offset uint32, value byte, length uint32) error {
	if uint64(offset)+uint64(length) > uint64(m.byteLen()) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "memory fill out of bounds")
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = value
	}
	return m.provider.Write(int(offset), buf)
}

// Copy moves length bytes from src to dst, handling overlap via the
// provider's forward/backward dispatch (spec §4.3 "copy handles overlap by
// forward/backward dispatch based on relative offsets").
func (m *Memory) Copy(dst, src, length uint32) error {
	if uint64(dst)+uint64(length) > uint64(m.byteLen()) || uint64(src)+uint64(length) > uint64(m.byteLen()) {
		return wrterror.Trap(wrterror.CodeMemoryOutOfBounds, "memory copy out of bounds")
	}
	return m.provider.CopyWithin(int(dst), int(src), int(length))
}
