package wrtcap

// Profile selects which Provider variant SafeManagedAlloc returns. Only
// ProfileQM permits HeapProvider; every safety-critical profile gets an
// InlineProvider, matching spec §4.1 ("Heap provider — used only in the
// unrestricted (QM) profile").
type Profile uint8

const (
	ProfileASILD Profile = iota
	ProfileASILC
	ProfileASILB
	ProfileASILA
	ProfileQM
)

// SafeManagedAlloc is the sole allocation entry point of the runtime, the Go
// analogue of the `safe_managed_alloc!(size, crate_id)` macro from spec
// §4.1: "Every allocator call first calls verify. On success it obtains a
// provider sized to the request and registers it so capability-guarded drop
// can reclaim the budget. No allocation bypasses this path."
func SafeManagedAlloc(ctx *CapabilityContext, crate CrateID, size uint64, profile Profile) (Provider, error) {
	if err := ctx.Verify(crate, Operation{Kind: OpAllocate, Size: size}); err != nil {
		return nil, err
	}
	if err := ctx.reserve(crate, size); err != nil {
		return nil, err
	}

	snap, _ := ctx.Snapshot(crate)
	base := baseProvider{
		buf:       make([]byte, size),
		level:     snap.Level,
		crateID:   crate,
		sizeBytes: size,
	}

	if profile == ProfileQM {
		return &HeapProvider{baseProvider: base}, nil
	}
	return &InlineProvider{baseProvider: base}, nil
}

// ReserveAdditional deducts extraBytes from crate's remaining budget without
// allocating a provider — used by internal/wrtmem when growing a
// HeapProvider beyond its initial allocation, so the growth still clears
// the same capability/budget check as every other allocation (spec §4.1:
// "No allocation bypasses this path.").
func ReserveAdditional(ctx *CapabilityContext, crate CrateID, extraBytes uint64) error {
	if err := ctx.Verify(crate, Operation{Kind: OpAllocate, Size: extraBytes}); err != nil {
		return err
	}
	return ctx.reserve(crate, extraBytes)
}

// Release returns a provider's budget to its owning crate. Callers invoke
// this exactly once, when the provider's owner (a memory, table, bounded
// collection, ...) is torn down. Releasing twice silently no-ops on the
// second call's worth of budget since Provider doesn't track a dropped
// flag; ownership discipline is the caller's responsibility, same as spec
// §3 "a provider owns its backing bytes exclusively for its lifetime."
func Release(ctx *CapabilityContext, p Provider) {
	ctx.release(p.crate(), p.size())
}
