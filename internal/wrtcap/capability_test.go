package wrtcap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilityContext_GrantAfterStartFails(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate|CapRead|CapWrite, 1<<20, VerificationStandard))
	ctx.Start()

	err := ctx.Grant(CrateComponent, CapAllocate, 1<<10, VerificationStandard)
	require.Error(t, err)
}

func TestSafeManagedAlloc_DeniesOverBudget(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate, 1<<20, VerificationStandard)) // 1 MiB
	ctx.Start()

	_, err := SafeManagedAlloc(ctx, CrateRuntime, 10<<20, ProfileASILD) // ask for 10 MiB
	require.Error(t, err)

	snap, ok := ctx.Snapshot(CrateRuntime)
	require.True(t, ok)
	require.EqualValues(t, 1<<20, snap.RemainingBudget, "a failed allocation must not mutate the budget")
}

func TestSafeManagedAlloc_ReleaseRestoresBudget(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateComponent, CapAllocate|CapRead|CapWrite, 4096, VerificationStandard))
	ctx.Start()

	p, err := SafeManagedAlloc(ctx, CrateComponent, 1024, ProfileASILB)
	require.NoError(t, err)
	require.IsType(t, &InlineProvider{}, p, "non-QM profiles must never receive a HeapProvider")

	snap, _ := ctx.Snapshot(CrateComponent)
	require.EqualValues(t, 4096-1024, snap.RemainingBudget)

	Release(ctx, p)
	snap, _ = ctx.Snapshot(CrateComponent)
	require.EqualValues(t, 4096, snap.RemainingBudget)
}

func TestSafeManagedAlloc_QMProfileUsesHeapProvider(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate, 1<<20, VerificationNone))
	ctx.Start()

	p, err := SafeManagedAlloc(ctx, CrateRuntime, 256, ProfileQM)
	require.NoError(t, err)
	hp, ok := p.(*HeapProvider)
	require.True(t, ok)
	hp.Grow(256)
	require.Equal(t, 512, hp.Capacity())
}

func TestProvider_CopyWithinHandlesOverlap(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate|CapWrite, 64, VerificationStandard))
	ctx.Start()
	p, err := SafeManagedAlloc(ctx, CrateRuntime, 16, ProfileASILD)
	require.NoError(t, err)

	require.NoError(t, p.Write(0, []byte("0123456789abcdef")))
	require.NoError(t, p.CopyWithin(2, 0, 8)) // dst > src, overlapping ranges
	got, err := p.Borrow(0, 16)
	require.NoError(t, err)
	require.Equal(t, "0101234567abcdef", string(got))
}

func TestProvider_BorrowOutOfBoundsTraps(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate, 64, VerificationStandard))
	ctx.Start()
	p, err := SafeManagedAlloc(ctx, CrateRuntime, 16, ProfileASILD)
	require.NoError(t, err)

	_, err = p.Borrow(10, 10)
	require.Error(t, err)
}

func TestDelegate_MovesBudgetBetweenCrates(t *testing.T) {
	ctx := NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(CrateRuntime, CapAllocate|CapDelegate, 1000, VerificationStandard))
	ctx.Start()

	require.NoError(t, ctx.Delegate(CrateRuntime, CrateComponent, CapAllocate, 400))

	donor, _ := ctx.Snapshot(CrateRuntime)
	require.EqualValues(t, 600, donor.RemainingBudget)
	recipient, _ := ctx.Snapshot(CrateComponent)
	require.EqualValues(t, 400, recipient.RemainingBudget)
	require.True(t, recipient.Granted.has(CapAllocate))
}
