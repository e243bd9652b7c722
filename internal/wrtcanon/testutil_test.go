package wrtcanon

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/stretchr/testify/require"
)

func testMemory(t *testing.T, pages uint32) *wrtmem.Memory {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, uint64(pages)*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	m, err := wrtmem.NewMemory(ctx, wrtcap.CrateRuntime, pages, pages, wrtcap.ProfileASILD)
	require.NoError(t, err)
	return m
}

// bumpRealloc is a test-only realloc: it never reuses freed space, growing
// monotonically from base. Good enough to exercise the ledger's accounting
// without a real guest export.
func bumpRealloc(base *uint32) ReallocFunc {
	return func(oldPtr, oldSize, align, newSize uint32) (uint32, error) {
		if newSize == 0 {
			return 0, nil // shrink-to-zero: nothing to do for a bump allocator
		}
		aligned := alignUp(*base, max32(1, align))
		*base = aligned + newSize
		return aligned, nil
	}
}
