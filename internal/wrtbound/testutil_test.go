package wrtbound

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/stretchr/testify/require"
)

func testCtx(t *testing.T, budget uint64) *wrtcap.CapabilityContext {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateFoundation, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite|wrtcap.CapDelegate, budget, wrtcap.VerificationStandard))
	ctx.Start()
	return ctx
}
