package wrtinstance

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/stretchr/testify/require"
)

func testCapCtx(t *testing.T) *wrtcap.CapabilityContext {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 4*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	return ctx
}
