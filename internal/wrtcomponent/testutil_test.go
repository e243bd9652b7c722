package wrtcomponent

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func testCapCtx(t *testing.T) *wrtcap.CapabilityContext {
	t.Helper()
	ctx := wrtcap.NewCapabilityContext(nil)
	require.NoError(t, ctx.Grant(wrtcap.CrateRuntime, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite, 8*wrtmem.PageSize, wrtcap.VerificationStandard))
	ctx.Start()
	return ctx
}

func i32Type() wrtvalue.ValueType { return wrtvalue.ValueType{Kind: wrtvalue.KindS32} }
func u32Type() wrtvalue.ValueType { return wrtvalue.ValueType{Kind: wrtvalue.KindU32} }
