package wrtbound

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/stretchr/testify/require"
)

func TestBoundedString_PushStrAndCapacity(t *testing.T) {
	ctx := testCtx(t, 1024)
	s, err := NewBoundedString(ctx, wrtcap.CrateFoundation, 8, wrtcap.ProfileASILD)
	require.NoError(t, err)

	require.NoError(t, s.PushStr("hello"))
	require.Error(t, s.PushStr("world")) // 5 + 5 > 8

	got, err := s.AsString()
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestBoundedString_TruncateAndClear(t *testing.T) {
	ctx := testCtx(t, 1024)
	s, err := NewBoundedString(ctx, wrtcap.CrateFoundation, 16, wrtcap.ProfileASILD)
	require.NoError(t, err)
	require.NoError(t, s.PushStr("abcdefgh"))

	require.NoError(t, s.Truncate(4))
	got, _ := s.AsString()
	require.Equal(t, "abcd", got)

	s.Clear()
	require.True(t, s.IsEmpty())
}
