package wrtlog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_InfoRecordsField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := New(zap.New(core))

	l.Info("instantiate", zap.String("module", "m1"))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "instantiate", entries[0].Message)
}

func TestLogger_WithAddsContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := New(zap.New(core)).With(zap.String("crate", "wrt-runtime"))

	l.Warn("budget low")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "wrt-runtime", entries[0].ContextMap()["crate"])
}

func TestNop_NeverPanics(t *testing.T) {
	l := Nop()
	l.Debug("noop")
	l.Error("noop")
	require.NoError(t, l.Sync())
}
