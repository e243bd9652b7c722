package wrterror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	a := New(CategoryCapability, CodeBudgetExhausted, "crate wrt-runtime exceeded budget")
	b := New(CategoryCapability, CodeBudgetExhausted, "crate wrt-component exceeded budget")
	c := New(CategoryCapability, CodeCapabilityDenied, "missing Allocate bit")

	require.True(t, errors.Is(a, b), "same category+code must compare equal regardless of message")
	require.False(t, errors.Is(a, c))
}

func TestError_SeverityAndRecoverable(t *testing.T) {
	boundary := New(CategoryValidation, CodeTypeMismatch, "bad function type")
	require.True(t, boundary.Recoverable())

	trap := Trap(CodeMemoryOutOfBounds, "load at offset 65533 exceeds 1 page")
	require.False(t, trap.Recoverable())
	require.Equal(t, CategoryRuntimeTrap, trap.Category)

	fatal := FatalInstance(CategoryResource, CodeResourceArenaFull, "arena exceeded MAX_ARENA_RESOURCES")
	require.Equal(t, SeverityFatalInstance, fatal.Severity)
}

func TestError_WithLocation(t *testing.T) {
	e := Trap(CodeUnreachable, "unreachable executed").WithLocation("add.wat", 12)
	require.Contains(t, e.Error(), "add.wat:12")
}

func TestCategory_String(t *testing.T) {
	require.Equal(t, "Capability", CategoryCapability.String())
	require.Equal(t, "Unknown", Category(255).String())
}
