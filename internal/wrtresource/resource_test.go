package wrtresource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArena_CreateGetDrop(t *testing.T) {
	a := NewArena("test", 4)
	h, err := a.Create(1, 7, "payload")
	require.NoError(t, err)

	r, err := a.Get(h)
	require.NoError(t, err)
	require.Equal(t, uint32(7), r.Owner)

	require.NoError(t, a.Drop(h))
	_, err = a.Get(h)
	require.Error(t, err)
}

func TestArena_DropTwiceFailsAlreadyDropped(t *testing.T) {
	a := NewArena("test", 4)
	h, _ := a.Create(1, 0, nil)
	require.NoError(t, a.Drop(h))
	err := a.Drop(h)
	require.Error(t, err)
}

func TestArena_CapacityEnforced(t *testing.T) {
	a := NewArena("test", 1)
	_, err := a.Create(1, 0, nil)
	require.NoError(t, err)
	_, err = a.Create(1, 0, nil)
	require.Error(t, err)
}

func TestArena_ReleaseAllSkipsDroppedAndCompletes(t *testing.T) {
	a := NewArena("test", 4)
	h1, _ := a.Create(1, 0, nil)
	h2, _ := a.Create(1, 0, nil)
	require.NoError(t, a.Drop(h1)) // pre-drop one; ReleaseAll must skip it rather than re-drop it

	err := a.ReleaseAll()
	require.NoError(t, err) // h1 already dropped is skipped, not re-dropped; h2 drops cleanly

	_, err = a.Get(h2)
	require.Error(t, err)
}

func TestTransferOwn_MovesBetweenArenas(t *testing.T) {
	a := NewArena("a", 4)
	b := NewArena("b", 4)
	h, _ := a.Create(1, 1, nil)

	moved, err := TransferOwn(a, b, h, 2)
	require.NoError(t, err)
	require.Equal(t, h, moved)

	_, err = a.Get(h)
	require.Error(t, err) // a lost the handle

	r, err := b.Get(moved)
	require.NoError(t, err)
	require.Equal(t, uint32(2), r.Owner)
}

func TestBorrow_InvalidatedAtScopeExit(t *testing.T) {
	owner := NewArena("owner", 4)
	h, _ := owner.Create(1, 1, "x")

	callee := NewArena("callee", 4)
	scope := callee.EnterCallScope()
	borrowed, err := callee.Borrow(owner, h)
	require.NoError(t, err)

	_, err = callee.Get(borrowed)
	require.NoError(t, err)

	require.NoError(t, callee.ExitCallScope(scope))
	_, err = callee.Get(borrowed)
	require.Error(t, err)

	// The original owner's resource is untouched by the borrow's lifecycle.
	_, err = owner.Get(h)
	require.NoError(t, err)
}
