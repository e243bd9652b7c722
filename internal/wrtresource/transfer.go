package wrtresource

import "github.com/pulseengine/wrt-go/internal/wrterror"

// TransferOwn moves a resource from its arena to dest's arena, spec §4.7:
// "When a resource owned by component A is passed to component B as an
// own, ownership transfers: A loses the handle, B gains it." The handle
// value is preserved across arenas so debugging tools can correlate it.
func TransferOwn(from *Arena, dest *Arena, h Handle, newOwner uint32) (Handle, error) {
	r, ok := from.resources[h]
	if !ok || r.Dropped {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeResourceNotFound, "own transfer source handle not found or dropped")
	}
	if len(dest.resources) >= dest.MaxResources {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeResourceArenaFull, "destination arena at capacity")
	}
	delete(from.resources, h)
	r.Owner = newOwner
	dest.resources[h] = r
	return h, nil
}

// EnterCallScope begins a new call scope, returning its depth. Borrow
// handles created inside this scope are invalidated when the matching
// ExitCallScope runs, per spec §4.7: "A borrow creates a short-lived handle
// in B that is invalidated when the originating call returns; the arena
// implementation enforces this via a per-call scope counter."
func (a *Arena) EnterCallScope() int {
	a.scopeDepth++
	a.scopeBorrowed[a.scopeDepth] = nil
	return a.scopeDepth
}

// Borrow creates a short-lived handle referencing the same resource as h
// (owned by another arena) inside the current call scope. The returned
// handle is valid only until the call scope it was created in exits.
func (a *Arena) Borrow(source *Arena, h Handle) (Handle, error) {
	if a.scopeDepth == 0 {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeBorrowEscapedScope, "borrow requires an active call scope")
	}
	r, ok := source.resources[h]
	if !ok || r.Dropped {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeResourceNotFound, "borrow source handle not found or dropped")
	}
	if len(a.resources) >= a.MaxResources {
		return 0, wrterror.New(wrterror.CategoryResource, wrterror.CodeResourceArenaFull, "borrowing arena at capacity")
	}
	a.next++
	borrowed := a.next
	// A borrowed entry aliases the source resource's fields but lives in
	// this arena's table under its own handle, so dropping it (at scope
	// exit) never touches the original resource.
	a.resources[borrowed] = &Resource{ID: borrowed, TypeIdx: r.TypeIdx, Owner: r.Owner, Name: r.Name, Payload: r.Payload}
	a.scopeBorrowed[a.scopeDepth] = append(a.scopeBorrowed[a.scopeDepth], borrowed)
	return borrowed, nil
}

// ExitCallScope invalidates every borrow handle created since the matching
// EnterCallScope, per spec §4.7's per-call scope counter contract. Must be
// called with the depth EnterCallScope returned, innermost scope first.
func (a *Arena) ExitCallScope(depth int) error {
	for _, h := range a.scopeBorrowed[depth] {
		delete(a.resources, h)
	}
	delete(a.scopeBorrowed, depth)
	if depth == a.scopeDepth {
		a.scopeDepth--
	}
	return nil
}
