// Package wrtcache implements the process-global module IR cache named in
// spec §5 ("Global mutable state"): the second of the two structures the
// spec permits as process-wide state, alongside the capability registry in
// internal/wrtcap. Grounded on moby-moby's direct dependency on
// github.com/hashicorp/golang-lru/v2 for exactly this shape of problem —
// a bounded, eviction-by-recency cache keyed by content hash.
package wrtcache

import (
	"crypto/sha256"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key is the content-addressed identity of a compiled module's IR, the same
// 256-bit digest shape wazero's internal/compilationcache.Key uses.
type Key = [sha256.Size]byte

// Sum computes the Key for a module's raw bytes.
func Sum(moduleBytes []byte) Key { return sha256.Sum256(moduleBytes) }

// ModuleCache is the process-global, capacity-bounded cache of compiled
// module IR, shared across every internal/wrtengine execution context in
// the process. It is one of only two process-global structures spec §5
// permits; like internal/wrtcap.CapabilityContext, it is protected by a
// single mutex. That mutex is held for the whole of GetOrCompile, including
// the compile callback and the insertion of the new entry into the
// lru.Cache, so any allocation either of them does happens with the lock
// held.
type ModuleCache[T any] struct {
	mu    sync.Mutex
	inner *lru.Cache[Key, T]
}

// NewModuleCache constructs a cache holding at most capacity entries,
// evicting least-recently-used module IR once full.
func NewModuleCache[T any](capacity int) *ModuleCache[T] {
	inner, _ := lru.New[Key, T](capacity) // error only on capacity<=0
	return &ModuleCache[T]{inner: inner}
}

// Get returns the cached IR for key, if present.
func (c *ModuleCache[T]) Get(key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Get(key)
}

// GetOrCompile returns the cached IR for key if present; otherwise it calls
// compile, stores the result, and returns it. compile runs with the cache
// lock held, so it must not itself touch this cache (no reentrancy) — the
// same non-reentrant discipline internal/wrtcap.CapabilityContext imposes
// on its own methods.
func (c *ModuleCache[T]) GetOrCompile(key Key, compile func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.inner.Get(key); ok {
		return v, nil
	}
	v, err := compile()
	if err != nil {
		var zero T
		return zero, err
	}
	c.inner.Add(key, v)
	return v, nil
}

// Remove evicts key, if present — used when a module's version no longer
// matches the running engine, mirroring wazero's compilationcache.Cache.Delete.
func (c *ModuleCache[T]) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Remove(key)
}

// Len reports the number of cached entries.
func (c *ModuleCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Purge empties the cache entirely.
func (c *ModuleCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}
