package wrt

import (
	"github.com/pulseengine/wrt-go/internal/wrtasync"
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtlog"
)

// RuntimeConfig controls the behavior of a Runtime, with the default
// implementation per profile produced by NewRuntimeConfig. Like
// tetratelabs-wazero's RuntimeConfig, every With* method returns a new,
// independent copy rather than mutating the receiver, so a shared base
// config can be fanned out into several Runtime instances safely.
type RuntimeConfig struct {
	profile      wrtcap.Profile
	memoryBudget uint64
	maxCallDepth int
	fuel         uint64
	async        wrtasync.ASILExecutionConfig
	logger       *wrtlog.Logger
}

// defaultMemoryBudget is the per-crate byte budget a new RuntimeConfig
// starts with: generous enough for realistic modules, small enough that
// runaway allocation still fails fast under ASIL-D.
const defaultMemoryBudget = 16 * 1024 * 1024

// NewRuntimeConfig returns the default configuration for profile: fuel,
// call-depth, and async limits come from wrtasync.DefaultConfig(profile),
// so a Runtime's core-execution bounds and its async-scheduling bounds are
// always derived from the same ASIL profile rather than configured
// independently and risking drift between them.
func NewRuntimeConfig(profile wrtcap.Profile) *RuntimeConfig {
	async := wrtasync.DefaultConfig(profile)
	return &RuntimeConfig{
		profile:      profile,
		memoryBudget: defaultMemoryBudget,
		maxCallDepth: int(async.Limits.MaxCallDepth),
		fuel:         async.Limits.MaxFuelPerStep,
		async:        async,
		logger:       wrtlog.Nop(),
	}
}

func (c *RuntimeConfig) clone() *RuntimeConfig {
	cp := *c
	return &cp
}

// WithMemoryBudget sets the byte budget granted to each of the runtime's
// internal crates (internal/wrtcap.CrateID) on InitializeRuntime. Defaults
// to 16 MiB.
func (c *RuntimeConfig) WithMemoryBudget(bytes uint64) *RuntimeConfig {
	ret := c.clone()
	ret.memoryBudget = bytes
	return ret
}

// WithMaxCallDepth overrides the profile default's call-stack depth limit.
func (c *RuntimeConfig) WithMaxCallDepth(depth int) *RuntimeConfig {
	ret := c.clone()
	ret.maxCallDepth = depth
	return ret
}

// WithFuel overrides the profile default's per-invocation fuel grant.
func (c *RuntimeConfig) WithFuel(fuel uint64) *RuntimeConfig {
	ret := c.clone()
	ret.fuel = fuel
	return ret
}

// WithAsyncLimits overrides the profile default's wrtasync.ASILLimits
// wholesale, for an embedder that has measured its own workload's fuel and
// concurrency needs rather than relying on the conservative built-in
// presets.
func (c *RuntimeConfig) WithAsyncLimits(limits wrtasync.ASILLimits) *RuntimeConfig {
	ret := c.clone()
	ret.async.Limits = limits
	return ret
}

// WithLogger attaches a *wrtlog.Logger; defaults to wrtlog.Nop().
func (c *RuntimeConfig) WithLogger(log *wrtlog.Logger) *RuntimeConfig {
	ret := c.clone()
	if log == nil {
		log = wrtlog.Nop()
	}
	ret.logger = log
	return ret
}

// Profile returns the ASIL profile this configuration was built for.
func (c *RuntimeConfig) Profile() wrtcap.Profile { return c.profile }
