// Package wrtasync implements spec §6's ASILExecutionConfig and the
// cooperative task scheduler built on top of it (C15): a pool of
// in-progress wrtengine.Machine calls, each advanced one bounded fuel slice
// at a time, with the per-profile limits from spec §6 enforced around that
// stepping loop rather than inside wrtengine itself.
//
// Grounded on tetratelabs-wazero's sys.Context/moduleEngine.Call step
// pattern (a single bounded unit of work resumed by the caller) generalized
// from "the host decides when to call back in" to "a scheduler decides
// which of several in-flight tasks to step next", and on
// internal/wrtcap.Profile for the ASIL mode axis shared with the rest of
// this runtime rather than introducing a second, parallel mode enum.
package wrtasync

import "github.com/pulseengine/wrt-go/internal/wrtcap"

// ASILLimits is spec §6's "limits{...}" object: every named per-step and
// per-task bound an ASILExecutionConfig carries.
type ASILLimits struct {
	MaxFuelPerStep         uint64
	MaxMemoryUsage         uint64
	MaxCallDepth           int
	MaxInstructionsPerStep uint64
	MaxExecutionSliceMS    uint32
	MaxAsyncOperations     int
	MaxWaitablesPerTask    int
	MaxConcurrentTasks     int
	MaxYieldsPerStep       int
}

// ASILExecutionConfig is spec §6's `wrt.resource_limits` custom-section
// payload: a profile plus its resolved limits, optionally annotated with
// the binary hash it was qualified against.
type ASILExecutionConfig struct {
	Mode   wrtcap.Profile
	Limits ASILLimits
	// QualifiedForBinaryHash is spec §6's "qualified_for_binary_hash?" —
	// empty when the config was not produced by a certification pipeline
	// tying it to one specific module binary.
	QualifiedForBinaryHash string
}

// DefaultConfig returns the preset ASILExecutionConfig for mode: limits
// tighten monotonically from QM (effectively unbounded, matching wazero's
// own "no built-in ceiling unless the embedder sets one" default) down to
// ASIL-D (the pure no-allocation embedded target named in spec §1's scope,
// so every bound here is small and fixed). Embedders needing a different
// balance construct an ASILExecutionConfig by hand; this is a starting
// point, not the only legal configuration for a mode.
func DefaultConfig(mode wrtcap.Profile) ASILExecutionConfig {
	return ASILExecutionConfig{Mode: mode, Limits: defaultLimits(mode)}
}

func defaultLimits(mode wrtcap.Profile) ASILLimits {
	switch mode {
	case wrtcap.ProfileQM:
		return ASILLimits{
			MaxFuelPerStep:         1 << 20,
			MaxMemoryUsage:         1 << 30,
			MaxCallDepth:           4096,
			MaxInstructionsPerStep: 1 << 20,
			MaxExecutionSliceMS:    1000,
			MaxAsyncOperations:     256,
			MaxWaitablesPerTask:    256,
			MaxConcurrentTasks:     64,
			MaxYieldsPerStep:       1024,
		}
	case wrtcap.ProfileASILA:
		return ASILLimits{
			MaxFuelPerStep:         1 << 18,
			MaxMemoryUsage:         64 << 20,
			MaxCallDepth:           1024,
			MaxInstructionsPerStep: 1 << 18,
			MaxExecutionSliceMS:    200,
			MaxAsyncOperations:     64,
			MaxWaitablesPerTask:    64,
			MaxConcurrentTasks:     32,
			MaxYieldsPerStep:       256,
		}
	case wrtcap.ProfileASILB:
		return ASILLimits{
			MaxFuelPerStep:         1 << 16,
			MaxMemoryUsage:         16 << 20,
			MaxCallDepth:           512,
			MaxInstructionsPerStep: 1 << 16,
			MaxExecutionSliceMS:    100,
			MaxAsyncOperations:     32,
			MaxWaitablesPerTask:    32,
			MaxConcurrentTasks:     16,
			MaxYieldsPerStep:       128,
		}
	case wrtcap.ProfileASILC:
		return ASILLimits{
			MaxFuelPerStep:         1 << 14,
			MaxMemoryUsage:         4 << 20,
			MaxCallDepth:           256,
			MaxInstructionsPerStep: 1 << 14,
			MaxExecutionSliceMS:    50,
			MaxAsyncOperations:     16,
			MaxWaitablesPerTask:    16,
			MaxConcurrentTasks:     8,
			MaxYieldsPerStep:       64,
		}
	default: // wrtcap.ProfileASILD
		return ASILLimits{
			MaxFuelPerStep:         1 << 12,
			MaxMemoryUsage:         1 << 20,
			MaxCallDepth:           64,
			MaxInstructionsPerStep: 1 << 12,
			MaxExecutionSliceMS:    10,
			MaxAsyncOperations:     4,
			MaxWaitablesPerTask:    4,
			MaxConcurrentTasks:     2,
			MaxYieldsPerStep:       16,
		}
	}
}
