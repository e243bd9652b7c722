// Package wrt is the Host API of spec.md §6 ("what the embedder calls"):
// initialize_runtime, load_module, instantiate, invoke, attach_debugger,
// and detach_debugger, composed from the C1-C15 packages under internal/.
//
// Grounded on tetratelabs-wazero's own root package (runtime.go/config.go/
// builder.go): one Runtime owns the engine-equivalent state (here, a
// capability context and a module-IR cache instead of a compilation
// engine), CompiledModule plays the role of wazero's CompiledModule, and
// Instantiate/Invoke mirror Runtime.InstantiateModule/api.Function.Call.
package wrt

import (
	"context"
	"sync"

	"github.com/pulseengine/wrt-go/internal/wrtcache"
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtcomponent"
	"github.com/pulseengine/wrt-go/internal/wrtdebug"
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstance"
	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtsnapshot"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// moduleCacheCapacity bounds the process-global module-IR cache (spec.md
// §5 "Locking" names this cache but not a specific size; 256 compiled
// modules is generous for an embedded target without being unbounded).
const moduleCacheCapacity = 256

// Runtime is the embedder's single entry point, holding the one process-wide
// capability context every crate's allocations are verified against (spec
// §4.1) plus the module-IR cache (internal/wrtcache) compiled modules are
// keyed into by content hash.
type Runtime struct {
	mu          sync.Mutex
	initialized bool

	cfg    *RuntimeConfig
	capCtx *wrtcap.CapabilityContext
	cache  *wrtcache.ModuleCache[*CompiledModule]
	log    *wrtlog.Logger
}

// NewRuntime returns an uninitialized Runtime. Every method other than
// InitializeRuntime errors until InitializeRuntime has been called.
func NewRuntime() *Runtime {
	return &Runtime{cache: wrtcache.NewModuleCache[*CompiledModule](moduleCacheCapacity)}
}

// InitializeRuntime performs spec.md §6's "initialize_runtime(capability_
// config); must be called exactly once": it grants every internal crate
// (internal/wrtcap.CrateID) its share of cfg's memory budget and starts the
// capability context, after which internal/wrtcap.CapabilityContext.Start's
// own "no grants after start" rule keeps the budget immutable for the rest
// of the process.
func (r *Runtime) InitializeRuntime(cfg *RuntimeConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return wrterror.New(wrterror.CategoryInitialization, wrterror.CodeAlreadyInitialized, "InitializeRuntime called more than once")
	}
	if cfg == nil {
		cfg = NewRuntimeConfig(wrtcap.ProfileASILD)
	}

	capCtx := wrtcap.NewCapabilityContext(cfg.logger.Unwrap())
	for _, crate := range []wrtcap.CrateID{
		wrtcap.CrateFoundation, wrtcap.CrateRuntime, wrtcap.CrateComponent,
		wrtcap.CrateInstr, wrtcap.CrateDebug, wrtcap.CrateHost,
	} {
		if err := capCtx.Grant(crate, wrtcap.CapAllocate|wrtcap.CapRead|wrtcap.CapWrite|wrtcap.CapDelegate, cfg.memoryBudget, wrtcap.VerificationStandard); err != nil {
			return err
		}
	}
	capCtx.Start()

	r.cfg = cfg
	r.capCtx = capCtx
	r.log = cfg.logger
	r.initialized = true
	r.log.Info("runtime initialized")
	return nil
}

func (r *Runtime) requireInitialized() error {
	if !r.initialized {
		return wrterror.New(wrterror.CategoryInitialization, wrterror.CodeNotInitialized, "InitializeRuntime must be called before use")
	}
	return nil
}

// ModuleKind distinguishes a CompiledModule's shape.
type ModuleKind uint8

const (
	ModuleKindCore ModuleKind = iota
	ModuleKindComponent
)

// CompiledModule is spec.md §6's `Module`: the result of load_module, ready
// for instantiate. It wraps exactly one of a core
// internal/wrtinstance.DecodedModule or a internal/wrtcomponent.Definition —
// decode/validate itself happens externally (spec.md §1 scopes the binary
// decoder out); LoadModule/LoadComponent perform the remaining step of
// giving the already-decoded shape a stable cache key.
type CompiledModule struct {
	kind      ModuleKind
	core      *wrtinstance.DecodedModule
	component *wrtcomponent.Definition
}

// LoadModule wraps an already-decoded core module as a CompiledModule. When
// rawBytes is non-nil it is hashed (internal/wrtcache.Sum) and the result
// cached, so instantiating the same bytes repeatedly (spec.md §5's module
// IR reuse across execution contexts) skips re-validating structure. Pass
// nil rawBytes to skip caching (e.g. a module assembled programmatically
// with no canonical byte form).
func (r *Runtime) LoadModule(rawBytes []byte, mod *wrtinstance.DecodedModule) (*CompiledModule, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	if mod == nil {
		return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeTypeMismatch, "LoadModule: mod is nil")
	}
	compiled := &CompiledModule{kind: ModuleKindCore, core: mod}
	if rawBytes == nil {
		return compiled, nil
	}
	key := wrtcache.Sum(rawBytes)
	return r.cache.GetOrCompile(key, func() (*CompiledModule, error) { return compiled, nil })
}

// LoadComponent wraps an already-decoded component Definition as a
// CompiledModule; see LoadModule for the rawBytes/caching contract.
func (r *Runtime) LoadComponent(rawBytes []byte, def *wrtcomponent.Definition) (*CompiledModule, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	if def == nil {
		return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeTypeMismatch, "LoadComponent: def is nil")
	}
	compiled := &CompiledModule{kind: ModuleKindComponent, component: def}
	if rawBytes == nil {
		return compiled, nil
	}
	key := wrtcache.Sum(rawBytes)
	return r.cache.GetOrCompile(key, func() (*CompiledModule, error) { return compiled, nil })
}

// Imports supplies whichever of the two instantiation protocols compiled
// needs: Core for a ModuleKindCore CompiledModule, Linker for
// ModuleKindComponent.
type Imports struct {
	Core   wrtinstance.ImportValues
	Linker *wrtcomponent.Linker
}

// Instance is spec.md §6's `Instance`: a running core module or component,
// with an optionally attached debugger (C14).
type Instance struct {
	core      *wrtinstance.Instance
	component *wrtcomponent.Instance
	debugger  *wrtdebug.Debugger
}

// Instantiate runs spec.md §6's `instantiate(module, imports) -> Instance`,
// dispatching to C12's or C13's instantiation protocol according to
// compiled's kind.
func (r *Runtime) Instantiate(compiled *CompiledModule, imports Imports) (*Instance, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}
	switch compiled.kind {
	case ModuleKindCore:
		inst, err := wrtinstance.Instantiate(r.capCtx, wrtcap.CrateRuntime, r.cfg.profile, compiled.core, imports.Core, r.cfg.fuel, r.cfg.maxCallDepth)
		if err != nil {
			return nil, err
		}
		return &Instance{core: inst}, nil
	case ModuleKindComponent:
		linker := imports.Linker
		if linker == nil {
			linker = wrtcomponent.NewLinker(r.log)
		}
		inst, err := wrtcomponent.Instantiate(linker, compiled.component, r.capCtx, wrtcap.CrateComponent, r.cfg.profile, r.cfg.fuel, r.cfg.maxCallDepth, r.log)
		if err != nil {
			return nil, err
		}
		return &Instance{component: inst}, nil
	default:
		return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeTypeMismatch, "Instantiate: unknown module kind")
	}
}

// Invoke runs spec.md §6's `invoke(instance, export_name, args) ->
// Result<Values>`. When autoResume is true and a core-module call pauses
// because the configured fuel slice ran out before the invocation
// finished, Invoke grants another fuel slice and resumes it directly
// (bypassing internal/wrtasync's multi-task scheduler, which exists for
// concurrently interleaved tasks rather than a single synchronous call)
// until it completes or traps — "may internally pause and resume
// transparently ... if the host passes an auto-resume option." ctx is
// checked between resume steps so a caller can still cancel a
// pathologically long-running auto-resumed call.
func (r *Runtime) Invoke(ctx context.Context, inst *Instance, exportName string, args []wrtvalue.Value, autoResume bool) ([]wrtvalue.Value, error) {
	if err := r.requireInitialized(); err != nil {
		return nil, err
	}

	if inst.component != nil {
		// Component export dispatch always runs to completion or trap
		// inside CallExport; it does not expose partial-fuel pausing at
		// the component boundary, so auto-resume only applies to bare
		// core invocations below.
		return inst.component.CallExport(exportName, args)
	}

	result, err := inst.core.InvokeExport(exportName, args)
	if err != nil {
		return nil, err
	}
	if !result.Paused {
		return result.Results, nil
	}
	if !autoResume {
		return nil, wrterror.New(wrterror.CategoryRuntime, wrterror.CodePaused, "invocation ran out of fuel; pass autoResume or grant more fuel")
	}

	machine := inst.core.Machine()
	state := result.PauseState
	for {
		select {
		case <-ctx.Done():
			return nil, wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeCancelled, "auto-resume cancelled before the invocation completed")
		default:
		}
		machine.AddFuel(r.cfg.fuel)
		next, err := machine.Resume(state)
		if err != nil {
			return nil, err
		}
		if !next.Paused {
			return next.Results, nil
		}
		state = next.PauseState
	}
}

// AttachDebugger implements spec.md §6's `attach_debugger(instance,
// debugger)`: wires d to the Machine backing inst, whichever kind inst
// wraps.
func (inst *Instance) AttachDebugger(d *wrtdebug.Debugger) {
	d.Attach(inst.coreMachine())
	inst.debugger = d
}

// DetachDebugger implements spec.md §6's `detach_debugger(instance)`.
func (inst *Instance) DetachDebugger() {
	if inst.debugger != nil {
		inst.debugger.Detach()
		inst.debugger = nil
	}
}

func (inst *Instance) coreMachine() *wrtengine.Machine {
	if inst.component != nil {
		return inst.component.Core().Machine()
	}
	return inst.core.Machine()
}

// Snapshot captures inst's currently paused execution state for spec.md
// §6's persisted-state feature (internal/wrtsnapshot), resolving frame
// function pointers against inst's own function index space.
func (inst *Instance) Snapshot(state *wrtengine.PauseState, globals []wrtvalue.Value) (*wrtsnapshot.Snapshot, error) {
	m := inst.coreMachine()
	funcIndex := make(map[*wrtengine.Function]uint32, len(m.Functions()))
	for i, fn := range m.Functions() {
		funcIndex[fn] = uint32(i)
	}
	return wrtsnapshot.Capture(state, globals, m.Memory(), funcIndex)
}

// Restore rebuilds a *wrtengine.PauseState from snap against inst's own
// function index space, ready to pass to inst's Machine.Resume — the
// inverse of Snapshot, for resuming a persisted state in a freshly
// instantiated Instance (spec.md §6's cross-process resume scenario).
func (inst *Instance) Restore(snap *wrtsnapshot.Snapshot) (*wrtengine.PauseState, error) {
	return snap.RestorePauseState(inst.coreMachine().Functions())
}
