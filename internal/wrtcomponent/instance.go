package wrtcomponent

import (
	"fmt"

	"github.com/pulseengine/wrt-go/internal/wrtcanon"
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrtinstance"
	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtresource"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Instance is one running component: its linked core module instance, the
// resource arena owning every handle it creates or borrows, and the
// realloc ledger backing Canonical ABI marshaling across its export/import
// boundary.
type Instance struct {
	def    *Definition
	core   *wrtinstance.Instance
	arena  *wrtresource.Arena
	ledger *wrtcanon.ReallocLedger
	log    *wrtlog.Logger
}

const defaultReallocName = "cabi_realloc"

// Instantiate runs spec §4.8's instantiation protocol: resolve and
// type-check every import, allocate per-instance storage (delegated to
// C12 for the core module, plus this component's own resource arena and
// realloc ledger), run the core module's segment initializers and start
// function. On any step's error it returns no Instance and releases the
// component's resource arena (see rollback for what it does not release).
func Instantiate(linker *Linker, def *Definition, capCtx *wrtcap.CapabilityContext, crate wrtcap.CrateID, profile wrtcap.Profile, fuel uint64, maxCallDepth int, log *wrtlog.Logger) (*Instance, error) {
	if log == nil {
		log = wrtlog.Nop()
	}
	maxResources := def.MaxResources
	if maxResources <= 0 {
		maxResources = 1024
	}
	arena := wrtresource.NewArena("component", maxResources)

	ci := &Instance{def: def, arena: arena, log: log}

	// Built before core instantiation: import bridges may be invoked from
	// the core module's own start function (spec §4.8 step 5), which runs
	// inside wrtinstance.Instantiate below, before ci.core is assigned —
	// coreReallocFunc guards against that ordering rather than crashing.
	reallocName := def.ReallocName
	if reallocName == "" {
		reallocName = defaultReallocName
	}
	ci.ledger = wrtcanon.NewReallocLedger(0, ci.coreReallocFunc(reallocName))

	importFuncs := make([]*wrtengine.Function, 0, len(def.Imports))
	for _, sig := range def.Imports {
		li, err := linker.resolve(sig)
		if err != nil {
			_ = rollback(arena)
			return nil, err
		}
		importFuncs = append(importFuncs, ci.bridgeImport(sig, li.handler))
	}

	core, err := wrtinstance.Instantiate(capCtx, crate, profile, def.Core, wrtinstance.ImportValues{Functions: importFuncs}, fuel, maxCallDepth)
	if err != nil {
		_ = rollback(arena)
		return nil, err
	}
	ci.core = core

	return ci, nil
}

// coreReallocFunc adapts the core instance's exported realloc function
// (the canonical `cabi_realloc(old_ptr, old_size, align, new_size) -> ptr`
// export, spec §4.4 "Realloc accounting") into a wrtcanon.ReallocFunc.
func (ci *Instance) coreReallocFunc(exportName string) wrtcanon.ReallocFunc {
	return func(oldPtr, oldSize, align, newSize uint32) (uint32, error) {
		if ci.core == nil {
			return 0, wrterror.New(wrterror.CategoryComponent, wrterror.CodeReallocFailed, "realloc invoked before the core module finished instantiating")
		}
		result, err := ci.core.InvokeExport(exportName, []wrtvalue.Value{
			wrtvalue.U32(oldPtr), wrtvalue.U32(oldSize), wrtvalue.U32(align), wrtvalue.U32(newSize),
		})
		if err != nil {
			return 0, err
		}
		if len(result.Results) != 1 {
			return 0, wrterror.New(wrterror.CategoryComponent, wrterror.CodeReallocFailed, "realloc export did not return exactly one value")
		}
		return result.Results[0].AsU32(), nil
	}
}

// bridgeImport builds the core-level Function the linked core module calls
// for one resolved import: lift its flat core arguments into component
// Values via the Canonical ABI, invoke the resolved handler, lower its
// results back into guest memory. This is the host side of spec §4.6
// "Host calls" for component-level (not flat-core) imports.
func (ci *Instance) bridgeImport(sig ImportSignature, handler ImportHandler) *wrtengine.Function {
	coreParams := []wrtvalue.ValueType{{Kind: wrtvalue.KindU32}}
	if len(sig.ResultTypes) > 0 {
		coreParams = append(coreParams, wrtvalue.ValueType{Kind: wrtvalue.KindU32})
	}
	return &wrtengine.Function{
		Type: wrtvalue.FuncType{Params: coreParams},
		Host: func(flat []wrtvalue.Value) ([]wrtvalue.Value, error) {
			if ci.core == nil {
				return nil, wrterror.New(wrterror.CategoryComponent, wrterror.CodeInstantiationUnresolvedImport, "import invoked before the core module finished instantiating")
			}
			argPtr := flat[0].AsU32()
			lc := &wrtcanon.LiftContext{Mem: ci.core.Memory(), Encoding: ci.def.Encoding}
			args, err := lc.LiftResults(argPtr, sig.ParamTypes)
			if err != nil {
				return nil, err
			}
			results, err := handler(args)
			if err != nil {
				return nil, err
			}
			if len(sig.ResultTypes) == 0 {
				return nil, nil
			}
			retPtr := flat[1].AsU32()
			lower := &wrtcanon.LowerContext{Mem: ci.core.Memory(), Ledger: ci.ledger, Encoding: ci.def.Encoding}
			if err := lower.LowerArgs(retPtr, sig.ResultTypes, results); err != nil {
				return nil, err
			}
			return nil, nil
		},
	}
}

// CallExport runs spec §4.8's "Export dispatch": ABI-lower args into guest
// memory, call the matching core export (which takes a single argument
// pointer, plus a result pointer when it returns anything — the uniform
// memory-marshaled calling convention this component layer settles on, see
// DESIGN.md's design decision on that convention), ABI-lift results,
// then run the Canonical ABI's post-return cleanup.
func (ci *Instance) CallExport(name string, args []wrtvalue.Value) ([]wrtvalue.Value, error) {
	exp, ok := ci.exportByName(name)
	if !ok {
		return nil, wrterror.New(wrterror.CategoryComponent, wrterror.CodeUnknownExport, fmt.Sprintf("no such component export: %s", name))
	}

	scope := ci.arena.EnterCallScope()
	defer ci.arena.ExitCallScope(scope)

	lower := &wrtcanon.LowerContext{Mem: ci.core.Memory(), Ledger: ci.ledger, Encoding: ci.def.Encoding}
	argSize, argAlign := wrtcanon.RetAreaLayout(exp.ParamTypes)
	var argPtr uint32
	var err error
	if argSize > 0 {
		argPtr, err = ci.ledger.Allocate(argSize, argAlign)
		if err != nil {
			return nil, err
		}
		if err := lower.LowerArgs(argPtr, exp.ParamTypes, args); err != nil {
			return nil, err
		}
	}

	coreExportName := exp.CoreExportName
	if coreExportName == "" {
		coreExportName = exp.Name
	}

	coreArgs := []wrtvalue.Value{wrtvalue.U32(argPtr)}
	var retPtr uint32
	if len(exp.ResultTypes) > 0 {
		resSize, resAlign := wrtcanon.RetAreaLayout(exp.ResultTypes)
		retPtr, err = ci.ledger.Allocate(resSize, resAlign)
		if err != nil {
			return nil, err
		}
		coreArgs = append(coreArgs, wrtvalue.U32(retPtr))
	}

	if _, err := ci.core.InvokeExport(coreExportName, coreArgs); err != nil {
		return nil, err
	}

	var results []wrtvalue.Value
	if len(exp.ResultTypes) > 0 {
		lift := &wrtcanon.LiftContext{Mem: ci.core.Memory(), Encoding: ci.def.Encoding}
		results, err = lift.LiftResults(retPtr, exp.ResultTypes)
		if err != nil {
			return nil, err
		}
	}

	wrtcanon.PostReturn(ci.ledger, ci.log)
	return results, nil
}

func (ci *Instance) exportByName(name string) (ExportSignature, bool) {
	for _, e := range ci.def.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return ExportSignature{}, false
}

// Resources returns the instance's resource arena, for own/borrow transfer
// between components per spec §4.7 "Cross-component handles".
func (ci *Instance) Resources() *wrtresource.Arena { return ci.arena }

// Core returns the linked core module instance backing this component, for
// C14's debugger attachment (which operates on the C11 Machine C12 owns).
func (ci *Instance) Core() *wrtinstance.Instance { return ci.core }
