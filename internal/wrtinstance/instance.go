package wrtinstance

import (
	"fmt"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrtmem"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// Instance is a linked, running module: allocated memory/tables/globals,
// applied data/element segments, and a Machine ready to invoke exports.
type Instance struct {
	mod *DecodedModule

	mem     *wrtmem.Memory
	tables  []*wrtmem.Table
	globals []wrtvalue.Value

	machine *wrtengine.Machine
}

// ImportValues supplies what the linker resolved for each entry in
// mod.Imports, spec §4.8 step 1. Index i corresponds to mod.Imports[i].
type ImportValues struct {
	Functions []*wrtengine.Function
	Globals   []wrtvalue.Value
	Memory    *wrtmem.Memory
	Tables    []*wrtmem.Table
}

// Instantiate runs spec §4.8's instantiation protocol for a single core
// module: allocate owned storage, run segment initializers, then the start
// function if present. A trap during start returns an error and no
// Instance, so nothing from the failed instantiation is left reachable; the
// capability budget reserved for the module's memory is not released, on
// that path or on any other error path here.
func Instantiate(capCtx *wrtcap.CapabilityContext, crate wrtcap.CrateID, profile wrtcap.Profile, mod *DecodedModule, imports ImportValues, fuel uint64, maxCallDepth int) (*Instance, error) {
	inst := &Instance{mod: mod}

	if mod.Memory != nil {
		maxPages := mod.Memory.Max
		if !mod.Memory.HasMax {
			maxPages = mod.Memory.Min
		}
		mem, err := wrtmem.NewMemory(capCtx, crate, mod.Memory.Min, maxPages, profile)
		if err != nil {
			return nil, err
		}
		inst.mem = mem
	} else {
		inst.mem = imports.Memory
	}

	inst.tables = make([]*wrtmem.Table, 0, len(mod.Tables))
	for _, lim := range mod.Tables {
		var rt wrtmem.RefType
		if lim.RefKind == wrtvalue.KindExternRef {
			rt = wrtmem.RefTypeExtern
		} else {
			rt = wrtmem.RefTypeFunc
		}
		maxSize := lim.Max
		if !lim.HasMax {
			maxSize = lim.Min
		}
		inst.tables = append(inst.tables, wrtmem.NewTable(rt, lim.Min, maxSize))
	}
	inst.tables = append(inst.tables, imports.Tables...)

	inst.globals = make([]wrtvalue.Value, len(mod.Globals))
	for i, g := range mod.Globals {
		if g.Init != nil && g.Init.Kind == ConstExprGlobalGet && int(g.Init.GlobalIdx) >= i {
			return nil, wrterror.New(wrterror.CategoryValidation, wrterror.CodeInvalidGlobalIndex, "global.get in constant expression references a global not yet initialized")
		}
		v, err := inst.evalConst(g.Init)
		if err != nil {
			return nil, err
		}
		inst.globals[i] = v
	}
	inst.globals = append(inst.globals, imports.Globals...)

	functions := append(append([]*wrtengine.Function(nil), imports.Functions...), mod.Functions...)

	if err := inst.applyData(mod.Data); err != nil {
		return nil, err
	}
	if err := inst.applyElements(mod.Elements); err != nil {
		return nil, err
	}

	dataSegs := make([][]byte, len(mod.Data))
	for i, d := range mod.Data {
		dataSegs[i] = d.Init
	}
	elemSegs := make([][]wrtvalue.Value, len(mod.Elements))
	for i, e := range mod.Elements {
		elemSegs[i] = e.Init
	}

	inst.machine = wrtengine.NewMachine(inst.mem, inst.tables, inst.globals, functions, dataSegs, elemSegs, fuel, maxCallDepth)

	if mod.StartFunc != nil {
		if _, err := inst.machine.Call(functions[*mod.StartFunc], nil); err != nil {
			return nil, wrterror.FatalInstance(wrterror.CategoryResource, wrterror.CodeInstantiationStartTrap, fmt.Sprintf("start function trapped: %v", err))
		}
	}

	return inst, nil
}

// evalConst evaluates a constant initializer expression, spec §4.8's
// "constant expressions against partially-initialized globals in
// declaration order" — a global.get is only valid if that global's index
// precedes the one being initialized. Instantiate checks that before each
// global initializer; evalConst itself checks only that the index is in
// range.
func (inst *Instance) evalConst(e *ConstExpr) (wrtvalue.Value, error) {
	if e == nil {
		return wrtvalue.Value{}, nil
	}
	switch e.Kind {
	case ConstExprGlobalGet:
		if int(e.GlobalIdx) >= len(inst.globals) {
			return wrtvalue.Value{}, wrterror.New(wrterror.CategoryValidation, wrterror.CodeInvalidGlobalIndex, "global.get in constant expression references an undefined global")
		}
		return inst.globals[e.GlobalIdx], nil
	default:
		return e.Value, nil
	}
}

// applyData writes every active data segment's bytes into memory at its
// evaluated offset, in declaration order, mirroring
// wasm.ModuleInstance.applyData.
func (inst *Instance) applyData(segments []DataSegment) error {
	for i := range segments {
		seg := &segments[i]
		if seg.OffsetExpr == nil {
			continue // passive segment, only reachable via memory.init
		}
		off, err := inst.evalConst(seg.OffsetExpr)
		if err != nil {
			return err
		}
		if err := inst.mem.Write(off.AsU32(), seg.Init); err != nil {
			return err
		}
	}
	return nil
}

// applyElements writes every active element segment's function indices
// into its target table at the evaluated offset, mirroring
// wasm.ModuleInstance.validateElements + applyElements.
func (inst *Instance) applyElements(segments []ElementSegment) error {
	for i := range segments {
		seg := &segments[i]
		if seg.OffsetExpr == nil {
			continue // passive segment, only reachable via table.init
		}
		off, err := inst.evalConst(seg.OffsetExpr)
		if err != nil {
			return err
		}
		if int(seg.TableIndex) >= len(inst.tables) {
			return wrterror.New(wrterror.CategoryValidation, wrterror.CodeInvalidTableAccess, "element segment targets an undefined table")
		}
		if err := inst.tables[seg.TableIndex].Init(off.AsU32(), seg.Init); err != nil {
			return err
		}
	}
	return nil
}

// InvokeExport runs spec §4.8's "Export dispatch": resolve name to an
// internal index, ABI-lower arguments (handled by the caller via C9 before
// reaching here for component-level calls; a bare core-module export takes
// flat wrtvalue.Values directly), push the engine frame, run, return results.
func (inst *Instance) InvokeExport(name string, args []wrtvalue.Value) (wrtengine.RunResult, error) {
	for _, exp := range inst.mod.Exports {
		if exp.Name != name || exp.Kind != ExportFunc {
			continue
		}
		fn := inst.functionAt(exp.Index)
		if fn == nil {
			return wrtengine.RunResult{}, wrterror.New(wrterror.CategoryValidation, wrterror.CodeUnknownExport, "export function index out of range")
		}
		return inst.machine.Call(fn, args)
	}
	return wrtengine.RunResult{}, wrterror.New(wrterror.CategoryValidation, wrterror.CodeUnknownExport, fmt.Sprintf("no such export: %s", name))
}

func (inst *Instance) functionAt(idx uint32) *wrtengine.Function {
	fns := inst.machine.Functions()
	if int(idx) >= len(fns) {
		return nil
	}
	return fns[idx]
}

// Memory returns the instance's linear memory (nil if the module declares
// none and imports none either).
func (inst *Instance) Memory() *wrtmem.Memory { return inst.mem }

// Machine returns the instance's executing engine, for C13's cross-instance
// export dispatch.
func (inst *Instance) Machine() *wrtengine.Machine { return inst.machine }
