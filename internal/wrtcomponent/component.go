// Package wrtcomponent implements spec §4.8's component instantiation
// protocol and export dispatch: resolving a component's imports against a
// Linker registry, instantiating its core module (C12), wiring a resource
// arena (C8) and realloc ledger (C9) per instance, and marshaling calls
// across the component boundary through the Canonical ABI.
//
// Grounded on tetratelabs-wazero's runtime_instantiate.go / namespace.go
// import-resolution walk (resolve each import by (module, name) against a
// registry, type-check, fail fast with a named sentinel on the first
// mismatch) generalized to spec §4.8's five-step protocol, and on
// wrt-component/src's own canonical_abi/host_abi.go pairing of a linear
// memory with a realloc export per component instance.
package wrtcomponent

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/pulseengine/wrt-go/internal/wrtcanon"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtinstance"
	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtresource"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// ExportSignature is a component-level export's Canonical ABI signature —
// distinct from the underlying core function's flattened signature, which
// this package derives from it (§4.4/§4.8).
type ExportSignature struct {
	Name          string
	ParamTypes    []wrtvalue.ValueType
	ResultTypes   []wrtvalue.ValueType
	CoreExportName string // defaults to Name when empty
}

// ImportSignature is a component-level import this component's core module
// expects the Linker to resolve, spec §4.8 step 1.
type ImportSignature struct {
	Module, Name   string
	ParamTypes     []wrtvalue.ValueType
	ResultTypes    []wrtvalue.ValueType
	CoreImportName string // defaults to Name when empty; must match a wrtinstance.Import entry
}

// Definition is a not-yet-instantiated component: its core module plus the
// Canonical-ABI-level signatures of its imports and exports.
type Definition struct {
	Core         *wrtinstance.DecodedModule
	Imports      []ImportSignature
	Exports      []ExportSignature
	MaxResources int
	Encoding     wrtcanon.StringEncoding
	ReallocName  string // core export name of the realloc function; defaults to "cabi_realloc"
}

// ImportHandler is what the Linker calls to satisfy one resolved import —
// component-level Values in, component-level Values out, spec §4.4's
// Canonical ABI boundary already crossed by the caller side of the bridge
// this package builds in instance.go.
type ImportHandler func(args []wrtvalue.Value) ([]wrtvalue.Value, error)

// linkedImport is what the Linker's registry stores for one (module, name).
type linkedImport struct {
	sig     ImportSignature
	handler ImportHandler
}

// Linker resolves a component's declared imports against a registry of
// host functions and other components' exports, per spec §4.8 step 1-2.
type Linker struct {
	entries map[string]linkedImport
	log     *wrtlog.Logger
}

// NewLinker constructs an empty registry.
func NewLinker(log *wrtlog.Logger) *Linker {
	if log == nil {
		log = wrtlog.Nop()
	}
	return &Linker{entries: map[string]linkedImport{}, log: log}
}

func importKey(module, name string) string { return module + "\x00" + name }

// Define registers a host-implemented import under (module, name).
func (l *Linker) Define(module, name string, params, results []wrtvalue.ValueType, handler ImportHandler) {
	l.entries[importKey(module, name)] = linkedImport{
		sig:     ImportSignature{Module: module, Name: name, ParamTypes: params, ResultTypes: results},
		handler: handler,
	}
}

// DefineExport registers another component instance's export as an import
// source, enabling the inter-component calls spec §4.8 assumes a linker
// supports.
func (l *Linker) DefineExport(module, name string, src *Instance, exportName string) error {
	exp, ok := src.exportByName(exportName)
	if !ok {
		return wrterror.New(wrterror.CategoryComponent, wrterror.CodeUnknownExport, fmt.Sprintf("linked component has no export %q", exportName))
	}
	l.Define(module, name, exp.ParamTypes, exp.ResultTypes, func(args []wrtvalue.Value) ([]wrtvalue.Value, error) {
		return src.CallExport(exportName, args)
	})
	return nil
}

func (l *Linker) resolve(sig ImportSignature) (linkedImport, error) {
	li, ok := l.entries[importKey(sig.Module, sig.Name)]
	if !ok {
		return linkedImport{}, wrterror.New(wrterror.CategoryComponent, wrterror.CodeInstantiationUnresolvedImport,
			fmt.Sprintf("unresolved import %s.%s", sig.Module, sig.Name))
	}
	if !signatureCompatible(sig, li.sig) {
		return linkedImport{}, wrterror.New(wrterror.CategoryComponent, wrterror.CodeInstantiationTypeMismatch,
			fmt.Sprintf("import %s.%s type mismatch", sig.Module, sig.Name))
	}
	return li, nil
}

func signatureCompatible(want, have ImportSignature) bool {
	if len(want.ParamTypes) != len(have.ParamTypes) || len(want.ResultTypes) != len(have.ResultTypes) {
		return false
	}
	for i := range want.ParamTypes {
		if !want.ParamTypes[i].Compatible(have.ParamTypes[i]) {
			return false
		}
	}
	for i := range want.ResultTypes {
		if !want.ResultTypes[i].Compatible(have.ResultTypes[i]) {
			return false
		}
	}
	return true
}

// rollback releases the component's resource arena when Instantiate fails,
// collecting every release error via go-multierror rather than stopping at
// the first one. It releases nothing else: the capability budget a failed
// core instantiation reserved for its memory is not returned.
func rollback(arena *wrtresource.Arena) error {
	var result *multierror.Error
	if arena != nil {
		if err := arena.ReleaseAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
