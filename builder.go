package wrt

import (
	"github.com/pulseengine/wrt-go/internal/wrtcomponent"
	"github.com/pulseengine/wrt-go/internal/wrtlog"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
)

// HostFunctionBuilder defines one host-implemented import, the Go analogue
// of a component's imported function signature from spec.md §4.4's
// Canonical ABI boundary. Every method returns the same instance for
// chaining, mirroring tetratelabs-wazero's HostFunctionBuilder.
type HostFunctionBuilder interface {
	// WithParamTypes declares the lifted argument types the handler
	// receives. Required unless the function takes no arguments.
	WithParamTypes(types ...wrtvalue.ValueType) HostFunctionBuilder

	// WithResultTypes declares the lowered result types the handler
	// returns. Required unless the function returns nothing.
	WithResultTypes(types ...wrtvalue.ValueType) HostFunctionBuilder

	// Export registers the function under name within its HostModuleBuilder
	// and returns to it for further chaining.
	Export(name string) HostModuleBuilder
}

// HostModuleBuilder accumulates host functions under one import-module
// namespace (e.g. "env" or a component's import module name) before being
// linked via Build.
type HostModuleBuilder interface {
	// NewFunctionBuilder begins the definition of one host function.
	NewFunctionBuilder(handler wrtcomponent.ImportHandler) HostFunctionBuilder

	// ModuleName returns the import-module namespace this builder defines
	// functions under.
	ModuleName() string
}

// Builder accumulates one or more HostModuleBuilders and produces a
// *wrtcomponent.Linker wired with every function defined across them —
// the host side of instantiate(module, imports) for Component Model
// instances (spec.md §6's Host API).
type Builder struct {
	log     *wrtlog.Logger
	linker  *wrtcomponent.Linker
	modules map[string]*hostModuleBuilder
}

// NewBuilder starts an empty Builder. log may be nil (defaults to a no-op
// logger, same convention as wrtcomponent.NewLinker).
func NewBuilder(log *wrtlog.Logger) *Builder {
	if log == nil {
		log = wrtlog.Nop()
	}
	return &Builder{log: log, linker: wrtcomponent.NewLinker(log), modules: map[string]*hostModuleBuilder{}}
}

// NewHostModuleBuilder begins defining host functions under moduleName. A
// second call with the same name returns the same builder, so functions can
// be added to one namespace across multiple call sites.
func (b *Builder) NewHostModuleBuilder(moduleName string) HostModuleBuilder {
	if m, ok := b.modules[moduleName]; ok {
		return m
	}
	m := &hostModuleBuilder{builder: b, moduleName: moduleName}
	b.modules[moduleName] = m
	return m
}

// Build returns the accumulated *wrtcomponent.Linker, ready to pass as
// Imports.Linker to Runtime.Instantiate for a component.
func (b *Builder) Build() *wrtcomponent.Linker { return b.linker }

type hostModuleBuilder struct {
	builder    *Builder
	moduleName string
}

func (m *hostModuleBuilder) ModuleName() string { return m.moduleName }

func (m *hostModuleBuilder) NewFunctionBuilder(handler wrtcomponent.ImportHandler) HostFunctionBuilder {
	return &hostFunctionBuilder{module: m, handler: handler}
}

type hostFunctionBuilder struct {
	module  *hostModuleBuilder
	handler wrtcomponent.ImportHandler
	params  []wrtvalue.ValueType
	results []wrtvalue.ValueType
}

func (f *hostFunctionBuilder) WithParamTypes(types ...wrtvalue.ValueType) HostFunctionBuilder {
	f.params = types
	return f
}

func (f *hostFunctionBuilder) WithResultTypes(types ...wrtvalue.ValueType) HostFunctionBuilder {
	f.results = types
	return f
}

func (f *hostFunctionBuilder) Export(name string) HostModuleBuilder {
	f.module.builder.linker.Define(f.module.moduleName, name, f.params, f.results, f.handler)
	return f.module
}
