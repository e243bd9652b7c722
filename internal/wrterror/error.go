// Package wrterror implements the flat error taxonomy shared by every layer
// of the runtime (spec §6 "Error surface", §7 "Error handling design").
package wrterror

import "fmt"

// Category classifies an Error into one of the closed set of outward-facing
// categories from spec §6.
type Category uint8

const (
	CategoryParse Category = iota + 1
	CategoryValidation
	CategoryType
	CategoryRuntime
	CategoryRuntimeTrap
	CategoryMemory
	CategoryResource
	CategoryCapacity
	CategoryComponent
	CategorySystem
	CategoryPlatform
	CategorySecurity
	CategoryInitialization
	CategoryNotSupported
	CategoryIo
	CategoryCapability
	CategoryAsyncRuntime
	CategorySafety
)

func (c Category) String() string {
	switch c {
	case CategoryParse:
		return "Parse"
	case CategoryValidation:
		return "Validation"
	case CategoryType:
		return "Type"
	case CategoryRuntime:
		return "Runtime"
	case CategoryRuntimeTrap:
		return "RuntimeTrap"
	case CategoryMemory:
		return "Memory"
	case CategoryResource:
		return "Resource"
	case CategoryCapacity:
		return "Capacity"
	case CategoryComponent:
		return "Component"
	case CategorySystem:
		return "System"
	case CategoryPlatform:
		return "Platform"
	case CategorySecurity:
		return "Security"
	case CategoryInitialization:
		return "Initialization"
	case CategoryNotSupported:
		return "NotSupported"
	case CategoryIo:
		return "Io"
	case CategoryCapability:
		return "Capability"
	case CategoryAsyncRuntime:
		return "AsyncRuntime"
	case CategorySafety:
		return "Safety"
	default:
		return "Unknown"
	}
}

// Code is a stable u16 constant identifying the precise failure within a
// Category. Codes are grouped by category in codes.go and never renumbered
// once released, so embedders can match on Code alone.
type Code uint16

// Severity captures the taxonomy of spec §7: how far the failure propagates
// before something must be torn down.
type Severity uint8

const (
	// SeverityBoundary errors are recoverable at the API ingress: the caller
	// may retry with different input.
	SeverityBoundary Severity = iota
	// SeverityTrap aborts the current invocation but leaves the instance
	// usable.
	SeverityTrap
	// SeverityFatalInstance means the instance that produced this error must
	// be discarded.
	SeverityFatalInstance
	// SeverityFatalProcess means the embedder must decide whether to exit;
	// the core never forces exit itself.
	SeverityFatalProcess
)

// Location is a source position captured only when debug info is present.
// Diagnostics never allocate on the error path in release builds, so Location
// is a value type embedded directly in Error.
type Location struct {
	File string
	Line uint32
}

// Error is the single error type returned across every API boundary named in
// spec §6. It deliberately carries no stack trace or wrapped error chain:
// Category+Code+short message is the entire stable contract.
type Error struct {
	Category Category
	Code     Code
	Message  string
	Severity Severity
	Location Location
}

func (e *Error) Error() string {
	if e.Location.File != "" {
		return fmt.Sprintf("%s/%s: %s (%s:%d)", e.Category, codeName(e.Code), e.Message, e.Location.File, e.Location.Line)
	}
	return fmt.Sprintf("%s/%s: %s", e.Category, codeName(e.Code), e.Message)
}

// New constructs a boundary-severity Error. Use Trap, FatalInstance, or
// FatalProcess for the other severities.
func New(cat Category, code Code, message string) *Error {
	return &Error{Category: cat, Code: code, Message: message, Severity: SeverityBoundary}
}

// Trap constructs a CategoryRuntimeTrap error carrying SeverityTrap, per the
// "Trap" row of spec §7's taxonomy.
func Trap(code Code, message string) *Error {
	return &Error{Category: CategoryRuntimeTrap, Code: code, Message: message, Severity: SeverityTrap}
}

// FatalInstance constructs an error whose severity forces the caller to
// discard the instance that raised it (resource-arena corruption, capability
// violation, integrity-check failure, realloc ledger inconsistency).
func FatalInstance(cat Category, code Code, message string) *Error {
	return &Error{Category: cat, Code: code, Message: message, Severity: SeverityFatalInstance}
}

// FatalProcess constructs an error the core signals but does not act on;
// the embedder decides whether to exit.
func FatalProcess(cat Category, code Code, message string) *Error {
	return &Error{Category: cat, Code: code, Message: message, Severity: SeverityFatalProcess}
}

// WithLocation attaches a source location captured from a debug-info table.
// Returns e for chaining; never allocates beyond the Location copy.
func (e *Error) WithLocation(file string, line uint32) *Error {
	e.Location = Location{File: file, Line: line}
	return e
}

// Is supports errors.Is by comparing Category and Code, matching the "closed
// enum" equality spec.md §3 describes for ValueType: identity is structural,
// not pointer-based.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// Recoverable reports whether this error is SeverityBoundary, i.e. the caller
// may retry with different input rather than tearing anything down.
func (e *Error) Recoverable() bool {
	return e.Severity == SeverityBoundary
}
