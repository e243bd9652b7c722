// Package wrtcap implements the capability registry and memory-provider
// abstraction of spec §4.1 ("Bounded Memory Subsystem"): a process-wide,
// per-crate budget that every allocation in the runtime must clear before a
// byte of memory is handed out.
//
// CrateID reuses the crate boundaries of the pulseengine/wrt Rust sources
// this runtime is modeled on (wrt-foundation, wrt-runtime, wrt-component,
// ...): each corresponds to one Go package group in this module, and the
// capability budget partitions the process's fixed memory budget across
// them exactly as described in spec §2's component table ("Share" column).
package wrtcap

import (
	"sync"

	"github.com/pulseengine/wrt-go/internal/wrterror"
	"go.uber.org/zap"
)

// CrateID identifies one of the runtime's internal allocation domains.
type CrateID string

// The crate identifiers that ship with this runtime, one per major
// component of spec §2's dependency DAG.
const (
	CrateFoundation CrateID = "wrt-foundation" // C2/C3/C4/C5
	CrateRuntime    CrateID = "wrt-runtime"    // C7/C11/C12
	CrateComponent  CrateID = "wrt-component"  // C8/C9/C13
	CrateInstr      CrateID = "wrt-instructions"
	CrateDebug      CrateID = "wrt-debug"
	CrateHost       CrateID = "wrt-host"
)

// VerificationLevel dials how aggressively integrity checks run on bounded
// collections and safe slices (spec GLOSSARY).
type VerificationLevel uint8

const (
	VerificationNone VerificationLevel = iota
	VerificationSampling
	VerificationStandard
	VerificationFull
)

// CapabilityMask is a bitset over the operations a crate may perform.
type CapabilityMask uint8

const (
	CapAllocate CapabilityMask = 1 << iota
	CapRead
	CapWrite
	CapDelegate
)

func (m CapabilityMask) has(bit CapabilityMask) bool { return m&bit == bit }

// OperationKind discriminates the Operation union verified by Verify.
type OperationKind uint8

const (
	OpAllocate OperationKind = iota
	OpRead
	OpWrite
	OpDelegate
)

// Operation is the closed union of capability-checked actions from spec
// §4.1 ("verify(crate_id, op)").
type Operation struct {
	Kind         OperationKind
	Size         uint64 // OpAllocate
	Offset, Len  uint64 // OpRead, OpWrite
	DelegateTo   CrateID
	DelegateMask CapabilityMask
}

// MemoryCapability is the per-crate grant record.
type MemoryCapability struct {
	Granted         CapabilityMask
	RemainingBudget uint64
	Level           VerificationLevel

	// Audit counters per spec §4.1: incremented on both grant and denial so
	// the embedder can see attempted, not just successful, operations
	// (pulseengine/wrt's wrt-foundation/src/budget_verification.rs records
	// the same pair).
	AuditGrants   uint64
	AuditDenials  uint64
	TotalAllocated uint64
}

// CapabilityContext is the process-wide registry mapping CrateID to its
// granted MemoryCapability. It is one of only two process-global structures
// permitted by spec §5 ("Global mutable state"); the other is the module IR
// cache in internal/wrtcache. Each is protected by a single sync.Mutex of
// its own (not internal/wrtsync.Guarded). Neither keeps allocation out of
// that lock: Grant, for one, stores a new MemoryCapability and logs while
// holding c.mu.
type CapabilityContext struct {
	mu      sync.Mutex
	grants  map[CrateID]*MemoryCapability
	started bool
	log     *zap.Logger
}

// NewCapabilityContext constructs an empty registry. Call Grant for every
// crate before calling Start; grants are rejected afterward, matching spec
// §4.1 ("grant... only callable before runtime start").
func NewCapabilityContext(log *zap.Logger) *CapabilityContext {
	if log == nil {
		log = zap.NewNop()
	}
	return &CapabilityContext{grants: map[CrateID]*MemoryCapability{}, log: log}
}

// Grant records a capability for crate. Must be called before Start.
func (c *CapabilityContext) Grant(crate CrateID, mask CapabilityMask, budget uint64, level VerificationLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return wrterror.New(wrterror.CategoryInitialization, wrterror.CodeGrantAfterStart,
			"capability grants are not permitted after runtime start")
	}
	c.grants[crate] = &MemoryCapability{Granted: mask, RemainingBudget: budget, Level: level}
	c.log.Info("capability granted", zap.String("crate", string(crate)), zap.Uint64("budget", budget))
	return nil
}

// Start freezes the registry: Grant calls after this point fail. Embedders
// call this exactly once, per spec §4.1's initialization lifecycle.
func (c *CapabilityContext) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true
}

// Teardown revokes all grants and zeroes remaining budgets, per spec §4.1
// ("teardown revokes all grants and releases providers"). The context is
// left unusable; construct a new one to reinitialize.
func (c *CapabilityContext) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.grants {
		g.RemainingBudget = 0
		g.Granted = 0
	}
	c.started = false
}

// Verify checks that crate has been granted the bits implied by op and has
// enough remaining budget, per spec §4.1: "Every allocation call first calls
// verify. ... fails with CapabilityDenied, BudgetExhausted, or
// VerificationFailed."
func (c *CapabilityContext) Verify(crate CrateID, op Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	grant, ok := c.grants[crate]
	if !ok {
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeCapabilityDenied,
			"no capability grant for crate "+string(crate))
	}

	var required CapabilityMask
	var size uint64
	switch op.Kind {
	case OpAllocate:
		required, size = CapAllocate, op.Size
	case OpRead:
		required = CapRead
	case OpWrite:
		required = CapWrite
	case OpDelegate:
		required = CapDelegate
	}

	if !grant.Granted.has(required) {
		grant.AuditDenials++
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeCapabilityDenied,
			"crate "+string(crate)+" lacks required capability bit")
	}

	if op.Kind == OpAllocate && size > grant.RemainingBudget {
		grant.AuditDenials++
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeBudgetExhausted,
			"crate "+string(crate)+" budget exhausted")
	}

	if op.Kind == OpDelegate {
		if _, ok := c.grants[op.DelegateTo]; !ok {
			grant.AuditDenials++
			return wrterror.New(wrterror.CategoryCapability, wrterror.CodeDelegateNotGranted,
				"delegate target crate "+string(op.DelegateTo)+" has no grant")
		}
	}

	grant.AuditGrants++
	return nil
}

// reserve deducts size from crate's remaining budget after Verify has
// already approved the allocation. Separated from Verify so callers that
// only want a dry-run check (e.g. capacity planning) can call Verify alone.
func (c *CapabilityContext) reserve(crate CrateID, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	grant, ok := c.grants[crate]
	if !ok {
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeCapabilityDenied, "no grant for crate")
	}
	if size > grant.RemainingBudget {
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeBudgetExhausted, "budget exhausted on reserve")
	}
	grant.RemainingBudget -= size
	grant.TotalAllocated += size
	return nil
}

// release returns size to crate's remaining budget, called when a provider
// obtained via SafeManagedAlloc is dropped.
func (c *CapabilityContext) release(crate CrateID, size uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if grant, ok := c.grants[crate]; ok {
		grant.RemainingBudget += size
		if grant.TotalAllocated >= size {
			grant.TotalAllocated -= size
		}
	}
}

// Delegate subtracts budget bytes from donor's remaining budget and grants
// it to recipient under mask, per spec §4.1. Fails if donor lacks
// CapDelegate or doesn't have enough budget to give away.
func (c *CapabilityContext) Delegate(from, to CrateID, mask CapabilityMask, budget uint64) error {
	if err := c.Verify(from, Operation{Kind: OpDelegate, DelegateTo: to, DelegateMask: mask}); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	donor := c.grants[from]
	if budget > donor.RemainingBudget {
		return wrterror.New(wrterror.CategoryCapability, wrterror.CodeBudgetExhausted,
			"donor crate "+string(from)+" cannot delegate more than its remaining budget")
	}
	recipient, ok := c.grants[to]
	if !ok {
		recipient = &MemoryCapability{Level: donor.Level}
		c.grants[to] = recipient
	}
	donor.RemainingBudget -= budget
	recipient.RemainingBudget += budget
	recipient.Granted |= mask
	return nil
}

// Snapshot returns a copy of the capability for crate for diagnostics. The
// returned value is a copy: mutating it has no effect on the registry.
func (c *CapabilityContext) Snapshot(crate CrateID) (MemoryCapability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	grant, ok := c.grants[crate]
	if !ok {
		return MemoryCapability{}, false
	}
	return *grant, true
}
