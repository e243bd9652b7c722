package wrterror

// Codes are grouped by the Category they are most commonly paired with, but
// Category and Code are independent fields on Error — nothing enforces a
// code only ever appears with one category, mirroring how wazero's
// internal/wasmruntime sentinel errors are plain values reused across call
// sites.
const (
	// Parse / Validation / Type (recoverable at boundary)
	CodeMalformedBinary Code = 100 + iota
	CodeUnexpectedEnd
	CodeInvalidSectionOrder
	CodeInvalidUTF8
	CodeTypeMismatch
	CodeUnknownValueType
	CodeUnresolvedImport
	CodeDuplicateExport
	CodeFeatureNotEnabled
	CodeUnknownExport
	CodeInvalidGlobalIndex
)

const (
	// Memory (C3/C4/C7)
	CodeMemoryOutOfBounds Code = 200 + iota
	CodeMemoryGrowFailed
	CodeIntegrityCheckFailed
	CodeChecksumMismatch
	CodeSliceOutlivedProvider
	CodeAtomicsNotSupported
	CodeMisalignedAtomic
	CodeDataSegmentDropped
	CodeElementSegmentDropped
)

const (
	// Capability / Capacity (C2/C3)
	CodeCapabilityDenied Code = 300 + iota
	CodeBudgetExhausted
	CodeVerificationFailed
	CodeCapacityExceeded
	CodeDelegateNotGranted
	CodeGrantAfterStart
)

const (
	// Runtime / RuntimeTrap (C10/C11)
	CodeUnreachable Code = 400 + iota
	CodeIntegerDivideByZero
	CodeIntegerOverflow
	CodeInvalidConversionToInteger
	CodeIndirectCallTypeMismatch
	CodeInvalidTableAccess
	CodeStackOverflow
	CodeCallStackExhausted
	CodeUnknownDiscriminant
	CodeMisalignedCanonicalValue
	CodeSurrogateInChar
	CodeStringEncodingFailed
)

const (
	// Resource / Component (C8/C9/C13)
	CodeResourceAlreadyDropped Code = 500 + iota
	CodeResourceNotFound
	CodeResourceArenaFull
	CodeBorrowEscapedScope
	CodeReallocFailed
	CodeCrossInstancePointer
	CodePostReturnFailed
	CodeInstantiationUnresolvedImport
	CodeInstantiationTypeMismatch
	CodeInstantiationStartTrap
)

const (
	// System / Platform / Initialization / Safety (C1/C15)
	CodeAlreadyInitialized Code = 600 + iota
	CodeNotInitialized
	CodeFuelExhausted
	CodePaused
	CodeCancelled
	CodeDebuggerDetached
	CodeSnapshotVersionMismatch
	CodeSnapshotCorrupt
	CodeBreakpointNotFound
)

const (
	// AsyncRuntime / Scheduling (C15)
	CodeConcurrentTaskLimitExceeded Code = 700 + iota
	CodeAsyncOperationLimitExceeded
	CodeWaitableLimitExceeded
	CodeYieldBudgetExceeded
	CodeTaskNotFound
	CodeTaskAlreadyFinished
)

// codeName renders a Code for diagnostics. Unknown codes print as a bare
// number rather than panicking, since Error.Error() must never fail.
func codeName(c Code) string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Code(" + itoa(uint16(c)) + ")"
}

func itoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

var codeNames = map[Code]string{
	CodeMalformedBinary:               "MalformedBinary",
	CodeUnexpectedEnd:                 "UnexpectedEnd",
	CodeInvalidSectionOrder:           "InvalidSectionOrder",
	CodeInvalidUTF8:                   "InvalidUTF8",
	CodeTypeMismatch:                  "TypeMismatch",
	CodeUnknownValueType:              "UnknownValueType",
	CodeUnresolvedImport:              "UnresolvedImport",
	CodeDuplicateExport:               "DuplicateExport",
	CodeFeatureNotEnabled:             "FeatureNotEnabled",
	CodeUnknownExport:                 "UnknownExport",
	CodeInvalidGlobalIndex:            "InvalidGlobalIndex",
	CodeMemoryOutOfBounds:             "MemoryOutOfBounds",
	CodeMemoryGrowFailed:              "MemoryGrowFailed",
	CodeIntegrityCheckFailed:          "IntegrityCheckFailed",
	CodeChecksumMismatch:              "ChecksumMismatch",
	CodeSliceOutlivedProvider:         "SliceOutlivedProvider",
	CodeAtomicsNotSupported:           "AtomicsNotSupported",
	CodeMisalignedAtomic:              "MisalignedAtomic",
	CodeDataSegmentDropped:            "DataSegmentDropped",
	CodeElementSegmentDropped:         "ElementSegmentDropped",
	CodeCapabilityDenied:              "CapabilityDenied",
	CodeBudgetExhausted:               "BudgetExhausted",
	CodeVerificationFailed:            "VerificationFailed",
	CodeCapacityExceeded:              "CapacityExceeded",
	CodeDelegateNotGranted:            "DelegateNotGranted",
	CodeGrantAfterStart:               "GrantAfterStart",
	CodeUnreachable:                   "Unreachable",
	CodeIntegerDivideByZero:           "IntegerDivideByZero",
	CodeIntegerOverflow:               "IntegerOverflow",
	CodeInvalidConversionToInteger:    "InvalidConversionToInteger",
	CodeIndirectCallTypeMismatch:      "IndirectCallTypeMismatch",
	CodeInvalidTableAccess:            "InvalidTableAccess",
	CodeStackOverflow:                 "StackOverflow",
	CodeCallStackExhausted:            "CallStackExhausted",
	CodeUnknownDiscriminant:           "UnknownDiscriminant",
	CodeMisalignedCanonicalValue:      "MisalignedCanonicalValue",
	CodeSurrogateInChar:               "SurrogateInChar",
	CodeStringEncodingFailed:          "StringEncodingFailed",
	CodeResourceAlreadyDropped:        "ResourceAlreadyDropped",
	CodeResourceNotFound:              "ResourceNotFound",
	CodeResourceArenaFull:             "ResourceArenaFull",
	CodeBorrowEscapedScope:            "BorrowEscapedScope",
	CodeReallocFailed:                 "ReallocFailed",
	CodeCrossInstancePointer:          "CrossInstancePointer",
	CodePostReturnFailed:              "PostReturnFailed",
	CodeInstantiationUnresolvedImport: "InstantiationUnresolvedImport",
	CodeInstantiationTypeMismatch:     "InstantiationTypeMismatch",
	CodeInstantiationStartTrap:        "InstantiationStartTrap",
	CodeAlreadyInitialized:            "AlreadyInitialized",
	CodeNotInitialized:                "NotInitialized",
	CodeFuelExhausted:                 "FuelExhausted",
	CodePaused:                        "Paused",
	CodeCancelled:                     "Cancelled",
	CodeDebuggerDetached:              "DebuggerDetached",
	CodeSnapshotVersionMismatch:       "SnapshotVersionMismatch",
	CodeSnapshotCorrupt:               "SnapshotCorrupt",
	CodeBreakpointNotFound:            "BreakpointNotFound",
	CodeConcurrentTaskLimitExceeded:   "ConcurrentTaskLimitExceeded",
	CodeAsyncOperationLimitExceeded:   "AsyncOperationLimitExceeded",
	CodeWaitableLimitExceeded:         "WaitableLimitExceeded",
	CodeYieldBudgetExceeded:           "YieldBudgetExceeded",
	CodeTaskNotFound:                  "TaskNotFound",
	CodeTaskAlreadyFinished:           "TaskAlreadyFinished",
}
