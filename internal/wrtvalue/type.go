package wrtvalue

// ValueType mirrors Value's Kind as a closed type descriptor, spec §3
// ("ValueType... mirroring Value's kinds"). It is distinct from Kind so that
// Record/Tuple/Variant/Enum/Flags/List types can carry structural children
// (field types, case types) that a bare Value doesn't need at runtime.
type ValueType struct {
	Kind     Kind
	Elem     *ValueType   // List element type
	Fields   []FieldType  // Record
	Elems    []ValueType  // Tuple
	Some     *ValueType   // Option payload type
	OKType   *ValueType   // Result ok type (nil = no payload)
	ErrType  *ValueType   // Result err type (nil = no payload)
	Cases    []CaseType   // Variant
	EnumSize uint32       // Enum case count
	FlagsLen uint32       // Flags bit count
}

type FieldType struct {
	Name string
	Type ValueType
}

type CaseType struct {
	Name    string
	Payload *ValueType // nil if this case carries no payload
}

// Compatible reports whether t and other are the same type after
// name-erasure for tuples and records, per spec §3: "Two types are
// compatible iff structurally identical after name-erasure for tuples and
// records."
func (t ValueType) Compatible(other ValueType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		return t.Elem != nil && other.Elem != nil && t.Elem.Compatible(*other.Elem)
	case KindRecord:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i := range t.Fields {
			if !t.Fields[i].Type.Compatible(other.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindTuple:
		if len(t.Elems) != len(other.Elems) {
			return false
		}
		for i := range t.Elems {
			if !t.Elems[i].Compatible(other.Elems[i]) {
				return false
			}
		}
		return true
	case KindOption:
		return (t.Some == nil) == (other.Some == nil) && (t.Some == nil || t.Some.Compatible(*other.Some))
	case KindResult:
		okOK := (t.OKType == nil) == (other.OKType == nil) && (t.OKType == nil || t.OKType.Compatible(*other.OKType))
		errOK := (t.ErrType == nil) == (other.ErrType == nil) && (t.ErrType == nil || t.ErrType.Compatible(*other.ErrType))
		return okOK && errOK
	case KindVariant:
		if len(t.Cases) != len(other.Cases) {
			return false
		}
		for i := range t.Cases {
			a, b := t.Cases[i].Payload, other.Cases[i].Payload
			if (a == nil) != (b == nil) {
				return false
			}
			if a != nil && !a.Compatible(*b) {
				return false
			}
		}
		return true
	case KindEnum:
		return t.EnumSize == other.EnumSize
	case KindFlags:
		return t.FlagsLen == other.FlagsLen
	default:
		return true // primitive kinds: equal Kind is sufficient
	}
}

// FuncType is a sequence of parameter and result ValueTypes, spec §3.
type FuncType struct {
	Params  []ValueType
	Results []ValueType
}

// Matches reports whether f and other have pairwise-compatible parameter
// and result sequences, per spec §3: "two function types match iff their
// parameter and result sequences are pairwise compatible."
func (f FuncType) Matches(other FuncType) bool {
	if len(f.Params) != len(other.Params) || len(f.Results) != len(other.Results) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Compatible(other.Params[i]) {
			return false
		}
	}
	for i := range f.Results {
		if !f.Results[i].Compatible(other.Results[i]) {
			return false
		}
	}
	return true
}

// Simple primitive ValueType constructors, used throughout wrtcanon/wrtinstr.
func Primitive(k Kind) ValueType { return ValueType{Kind: k} }
