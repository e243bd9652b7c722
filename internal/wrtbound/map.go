package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Map is a capacity-bounded keyed collection, spec §4.2 "Keyed collections":
// "backed by linear search over a bounded vector of (K, V) pairs — N is
// small by design (typical N ≤ 256), so O(n) lookup is the deliberate
// trade-off against the complexity of a bounded hash table."
type Map[K comparable, V any] struct {
	provider  wrtcap.Provider
	keyCodec  Codec[K]
	valCodec  Codec[V]
	slotSize  int
	capacity  int
	length    int
	level     wrtcap.VerificationLevel
	checksum  uint64
}

// NewMap allocates a Map able to hold up to capacity (K, V) pairs.
func NewMap[K comparable, V any](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, keyCodec Codec[K], valCodec Codec[V], profile wrtcap.Profile) (*Map[K, V], error) {
	slotSize := keyCodec.Size + valCodec.Size
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*slotSize), profile)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{provider: p, keyCodec: keyCodec, valCodec: valCodec, slotSize: slotSize, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (m *Map[K, V]) Len() int      { return m.length }
func (m *Map[K, V]) Capacity() int { return m.capacity }
func (m *Map[K, V]) IsEmpty() bool { return m.length == 0 }

func (m *Map[K, V]) slotOffset(i int) int { return i * m.slotSize }

func (m *Map[K, V]) recomputeChecksum() {
	if m.level < wrtcap.VerificationStandard {
		return
	}
	raw, err := m.provider.Borrow(0, m.length*m.slotSize)
	if err != nil {
		return
	}
	m.checksum = wrtcap.Checksum(raw)
}

func (m *Map[K, V]) validate() error {
	if m.level < wrtcap.VerificationStandard {
		return nil
	}
	raw, err := m.provider.Borrow(0, m.length*m.slotSize)
	if err != nil {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeIntegrityCheckFailed, "bounded map provider shrank")
	}
	if wrtcap.Checksum(raw) != m.checksum {
		return wrterror.FatalInstance(wrterror.CategoryMemory, wrterror.CodeChecksumMismatch, "bounded map checksum mismatch")
	}
	return nil
}

// indexOf returns the slot index holding key, or -1 if absent. Linear scan
// by design (spec §4.2 "Keyed collections").
func (m *Map[K, V]) indexOf(key K) (int, error) {
	for i := 0; i < m.length; i++ {
		raw, err := m.provider.Borrow(m.slotOffset(i), m.keyCodec.Size)
		if err != nil {
			return -1, err
		}
		if m.keyCodec.Decode(raw) == key {
			return i, nil
		}
	}
	return -1, nil
}

// Insert associates key with value, overwriting any existing value for key.
// Fails with CapacityExceeded if key is new and the map is already full.
func (m *Map[K, V]) Insert(key K, value V) error {
	idx, err := m.indexOf(key)
	if err != nil {
		return err
	}
	if idx < 0 {
		if m.length == m.capacity {
			return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded map at capacity")
		}
		idx = m.length
		m.length++
	}
	buf := make([]byte, m.slotSize)
	m.keyCodec.Encode(key, buf[:m.keyCodec.Size])
	m.valCodec.Encode(value, buf[m.keyCodec.Size:])
	if err := m.provider.Write(m.slotOffset(idx), buf); err != nil {
		return err
	}
	m.recomputeChecksum()
	return nil
}

// Get looks up key, reporting whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if err := m.validate(); err != nil {
		return zero, false, err
	}
	idx, err := m.indexOf(key)
	if err != nil || idx < 0 {
		return zero, false, err
	}
	raw, err := m.provider.Borrow(m.slotOffset(idx)+m.keyCodec.Size, m.valCodec.Size)
	if err != nil {
		return zero, false, err
	}
	return m.valCodec.Decode(raw), true, nil
}

// ContainsKey reports whether key has an associated value.
func (m *Map[K, V]) ContainsKey(key K) (bool, error) {
	idx, err := m.indexOf(key)
	return idx >= 0, err
}

// Remove deletes key's entry if present, compacting the slot array so
// occupied slots stay contiguous at [0, length).
func (m *Map[K, V]) Remove(key K) (V, bool, error) {
	var zero V
	idx, err := m.indexOf(key)
	if err != nil || idx < 0 {
		return zero, false, err
	}
	raw, err := m.provider.Borrow(m.slotOffset(idx)+m.keyCodec.Size, m.valCodec.Size)
	if err != nil {
		return zero, false, err
	}
	out := m.valCodec.Decode(raw)
	if idx < m.length-1 {
		if err := m.provider.CopyWithin(m.slotOffset(idx), m.slotOffset(idx+1), (m.length-idx-1)*m.slotSize); err != nil {
			return zero, false, err
		}
	}
	m.length--
	m.recomputeChecksum()
	return out, true, nil
}

// ForEach visits every (key, value) pair in storage order.
func (m *Map[K, V]) ForEach(visit func(key K, value V) error) error {
	if err := m.validate(); err != nil {
		return err
	}
	for i := 0; i < m.length; i++ {
		raw, err := m.provider.Borrow(m.slotOffset(i), m.slotSize)
		if err != nil {
			return err
		}
		key := m.keyCodec.Decode(raw[:m.keyCodec.Size])
		val := m.valCodec.Decode(raw[m.keyCodec.Size:])
		if err := visit(key, val); err != nil {
			return err
		}
	}
	return nil
}
