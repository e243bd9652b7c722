package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Queue is a capacity-bounded FIFO ring buffer, spec §4.2 "Sequential
// collections": "a fixed-capacity queue wraps rather than grows; pushing
// onto a full queue fails rather than evicting the oldest element."
type Queue[T any] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	capacity int
	head     int // index of the oldest element
	length   int
	level    wrtcap.VerificationLevel
}

// Queue intentionally carries no whole-buffer checksum: a ring buffer's
// logical contents wrap past the end of physical storage, so there is no
// single contiguous region to hash the way Vec, Map, Set, and String do.
// Per-element integrity for queued values is the caller's responsibility
// (wrap T in a checksummed wrtsafe.Slice if that's needed).

// NewQueue allocates a Queue able to hold up to capacity elements.
func NewQueue[T any](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, codec Codec[T], profile wrtcap.Profile) (*Queue[T], error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*codec.Size), profile)
	if err != nil {
		return nil, err
	}
	return &Queue[T]{provider: p, codec: codec, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (q *Queue[T]) Len() int      { return q.length }
func (q *Queue[T]) Capacity() int { return q.capacity }
func (q *Queue[T]) IsEmpty() bool { return q.length == 0 }
func (q *Queue[T]) IsFull() bool  { return q.length == q.capacity }

func (q *Queue[T]) slot(logical int) int {
	return ((q.head + logical) % q.capacity) * q.codec.Size
}

// PushBack enqueues value at the tail. Fails with CapacityExceeded and
// leaves the queue unchanged if it is already full.
func (q *Queue[T]) PushBack(value T) error {
	if q.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded queue at capacity")
	}
	buf := make([]byte, q.codec.Size)
	q.codec.Encode(value, buf)
	if err := q.provider.Write(q.slot(q.length), buf); err != nil {
		return err
	}
	q.length++
	return nil
}

// PopFront dequeues and returns the oldest element.
func (q *Queue[T]) PopFront() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded queue is empty")
	}
	raw, err := q.provider.Borrow(q.slot(0), q.codec.Size)
	if err != nil {
		return zero, err
	}
	out := q.codec.Decode(raw)
	q.head = (q.head + 1) % q.capacity
	q.length--
	return out, nil
}

// Front returns the oldest element without removing it.
func (q *Queue[T]) Front() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded queue is empty")
	}
	raw, err := q.provider.Borrow(q.slot(0), q.codec.Size)
	if err != nil {
		return zero, err
	}
	return q.codec.Decode(raw), nil
}
