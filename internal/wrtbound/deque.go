package wrtbound

import (
	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// Deque is a capacity-bounded double-ended ring buffer, spec §4.2
// "Sequential collections" extended to both ends. Like Queue, it carries no
// whole-buffer checksum for the same wraparound reason.
type Deque[T any] struct {
	provider wrtcap.Provider
	codec    Codec[T]
	capacity int
	head     int
	length   int
	level    wrtcap.VerificationLevel
}

// NewDeque allocates a Deque able to hold up to capacity elements.
func NewDeque[T any](ctx *wrtcap.CapabilityContext, crate wrtcap.CrateID, capacity int, codec Codec[T], profile wrtcap.Profile) (*Deque[T], error) {
	p, err := wrtcap.SafeManagedAlloc(ctx, crate, uint64(capacity*codec.Size), profile)
	if err != nil {
		return nil, err
	}
	return &Deque[T]{provider: p, codec: codec, capacity: capacity, level: p.VerificationLevel()}, nil
}

func (d *Deque[T]) Len() int      { return d.length }
func (d *Deque[T]) Capacity() int { return d.capacity }
func (d *Deque[T]) IsEmpty() bool { return d.length == 0 }
func (d *Deque[T]) IsFull() bool  { return d.length == d.capacity }

func (d *Deque[T]) slot(logical int) int {
	return (((d.head+logical)%d.capacity + d.capacity) % d.capacity) * d.codec.Size
}

// PushBack appends value at the tail.
func (d *Deque[T]) PushBack(value T) error {
	if d.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded deque at capacity")
	}
	buf := make([]byte, d.codec.Size)
	d.codec.Encode(value, buf)
	if err := d.provider.Write(d.slot(d.length), buf); err != nil {
		return err
	}
	d.length++
	return nil
}

// PushFront prepends value at the head.
func (d *Deque[T]) PushFront(value T) error {
	if d.IsFull() {
		return wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded deque at capacity")
	}
	newHead := d.slot(-1)
	buf := make([]byte, d.codec.Size)
	d.codec.Encode(value, buf)
	if err := d.provider.Write(newHead, buf); err != nil {
		return err
	}
	d.head = ((d.head-1)%d.capacity + d.capacity) % d.capacity
	d.length++
	return nil
}

// PopBack removes and returns the tail element.
func (d *Deque[T]) PopBack() (T, error) {
	var zero T
	if d.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded deque is empty")
	}
	raw, err := d.provider.Borrow(d.slot(d.length-1), d.codec.Size)
	if err != nil {
		return zero, err
	}
	out := d.codec.Decode(raw)
	d.length--
	return out, nil
}

// PopFront removes and returns the head element.
func (d *Deque[T]) PopFront() (T, error) {
	var zero T
	if d.IsEmpty() {
		return zero, wrterror.New(wrterror.CategoryCapacity, wrterror.CodeCapacityExceeded, "bounded deque is empty")
	}
	raw, err := d.provider.Borrow(d.slot(0), d.codec.Size)
	if err != nil {
		return zero, err
	}
	out := d.codec.Decode(raw)
	d.head = (d.head + 1) % d.capacity
	d.length--
	return out, nil
}
