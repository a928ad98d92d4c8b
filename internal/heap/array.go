package heap

import (
	"encoding/binary"

	"github.com/xyproto/evalrus/internal/rerr"
)

const defaultArraySize = 8

// growArrayCapacity implements original_source/src/rawarray.rs's growth
// policy: 8 initial, doubling thereafter, saturating at 2^31-1 rather
// than overflowing.
func growArrayCapacity(capacity int) int {
	const maxCapacity = 1<<31 - 1
	if capacity == 0 {
		return defaultArraySize
	}
	if capacity >= maxCapacity {
		return maxCapacity
	}
	doubled := capacity * 2
	if doubled < capacity || doubled > maxCapacity {
		return maxCapacity
	}
	return doubled
}

// ArrayAny is the heap-resident growable array of TaggedPtr values
// (spec.md's Array type). Its backing storage is raw bytes pulled from
// the owning Heap's Arena (see rawarray.rs's resize: a fresh, larger
// byte range is allocated and the old contents copied in; the old range
// is simply abandoned, matching the arena's never-free policy) rather
// than a plain Go slice, so the block allocator is genuinely on the
// allocation path for container growth, not just object-table growth.
type ArrayAny struct {
	heap     *Heap
	buf      []byte // capacity*8 bytes, one little-endian uint64 per slot
	length   int
	capacity int
}

func (*ArrayAny) isValue() {}

// NewArrayAny allocates an empty Array through scope.
func NewArrayAny(scope *Scope) TaggedPtr {
	a := &ArrayAny{heap: scope.Heap()}
	return scope.mem.heap.allocObject(scope, TypeArray, a, 0)
}

func (a *ArrayAny) Length() int { return a.length }

func (a *ArrayAny) growTo(scope *Scope, capacity int) error {
	buf, err := a.heap.AllocBytes(capacity * 8)
	if err != nil {
		return err
	}
	copy(buf, a.buf)
	a.buf = buf
	a.capacity = capacity
	return nil
}

// Push appends a value, growing the backing buffer if needed.
func (a *ArrayAny) Push(scope *Scope, v TaggedPtr) error {
	scope.check()
	if a.length >= a.capacity {
		if err := a.growTo(scope, growArrayCapacity(a.capacity)); err != nil {
			return err
		}
	}
	binary.LittleEndian.PutUint64(a.buf[a.length*8:], uint64(v))
	a.length++
	return nil
}

// Pop removes and returns the last value.
func (a *ArrayAny) Pop() (TaggedPtr, error) {
	if a.length == 0 {
		return Nil, rerr.Bounds("pop from empty array")
	}
	a.length--
	return TaggedPtr(binary.LittleEndian.Uint64(a.buf[a.length*8:])), nil
}

// Get returns the value at index i, bounds-checked.
func (a *ArrayAny) Get(i int) (TaggedPtr, error) {
	if i < 0 || i >= a.length {
		return Nil, rerr.Bounds("array index %d out of range (length %d)", i, a.length)
	}
	return TaggedPtr(binary.LittleEndian.Uint64(a.buf[i*8:])), nil
}

// Set overwrites the value at index i, bounds-checked.
func (a *ArrayAny) Set(i int, v TaggedPtr) error {
	if i < 0 || i >= a.length {
		return rerr.Bounds("array index %d out of range (length %d)", i, a.length)
	}
	binary.LittleEndian.PutUint64(a.buf[i*8:], uint64(v))
	return nil
}
