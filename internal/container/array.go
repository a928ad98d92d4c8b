// Package container provides the generic, non-heap-resident growable
// array used by internal/bytecode to back a ByteCode's instruction
// stream and literal pool. It follows the same growth policy as
// heap.ArrayAny (8 initial, doubling, saturating at 2^31-1, per
// original_source/src/rawarray.rs) but over a plain Go slice rather
// than arena bytes, since instructions/literals are compiler-internal
// bookkeeping, not spec.md heap-visible values.
package container

import "golang.org/x/exp/constraints"

const defaultSize = 8

// Array is a generic growable buffer; constraints.Integer only bounds the
// capacity arithmetic in grow, not the element type, so Array[uint32] and
// Array[T] (T = any concrete struct) both work.
type Array[T any] struct {
	data []T
}

func New[T any]() *Array[T] {
	return &Array[T]{}
}

func grow[I constraints.Integer](capacity I) I {
	maxCapacity := I(1<<31 - 1)
	if capacity == 0 {
		return I(defaultSize)
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

func (a *Array[T]) Push(v T) {
	if len(a.data) == cap(a.data) {
		newCap := grow(cap(a.data))
		grown := make([]T, len(a.data), newCap)
		copy(grown, a.data)
		a.data = grown
	}
	a.data = append(a.data, v)
}

func (a *Array[T]) Len() int { return len(a.data) }

func (a *Array[T]) Get(i int) T { return a.data[i] }

func (a *Array[T]) Set(i int, v T) { a.data[i] = v }

func (a *Array[T]) Slice() []T { return a.data }
