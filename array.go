package weft

import "github.com/arnelofgren/weft/internal/wire"

// Array is a read-only view of a TagArray Value's elements. The zero Array
// has length 0.
type Array struct {
	v  Value
	ch wire.ContainerHeader
}

// Len returns the number of elements.
func (a Array) Len() int {
	if a.v.buf == nil {
		return 0
	}
	return a.ch.Count
}

// Get returns the element at index i, or the undefined Value if i is out
// of range.
func (a Array) Get(i int) Value {
	if i < 0 || i >= a.Len() {
		return undefinedValue
	}
	slotOff := a.v.off + a.ch.SlotOffset(i)
	val, err := resolveSlot(a.v.buf, slotOff, a.ch.Width)
	if err != nil {
		return undefinedValue
	}
	return val
}

// Range calls f for each element in order, stopping early if f returns
// false.
func (a Array) Range(f func(i int, v Value) bool) {
	for i := 0; i < a.Len(); i++ {
		if !f(i, a.Get(i)) {
			return
		}
	}
}

// Count is an alias for Len.
func (a Array) Count() int { return a.Len() }

// Empty reports whether a has no elements.
func (a Array) Empty() bool { return a.Len() == 0 }

// Iterator returns a pull-style iterator over a's elements.
func (a Array) Iterator() *ArrayIterator {
	return &ArrayIterator{a: a, i: -1}
}

// ArrayIterator is a pull-style cursor over an Array, as an alternative to
// Range for callers that want to drive iteration themselves.
type ArrayIterator struct {
	a Array
	i int
}

// Next advances to the next element and reports whether one exists.
func (it *ArrayIterator) Next() bool {
	it.i++
	return it.i < it.a.Len()
}

// Index returns the current element's index.
func (it *ArrayIterator) Index() int { return it.i }

// Value returns the current element.
func (it *ArrayIterator) Value() Value { return it.a.Get(it.i) }
