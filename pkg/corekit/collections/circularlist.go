// Package collections provides generic in-memory collections with
// performance characteristics the built-in slice and map types don't offer:
// a ring-buffer deque with O(1) operations at both ends, and a map that
// preserves insertion order.
package collections

import "fmt"

// CircularList is a double-ended queue backed by a ring buffer.
//
// PushFront, PushBack, PopFront, and PopBack are amortized O(1). Insert and
// RemoveAt shift the shorter side, so they cost O(min(i, n-i)) instead of a
// slice's O(n-i). Indexed access is O(1).
//
// CircularList is not safe for concurrent use.
type CircularList[T any] struct {
	buf   []T
	head  int // index of element 0
	count int
}

// NewCircularList creates a list with capacity for at least n elements.
func NewCircularList[T any](n int) *CircularList[T] {
	if n < 0 {
		n = 0
	}
	return &CircularList[T]{buf: make([]T, roundUpPow2(n))}
}

func roundUpPow2(n int) int {
	size := 8
	for size < n {
		size <<= 1
	}
	return size
}

// Len returns the number of elements.
func (l *CircularList[T]) Len() int { return l.count }

// Cap returns the current buffer capacity.
func (l *CircularList[T]) Cap() int { return len(l.buf) }

// index maps a logical position to a buffer slot.
func (l *CircularList[T]) index(i int) int {
	return (l.head + i) & (len(l.buf) - 1)
}

// Grow ensures capacity for at least n additional elements.
func (l *CircularList[T]) Grow(n int) {
	if n <= 0 || l.count+n <= len(l.buf) {
		return
	}
	l.resize(roundUpPow2(l.count + n))
}

func (l *CircularList[T]) resize(size int) {
	fresh := make([]T, size)
	for i := 0; i < l.count; i++ {
		fresh[i] = l.buf[l.index(i)]
	}
	l.buf = fresh
	l.head = 0
}

// PushBack appends v at the end.
func (l *CircularList[T]) PushBack(v T) {
	if l.count == len(l.buf) {
		l.resize(len(l.buf) * 2)
	}
	l.buf[l.index(l.count)] = v
	l.count++
}

// PushFront prepends v at the beginning.
func (l *CircularList[T]) PushFront(v T) {
	if l.count == len(l.buf) {
		l.resize(len(l.buf) * 2)
	}
	l.head = (l.head - 1) & (len(l.buf) - 1)
	l.buf[l.head] = v
	l.count++
}

// PopBack removes and returns the last element.
func (l *CircularList[T]) PopBack() (T, bool) {
	var zero T
	if l.count == 0 {
		return zero, false
	}
	l.count--
	i := l.index(l.count)
	v := l.buf[i]
	l.buf[i] = zero // release the reference
	return v, true
}

// PopFront removes and returns the first element.
func (l *CircularList[T]) PopFront() (T, bool) {
	var zero T
	if l.count == 0 {
		return zero, false
	}
	v := l.buf[l.head]
	l.buf[l.head] = zero
	l.head = (l.head + 1) & (len(l.buf) - 1)
	l.count--
	return v, true
}

// Front returns the first element without removing it.
func (l *CircularList[T]) Front() (T, bool) {
	if l.count == 0 {
		var zero T
		return zero, false
	}
	return l.buf[l.head], true
}

// Back returns the last element without removing it.
func (l *CircularList[T]) Back() (T, bool) {
	if l.count == 0 {
		var zero T
		return zero, false
	}
	return l.buf[l.index(l.count-1)], true
}

// At returns the element at position i. It panics if i is out of range.
func (l *CircularList[T]) At(i int) T {
	l.check(i)
	return l.buf[l.index(i)]
}

// Set replaces the element at position i. It panics if i is out of range.
func (l *CircularList[T]) Set(i int, v T) {
	l.check(i)
	l.buf[l.index(i)] = v
}

func (l *CircularList[T]) check(i int) {
	if i < 0 || i >= l.count {
		panic(fmt.Sprintf("collections: index %d out of range [0, %d)", i, l.count))
	}
}

// Insert places v at position i, shifting whichever side is shorter.
// i may equal Len(), which is equivalent to PushBack.
func (l *CircularList[T]) Insert(i int, v T) {
	if i < 0 || i > l.count {
		panic(fmt.Sprintf("collections: insert index %d out of range [0, %d]", i, l.count))
	}
	if l.count == len(l.buf) {
		l.resize(len(l.buf) * 2)
	}
	if i <= l.count/2 {
		// Shift the front left by one.
		l.head = (l.head - 1) & (len(l.buf) - 1)
		for j := 0; j < i; j++ {
			l.buf[l.index(j)] = l.buf[l.index(j+1)]
		}
	} else {
		// Shift the back right by one.
		for j := l.count; j > i; j-- {
			l.buf[l.index(j)] = l.buf[l.index(j-1)]
		}
	}
	l.count++
	l.buf[l.index(i)] = v
}

// RemoveAt removes and returns the element at position i, shifting
// whichever side is shorter.
func (l *CircularList[T]) RemoveAt(i int) T {
	l.check(i)
	v := l.buf[l.index(i)]
	var zero T
	if i < l.count/2 {
		for j := i; j > 0; j-- {
			l.buf[l.index(j)] = l.buf[l.index(j-1)]
		}
		l.buf[l.head] = zero
		l.head = (l.head + 1) & (len(l.buf) - 1)
	} else {
		for j := i; j < l.count-1; j++ {
			l.buf[l.index(j)] = l.buf[l.index(j+1)]
		}
		l.buf[l.index(l.count-1)] = zero
	}
	l.count--
	return v
}

// Clear removes all elements, keeping the buffer.
func (l *CircularList[T]) Clear() {
	var zero T
	for i := 0; i < l.count; i++ {
		l.buf[l.index(i)] = zero
	}
	l.head = 0
	l.count = 0
}

// Do calls f on each element in order, stopping early if f returns false.
func (l *CircularList[T]) Do(f func(v T) bool) {
	for i := 0; i < l.count; i++ {
		if !f(l.buf[l.index(i)]) {
			return
		}
	}
}
