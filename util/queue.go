// Package util provides a collection of domain-agnostic utility functions and generic containers.
package util

// Queue implements a parameterized First-In-First-Out (FIFO) data structure.
type Queue[T any] struct {
	items []T
}

// Push appends a new element to the back of the queue.
func (q *Queue[T]) Push(item T) {
	q.items = append(q.items, item)
}

// Pop removes and returns the front element of the queue; returns the zero value if the queue is empty.
func (q *Queue[T]) Pop() (item T) {
	if len(q.items) == 0 {
		return
	}
	item = q.items[0]
	q.items = q.items[1:]
	return
}

// Peek returns the front element without removing it; returns the zero value if the queue is empty.
func (q *Queue[T]) Peek() (item T) {
	if len(q.items) == 0 {
		return
	}
	return q.items[0]
}

// Len returns the total number of elements currently stored in the queue.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Clear removes all elements from the queue, resetting it to an empty state.
func (q *Queue[T]) Clear() {
	q.items = nil
}
