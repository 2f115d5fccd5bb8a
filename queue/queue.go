// Package queue provides the ordered, drain-only collection of middleware a
// pipeline handler consumes. Items leave in the order they were enqueued;
// nothing is ever reordered or deduplicated.
package queue

import "errors"

// ErrUnderflow is returned by [Queue.Dequeue] when the queue is empty.
var ErrUnderflow = errors.New("queue: dequeue from empty queue")

// Queue is a FIFO of T. It is not safe for concurrent use; a queue belongs
// to exactly one dispatch pass.
type Queue[T any] struct {
	items []T
	head  int
}

// New returns a queue populated with items in the given order.
func New[T any](items ...T) *Queue[T] {
	q := &Queue[T]{items: make([]T, 0, len(items))}
	q.items = append(q.items, items...)
	return q
}

// Enqueue appends item at the tail.
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the head. Callers are expected to check
// [Queue.Len] first; an empty queue yields ErrUnderflow.
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T
	if q.Len() == 0 {
		return zero, ErrUnderflow
	}
	item := q.items[q.head]
	q.items[q.head] = zero // release the reference
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, nil
}

// Peek returns the head without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

// Len reports the number of items still queued.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}
