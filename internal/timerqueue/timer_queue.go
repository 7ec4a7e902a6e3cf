package timerqueue

import (
	"sort"
)

type CompareFunc[T any] func(a, b T) int

// Queue keeps its items sorted by compare; equal items keep insertion order.
// It is not safe for concurrent use.
type Queue[T any] struct {
	data    []T
	compare CompareFunc[T]
}

func New[T any](cmp CompareFunc[T]) *Queue[T] {
	return &Queue[T]{
		data:    make([]T, 0),
		compare: cmp,
	}
}

func (q *Queue[T]) Insert(val T) {
	// first index strictly greater than val, so equal items stay FIFO
	idx := sort.Search(len(q.data), func(i int) bool {
		return q.compare(val, q.data[i]) < 0
	})

	var zero T
	q.data = append(q.data, zero)
	copy(q.data[idx+1:], q.data[idx:])
	q.data[idx] = val
}

func (q *Queue[T]) Peek() (T, bool) {
	if len(q.data) == 0 {
		var zero T
		return zero, false
	}
	return q.data[0], true
}

func (q *Queue[T]) Pop() (T, bool) {
	head, ok := q.Peek()
	if !ok {
		return head, false
	}
	var zero T
	q.data[0] = zero
	q.data = q.data[1:]
	return head, true
}

// Remove drops the first item matching pred.
func (q *Queue[T]) Remove(pred func(T) bool) bool {
	for i, v := range q.data {
		if pred(v) {
			q.data = append(q.data[:i], q.data[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue[T]) Len() int {
	return len(q.data)
}

// Items returns a sorted copy of the queue.
func (q *Queue[T]) Items() []T {
	out := make([]T, len(q.data))
	copy(out, q.data)
	return out
}
