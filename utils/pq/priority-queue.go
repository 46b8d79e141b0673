package pq

import "container/heap"

// lessFunc is a comparison function between two elements of type T.
type lessFunc[T any] func(T, T) bool

// _heap satisfies the heap.Interface. It includes a list of elements,
// a comparison function and the position of every element in the list.
type _heap[T comparable] struct {
	list  []T
	less  lessFunc[T]
	index map[T]int
}

// Len returns the size of the heap.
func (h _heap[T]) Len() int {
	return len(h.list)
}

// Swap interchanges the values of the elements at the given indices.
func (h _heap[T]) Swap(i, j int) {
	l := h.list
	l[i], l[j] = l[j], l[i]
	h.index[l[i]] = i
	h.index[l[j]] = j
}

// Push appends a given element to the heap.
func (h *_heap[T]) Push(x any) {
	el := x.(T)
	h.index[el] = len(h.list)
	h.list = append(h.list, el)
}

// Pop retrieves the last element in the heap.
func (h *_heap[T]) Pop() any {
	old := h.list
	n := len(old)
	x := old[n-1]
	var zero T
	old[n-1] = zero
	h.list = old[0 : n-1]
	delete(h.index, x)
	return x
}

// Less compares two elements in the heap at the given indices.
func (h _heap[T]) Less(i, j int) bool {
	return h.less(h.list[i], h.list[j])
}

var _ heap.Interface = (*_heap[int])(nil)

// PriorityQueue implements a priority queue without duplicate elements.
type PriorityQueue[T comparable] struct {
	heap _heap[T]
}

// Empty creates an empty priority queue for elements of a given type,
// with the given comparison function.
func Empty[T comparable](less lessFunc[T]) PriorityQueue[T] {
	return PriorityQueue[T]{
		heap: _heap[T]{nil, less, make(map[T]int)},
	}
}

// IsEmpty checks whether the priority queue is empty.
func (p *PriorityQueue[T]) IsEmpty() bool {
	return len(p.heap.list) == 0
}

// Len returns the number of queued elements.
func (p *PriorityQueue[T]) Len() int {
	return len(p.heap.list)
}

// GetNext pops the top element from the heap.
func (p *PriorityQueue[T]) GetNext() T {
	return heap.Pop(&p.heap).(T)
}

// Add inserts the given element in the heap, if not already present.
func (p *PriorityQueue[T]) Add(x T) {
	if p.Contains(x) {
		return
	}

	heap.Push(&p.heap, x)
}

// Contains checks whether x is queued.
func (p *PriorityQueue[T]) Contains(x T) bool {
	_, found := p.heap.index[x]
	return found
}

// Remove deletes x from the queue. Reports whether x was present.
func (p *PriorityQueue[T]) Remove(x T) bool {
	i, found := p.heap.index[x]
	if !found {
		return false
	}
	heap.Remove(&p.heap, i)
	return true
}
