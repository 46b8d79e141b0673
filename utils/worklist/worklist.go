package worklist

// Worklist is a double-ended queue. Elements are added at the back and
// may be taken from either end, giving FIFO (GetNext) or LIFO (GetLast)
// processing.
type Worklist[T any] struct {
	list []T
	head int
}

// Start worklist execution with provided `starting` element and an iteration
// function. The iteration function exposes the next element and a function with
// which to add more elements to the worklist.
func Start[T any](start T, do func(next T, add func(el T))) {
	StartV([]T{start}, do)
}

// Start worklist execution with a preloaded queue and an iteration
// function. The iteration function exposes the next element and a function with
// which to add more elements to the worklist.
func StartV[T any](start []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range start {
		W.Add(e)
	}

	W.Process(do)
}

func Empty[T any]() Worklist[T] {
	return Worklist[T]{}
}

// GetNext removes the oldest element. The zero value is returned for an
// empty worklist.
func (w *Worklist[T]) GetNext() (ret T) {
	if w.IsEmpty() {
		return
	}
	next := w.list[w.head]
	w.list[w.head] = ret
	w.head++
	w.compact()
	return next
}

// GetLast removes the most recently added element.
func (w *Worklist[T]) GetLast() (ret T) {
	if w.IsEmpty() {
		return
	}
	last := w.list[len(w.list)-1]
	w.list[len(w.list)-1] = ret
	w.list = w.list[:len(w.list)-1]
	w.compact()
	return last
}

func (w *Worklist[T]) IsEmpty() bool {
	return w.Len() == 0
}

func (w *Worklist[T]) Len() int {
	return len(w.list) - w.head
}

func (w *Worklist[T]) Add(el T) {
	w.list = append(w.list, el)
}

// Filter keeps only the elements satisfying keep, preserving their order.
func (w *Worklist[T]) Filter(keep func(T) bool) {
	kept := w.list[:0]
	for _, el := range w.list[w.head:] {
		if keep(el) {
			kept = append(kept, el)
		}
	}
	var zero T
	for i := len(kept); i < len(w.list); i++ {
		w.list[i] = zero
	}
	w.list = kept
	w.head = 0
}

func (w *Worklist[T]) Process(
	do func(
		next T,
		add func(element T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), w.Add)
	}
}

// compact releases the consumed prefix once it dominates the backing slice.
func (w *Worklist[T]) compact() {
	if w.head == len(w.list) {
		w.list = w.list[:0]
		w.head = 0
		return
	}
	if w.head > 32 && w.head*2 > len(w.list) {
		w.list = append(w.list[:0], w.list[w.head:]...)
		w.head = 0
	}
}
