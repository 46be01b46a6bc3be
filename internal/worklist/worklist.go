package worklist

import "errors"

// Worklist is a FIFO that ignores pushes of elements it already
// holds. Popping an element makes it eligible for pushing again.
type Worklist[E comparable] struct {
	elements []E
	pending  map[E]bool
}

// Push enqueues e and reports whether it was not already pending.
func (w *Worklist[E]) Push(e E) bool {
	if w.pending[e] {
		return false
	}
	if w.pending == nil {
		w.pending = make(map[E]bool)
	}
	w.pending[e] = true
	w.elements = append(w.elements, e)
	return true
}

func (w *Worklist[E]) Empty() bool {
	return len(w.elements) == 0
}

var ErrEmpty = errors.New("worklist is empty")

func (w *Worklist[E]) Pop() E {
	if w.Empty() {
		panic(ErrEmpty)
	}

	e := w.elements[0]
	w.elements = w.elements[1:]
	delete(w.pending, e)
	return e
}
