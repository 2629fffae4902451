package history

// Ledger is a past/present/future snapshot stack.
type Ledger[T any] struct {
	past    []T
	present T
	future  []T

	// limit caps len(past); zero or negative means unbounded.
	limit int
}

// NewLedger creates a ledger whose present is initial. A limit greater than
// zero caps the number of undo steps kept; older steps are dropped first.
func NewLedger[T any](initial T, limit int) *Ledger[T] {
	return &Ledger[T]{present: initial, limit: limit}
}

// Push makes next the present and clears the redo future.
func (l *Ledger[T]) Push(next T) {
	l.past = append(l.past, l.present)
	if l.limit > 0 && len(l.past) > l.limit {
		drop := len(l.past) - l.limit
		clear(l.past[:drop])
		l.past = l.past[drop:]
	}
	l.present = next
	clear(l.future)
	l.future = l.future[:0]
}

// Undo steps back one snapshot and returns the new present.
func (l *Ledger[T]) Undo() T {
	if len(l.past) == 0 {
		return l.present
	}
	last := len(l.past) - 1
	prev := l.past[last]
	var zero T
	l.past[last] = zero
	l.past = l.past[:last]

	l.future = append([]T{l.present}, l.future...)
	l.present = prev
	return l.present
}

// Redo steps forward one snapshot and returns the new present.
func (l *Ledger[T]) Redo() T {
	if len(l.future) == 0 {
		return l.present
	}
	next := l.future[0]
	l.future = l.future[1:]

	l.past = append(l.past, l.present)
	l.present = next
	return l.present
}

// Reset discards all history and makes initial the present.
func (l *Ledger[T]) Reset(initial T) {
	l.past = nil
	l.future = nil
	l.present = initial
}

func (l *Ledger[T]) Present() T { return l.present }

// Past returns a copy of the undo stack, oldest first.
func (l *Ledger[T]) Past() []T { return append([]T(nil), l.past...) }

// Future returns a copy of the redo stack, nearest first.
func (l *Ledger[T]) Future() []T { return append([]T(nil), l.future...) }

func (l *Ledger[T]) CanUndo() bool { return len(l.past) > 0 }

func (l *Ledger[T]) CanRedo() bool { return len(l.future) > 0 }

// Len returns the number of snapshots held, present included.
func (l *Ledger[T]) Len() int { return len(l.past) + 1 + len(l.future) }
