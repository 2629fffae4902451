// Package history keeps the snapshot ledger behind board undo and redo.
//
// A Ledger holds three parts:
//
//   - past: snapshots that Undo can return to, oldest first
//   - present: the current snapshot
//   - future: snapshots that Redo can return to, nearest first
//
// Push records a new present and discards the future, so history never
// branches:
//
//	l := history.NewLedger(initial, 0) // unbounded
//	l.Push(next)
//	prev := l.Undo()
//	next = l.Redo()
//
// Undo and Redo at the ends of the ledger are no-ops that return the current
// present. Snapshots are stored as given; callers must not mutate a snapshot
// after pushing it.
package history
