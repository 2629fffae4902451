package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/history"
	"github.com/inamate/whiteboard/internal/typeid"
)

// Listener is called with the new state after every replacement, previews
// included.
type Listener = func(document.State)

type listenerEntry struct {
	id int
	fn Listener
}

// Store holds the canonical board state, applies actions and keeps the undo
// ledger. Commit actions push one snapshot each; preview actions push none.
type Store struct {
	mu        sync.RWMutex
	state     document.State
	ledger    *history.Ledger[document.State]
	listeners []listenerEntry
	nextID    int

	now    func() time.Time
	newID  func(prefix string) string
	logger *slog.Logger
}

type Option func(*Store)

// WithClock sets the clock used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the generator for node, edge and group ids.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithHistoryLimit caps the number of undo steps. Zero means unbounded.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) { s.ledger = history.NewLedger(s.state, limit) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a store whose initial state is also the bottom of the undo
// ledger.
func New(initial document.State, opts ...Option) *Store {
	s := &Store{
		state:  initial,
		now:    time.Now,
		newID:  typeid.New,
		logger: slog.New(slog.DiscardHandler),
	}
	s.ledger = history.NewLedger(initial, 0)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current state. Callers must not mutate it.
func (s *Store) GetState() document.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Node looks up a node in the current state.
func (s *Store) Node(id string) (document.Node, bool) {
	return s.GetState().Node(id)
}

// Subscribe registers a listener. Listeners run in registration order. The
// returned function removes the listener and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.CanUndo()
}

func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.CanRedo()
}

// Undo restores the previous committed snapshot. The live viewport is kept
// and any marquee box is dropped. At the start of history the state is left
// untouched, but listeners are still notified.
func (s *Store) Undo() {
	s.travel(s.ledger.CanUndo, s.ledger.Undo)
}

// Redo restores the next committed snapshot, with the same viewport and
// marquee handling as Undo.
func (s *Store) Redo() {
	s.travel(s.ledger.CanRedo, s.ledger.Redo)
}

func (s *Store) travel(can func() bool, step func() document.State) {
	s.mu.Lock()
	if can() {
		next := step().Clone()
		next.Viewport = s.state.Viewport
		next.Selection.Box = nil
		s.state = next
	}
	state, listeners := s.state, s.snapshotListeners()
	s.mu.Unlock()

	s.notify(state, listeners)
}

// update replaces the state with a mutated copy. A commit pushes the new
// state onto the ledger.
func (s *Store) update(mutate func(*document.State), commit bool) {
	s.mu.Lock()
	next := s.state.Clone()
	mutate(&next)
	next.UpdatedAt = s.now().UnixMilli()
	s.state = next
	if commit {
		s.ledger.Push(next)
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.notify(next, listeners)
}

// snapshotListeners copies the listener list (caller must hold lock)
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		out[i] = l.fn
	}
	return out
}

func (s *Store) notify(state document.State, listeners []Listener) {
	for _, fn := range listeners {
		fn(state)
	}
}
