package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
	"github.com/inamate/whiteboard/internal/store"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomClosed   = errors.New("room closed")
	ErrNodeNotFound = errors.New("node not found")
)

// RoomOptions configure every room a hub creates.
type RoomOptions struct {
	HistoryLimit int
	Board        board.Options
	Logger       *slog.Logger
}

// Room owns one board's store and interaction controller. All input runs
// on the room goroutine, one call at a time.
type Room struct {
	id     string
	store  *store.Store
	board  *board.Board
	logger *slog.Logger

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once

	presence *PresenceManager

	mu          sync.RWMutex
	clients     map[string]*Client // clientID -> client
	seq         int64
	unsubscribe func()
}

func NewRoom(id string, initial document.State, opts RoomOptions) *Room {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("board", id)

	boardOpts := opts.Board
	boardOpts.Logger = logger

	s := store.New(initial, store.WithHistoryLimit(opts.HistoryLimit), store.WithLogger(logger))
	r := &Room{
		id:       id,
		store:    s,
		board:    board.New(s, boardOpts),
		logger:   logger,
		inbox:    make(chan func()),
		done:     make(chan struct{}),
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
	r.unsubscribe = s.Subscribe(r.broadcastState)
	go r.run()
	return r
}

func (r *Room) ID() string { return r.id }

// State returns the current board state.
func (r *Room) State() document.State { return r.store.GetState() }

func (r *Room) run() {
	for {
		select {
		case fn := <-r.inbox:
			fn()
		case <-r.done:
			return
		}
	}
}

// Do runs fn on the room goroutine and waits for it to return.
func (r *Room) Do(ctx context.Context, fn func(b *board.Board, s *store.Store)) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("panic in room task", "panic", rec)
			}
		}()
		fn(r.board, r.store)
	}

	select {
	case r.inbox <- task:
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the room goroutine and disconnects its clients.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.unsubscribe()

		r.mu.Lock()
		for id, c := range r.clients {
			delete(r.clients, id)
			c.close()
		}
		r.mu.Unlock()
	})
}

func (r *Room) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// --- Clients ---

func (r *Room) addClient(c *Client) {
	r.mu.Lock()
	r.clients[c.ClientID] = c
	r.mu.Unlock()

	welcome, err := newMessage(TypeWelcome, WelcomePayload{ClientID: c.ClientID, BoardID: r.id})
	if err == nil {
		welcome.BoardID = r.id
		c.Send(welcome)
	}
	if state, err := r.stateMessage(r.store.GetState()); err == nil {
		c.Send(state)
	}
	if presence, err := r.presence.StateMessage(); err == nil {
		presence.BoardID = r.id
		c.Send(presence)
	}
	r.broadcastExcept(c.ClientID, TypePresenceJoin, PresenceJoinPayload{ClientID: c.ClientID})

	r.logger.Info("client joined", "client", c.ClientID)
}

func (r *Room) removeClient(c *Client) {
	r.mu.Lock()
	if _, ok := r.clients[c.ClientID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.clients, c.ClientID)
	r.mu.Unlock()
	c.close()

	r.presence.Remove(c.ClientID)
	r.broadcastExcept(c.ClientID, TypePresenceLeave, PresenceLeavePayload{ClientID: c.ClientID})

	r.logger.Info("client left", "client", c.ClientID)
}

// ClientCount reports the number of connected clients.
func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Room) stateMessage(state document.State) (*Message, error) {
	msg, err := newMessage(TypeStateSync, StateSyncPayload{State: state})
	if err != nil {
		return nil, err
	}
	msg.BoardID = r.id
	return msg, nil
}

// broadcastState sends every store change to all clients.
func (r *Room) broadcastState(state document.State) {
	msg, err := r.stateMessage(state)
	if err != nil {
		r.logger.Error("marshal state", "error", err)
		return
	}

	r.mu.Lock()
	r.seq++
	msg.Seq = r.seq
	r.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal message", "error", err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		c.sendRaw(data)
	}
}

// broadcastExcept sends a message to every client but the one named.
func (r *Room) broadcastExcept(clientID, typ string, payload any) {
	msg, err := newMessage(typ, payload)
	if err != nil {
		r.logger.Error("marshal message", "type", typ, "error", err)
		return
	}
	msg.BoardID = r.id
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("marshal message", "error", err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, c := range r.clients {
		if id != clientID {
			c.sendRaw(data)
		}
	}
}

// --- Input ---

// Handle applies one client message to the board.
func (r *Room) Handle(ctx context.Context, msg *Message) error {
	var apply func(b *board.Board, s *store.Store) error

	switch msg.Type {
	case TypeInputPointer:
		var p PointerPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		apply = func(b *board.Board, s *store.Store) error { return r.pointer(b, s, msg.ClientID, p) }
	case TypeInputWheel:
		var p WheelPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		apply = func(b *board.Board, _ *store.Store) error {
			b.Wheel(board.WheelEvent{DeltaY: p.DeltaY, Position: document.Point{X: p.X, Y: p.Y}})
			return nil
		}
	case TypeInputKey:
		var p KeyPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		apply = func(b *board.Board, _ *store.Store) error {
			ev := board.KeyEvent{Code: p.Code}
			switch p.Phase {
			case PhaseDown:
				b.KeyDown(ev)
			case PhaseUp:
				b.KeyUp(ev)
			default:
				return fmt.Errorf("unknown key phase %q", p.Phase)
			}
			return nil
		}
	case TypeBoardUndo:
		apply = func(b *board.Board, _ *store.Store) error { b.Undo(); return nil }
	case TypeBoardRedo:
		apply = func(b *board.Board, _ *store.Store) error { b.Redo(); return nil }
	case TypeNodeAdd:
		var p NodeAddPayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		apply = func(_ *board.Board, s *store.Store) error { s.AddNode(p.Node); return nil }
	case TypeNodeRemove:
		var p NodeRemovePayload
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		apply = func(_ *board.Board, s *store.Store) error {
			if !s.RemoveNode(p.ID) {
				return fmt.Errorf("%w: %s", ErrNodeNotFound, p.ID)
			}
			return nil
		}
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	var applyErr error
	if err := r.Do(ctx, func(b *board.Board, s *store.Store) { applyErr = apply(b, s) }); err != nil {
		return err
	}
	return applyErr
}

func (r *Room) pointer(b *board.Board, s *store.Store, clientID string, p PointerPayload) error {
	ev := board.PointerEvent{
		Position: document.Point{X: p.X, Y: p.Y},
		Button:   board.Button(p.Button),
		TargetID: p.TargetID,
		Shift:    p.ShiftKey,
		Meta:     p.MetaKey,
		Ctrl:     p.CtrlKey,
	}
	if ev.TargetID == "" && p.HitTest {
		state := s.GetState()
		ev.TargetID = engine.HitTest(state, engine.ScreenToWorld(state.Viewport, ev.Position))
	}

	switch p.Phase {
	case PhaseDown:
		b.PointerDown(ev)
	case PhaseMove:
		b.PointerMove(ev)
	case PhaseUp:
		b.PointerUp(ev)
	default:
		return fmt.Errorf("unknown pointer phase %q", p.Phase)
	}

	if clientID != "" {
		cursor := engine.ScreenToWorld(s.GetState().Viewport, ev.Position)
		if presence, changed := r.presence.Update(clientID, cursor, b.Session().String()); changed {
			r.broadcastExcept(clientID, TypePresenceUpdate, presence)
		}
	}
	return nil
}

func decodePayload(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}
