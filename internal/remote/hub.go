package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/typeid"
)

// Hub is the registry of board rooms. Client registration is processed by
// Run.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	opts   RoomOptions
	logger *slog.Logger
}

func NewHub(opts RoomOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		opts:       opts,
		logger:     opts.Logger,
	}
}

// Run processes client registration until ctx is done or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			client.room.addClient(client)
		case client := <-h.unregister:
			client.room.removeClient(client)
		case <-ctx.Done():
			h.Stop()
			return
		case <-h.done:
			return
		}
	}
}

// Stop closes every room. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		rooms := h.rooms
		h.rooms = make(map[string]*Room)
		h.mu.Unlock()

		for _, room := range rooms {
			room.Close()
		}
		h.logger.Info("hub stopped", "rooms", len(rooms))
	})
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrRoomClosed
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Create opens a room for a new board seeded with initial.
func (h *Hub) Create(initial document.State) (*Room, error) {
	select {
	case <-h.done:
		return nil, ErrRoomClosed
	default:
	}

	id := typeid.NewBoardID()
	room := NewRoom(id, initial, h.opts)
	h.mu.Lock()
	h.rooms[id] = room
	h.mu.Unlock()

	h.logger.Info("board created", "board", id)
	return room, nil
}

func (h *Hub) Room(boardID string) (*Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[boardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, boardID)
	}
	return room, nil
}

// Delete closes a room and forgets it.
func (h *Hub) Delete(boardID string) error {
	h.mu.Lock()
	room, ok := h.rooms[boardID]
	delete(h.rooms, boardID)
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, boardID)
	}
	room.Close()
	h.logger.Info("board deleted", "board", boardID)
	return nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
