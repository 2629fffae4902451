package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/typeid"
)

func TestHubCreateAndLookup(t *testing.T) {
	h := NewHub(RoomOptions{})
	defer h.Stop()

	room, err := h.Create(document.NewSampleBoard())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := typeid.Validate(room.ID(), typeid.PrefixBoard); err != nil {
		t.Errorf("board id %q: %v", room.ID(), err)
	}

	got, err := h.Room(room.ID())
	if err != nil || got != room {
		t.Fatalf("Room() = %v, %v", got, err)
	}
	if _, err := h.Room("board_missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Room(missing) error = %v", err)
	}

	if err := h.Delete(room.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !room.Closed() || h.Len() != 0 {
		t.Error("deleted room still open")
	}
	if err := h.Delete(room.ID()); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("second Delete error = %v", err)
	}
}

func TestHubRegisterAndStop(t *testing.T) {
	h := NewHub(RoomOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	room, err := h.Create(document.NewState())
	if err != nil {
		t.Fatal(err)
	}
	c := newTestClient(room, "c1")
	c.hub = h
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if msg := receive(t, c); msg.Type != TypeWelcome {
		t.Fatalf("first message = %+v", msg)
	}

	h.Stop()
	h.Stop()
	if !room.Closed() {
		t.Error("Stop should close rooms")
	}
	if _, err := h.Create(document.NewState()); !errors.Is(err, ErrRoomClosed) {
		t.Errorf("Create after Stop error = %v", err)
	}
	h.Unregister(c)
}
