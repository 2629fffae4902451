package remote

import (
	"encoding/json"

	"github.com/inamate/whiteboard/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Input (client → server)
	TypeInputPointer = "input.pointer"
	TypeInputWheel   = "input.wheel"
	TypeInputKey     = "input.key"

	// Board commands (client → server)
	TypeBoardUndo  = "board.undo"
	TypeBoardRedo  = "board.redo"
	TypeNodeAdd    = "node.add"
	TypeNodeRemove = "node.remove"

	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// State sync (server → client)
	TypeStateSync = "state.sync"

	// Presence (server → client)
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

const (
	PhaseDown = "down"
	PhaseMove = "move"
	PhaseUp   = "up"
)

// PointerPayload is a pointer event in container coordinates. When HitTest
// is set and TargetID is empty the server resolves the target itself.
type PointerPayload struct {
	Phase    string  `json:"phase"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Button   int     `json:"button"`
	TargetID string  `json:"targetId,omitempty"`
	HitTest  bool    `json:"hitTest,omitempty"`
	ShiftKey bool    `json:"shiftKey,omitempty"`
	MetaKey  bool    `json:"metaKey,omitempty"`
	CtrlKey  bool    `json:"ctrlKey,omitempty"`
}

type WheelPayload struct {
	DeltaY float64 `json:"deltaY"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type KeyPayload struct {
	Phase string `json:"phase"`
	Code  string `json:"code"`
}

type NodeAddPayload struct {
	Node document.Node `json:"node"`
}

type NodeRemovePayload struct {
	ID string `json:"id"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	BoardID  string `json:"boardId"`
}

type StateSyncPayload struct {
	State document.State `json:"state"`
}

// PresencePayload is a client's cursor in world coordinates and the
// interaction it is driving.
type PresencePayload struct {
	ClientID string         `json:"clientId"`
	Cursor   document.Point `json:"cursor"`
	Session  string         `json:"session"`
}

type PresenceStatePayload struct {
	Presences map[string]PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID string `json:"clientId"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
