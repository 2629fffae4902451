package board

import (
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
)

// SessionKind names the interaction in progress.
type SessionKind int

const (
	SessionIdle SessionKind = iota
	SessionPanning
	SessionControlDrag
	SessionConnectorDrag
	SessionNodeDrag
	SessionBoxSelecting
)

// String returns the string representation of the session kind.
func (k SessionKind) String() string {
	switch k {
	case SessionIdle:
		return "Idle"
	case SessionPanning:
		return "Panning"
	case SessionControlDrag:
		return "ControlDrag"
	case SessionConnectorDrag:
		return "ConnectorDrag"
	case SessionNodeDrag:
		return "NodeDrag"
	case SessionBoxSelecting:
		return "BoxSelecting"
	default:
		return "Unknown"
	}
}

// session is the state captured by pointer-down for one interaction. A nil
// session means idle.
type session interface {
	kind() SessionKind
}

type panSession struct {
	start document.Point // screen space
	base  document.Viewport
}

// controlSession resizes or rotates the selection from a handle.
type controlSession struct {
	handle        engine.HandleID
	targetIDs     []string
	startPointer  document.Point
	startBounds   document.Rect
	startRotation float64
	bases         map[string]engine.NodeTransform
}

// connectorSession re-routes one end of a connector. The other end keeps
// the endpoint captured at pointer-down.
type connectorSession struct {
	connectorID string
	key         engine.EndpointKey
	source      document.Endpoint
	target      document.Endpoint
}

type dragSession struct {
	start document.Point
	ids   []string
	bases map[string]document.Point
}

// boxSession draws a marquee. base holds the selection kept by shift.
type boxSession struct {
	start document.Point
	base  []string
}

func (*panSession) kind() SessionKind       { return SessionPanning }
func (*controlSession) kind() SessionKind   { return SessionControlDrag }
func (*connectorSession) kind() SessionKind { return SessionConnectorDrag }
func (*dragSession) kind() SessionKind      { return SessionNodeDrag }
func (*boxSession) kind() SessionKind       { return SessionBoxSelecting }
