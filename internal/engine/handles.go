package engine

import (
	"math"

	"github.com/inamate/whiteboard/internal/document"
)

// HandleID names a control handle. Scale handles use compass letters.
type HandleID string

const (
	HandleNW     HandleID = "nw"
	HandleN      HandleID = "n"
	HandleNE     HandleID = "ne"
	HandleE      HandleID = "e"
	HandleSE     HandleID = "se"
	HandleS      HandleID = "s"
	HandleSW     HandleID = "sw"
	HandleW      HandleID = "w"
	HandleRotate HandleID = "rotate"
)

type HandleType string

const (
	HandleScale      HandleType = "scale"
	HandleRotateType HandleType = "rotate"
)

// Handle is a selection control drawn at the selection bounds.
type Handle struct {
	ID       HandleID       `json:"id"`
	Type     HandleType     `json:"type"`
	Position document.Point `json:"position"`
	Cursor   string         `json:"cursor"`
}

var cursors = map[HandleID]string{
	HandleNW:     "nwse-resize",
	HandleN:      "ns-resize",
	HandleNE:     "nesw-resize",
	HandleE:      "ew-resize",
	HandleSE:     "nwse-resize",
	HandleS:      "ns-resize",
	HandleSW:     "nesw-resize",
	HandleW:      "ew-resize",
	HandleRotate: "grab",
}

// Cursor returns the pointer cursor hint for a handle.
func (id HandleID) Cursor() string { return cursors[id] }

const (
	minHandleSize    = 6.0
	screenHandleSize = 10.0
	rotateOffset     = 2.2
)

// HandleSize returns the world-space handle size that keeps handles a
// constant size on screen.
func HandleSize(scale float64) float64 {
	return math.Max(minHandleSize, screenHandleSize/scale)
}

// ControlHandles lays out the eight scale handles in priority order, plus a
// rotate handle above the top edge when includeRotate is set.
func ControlHandles(bounds document.Rect, handleSize float64, includeRotate bool) []Handle {
	x, y, w, h := bounds.X, bounds.Y, bounds.Width, bounds.Height
	c := bounds.Center()

	handles := []Handle{
		scaleHandle(HandleNW, x, y),
		scaleHandle(HandleN, c.X, y),
		scaleHandle(HandleNE, x+w, y),
		scaleHandle(HandleE, x+w, c.Y),
		scaleHandle(HandleSE, x+w, y+h),
		scaleHandle(HandleS, c.X, y+h),
		scaleHandle(HandleSW, x, y+h),
		scaleHandle(HandleW, x, c.Y),
	}
	if includeRotate {
		handles = append(handles, Handle{
			ID:       HandleRotate,
			Type:     HandleRotateType,
			Position: document.Point{X: c.X, Y: y - handleSize*rotateOffset},
			Cursor:   HandleRotate.Cursor(),
		})
	}
	return handles
}

func scaleHandle(id HandleID, x, y float64) Handle {
	return Handle{ID: id, Type: HandleScale, Position: document.Point{X: x, Y: y}, Cursor: id.Cursor()}
}

// RotateHandles returns copies of handles rotated about center.
func RotateHandles(handles []Handle, center document.Point, angle float64) []Handle {
	out := make([]Handle, len(handles))
	for i, h := range handles {
		h.Position = RotatePoint(h.Position, center, angle)
		out[i] = h
	}
	return out
}

// HitTestHandle returns the first handle under p. Scale handles are boxes of
// side handleSize; the rotate handle is a circle of diameter handleSize.
func HitTestHandle(p document.Point, handles []Handle, handleSize float64) (Handle, bool) {
	half := handleSize / 2
	for _, h := range handles {
		if h.ID == HandleRotate {
			if p.DistanceSq(h.Position) <= half*half {
				return h, true
			}
			continue
		}
		if p.X >= h.Position.X-half && p.X <= h.Position.X+half &&
			p.Y >= h.Position.Y-half && p.Y <= h.Position.Y+half {
			return h, true
		}
	}
	return Handle{}, false
}

// ControlLayout is the handle arrangement for a selection.
type ControlLayout struct {
	Handles    []Handle // positioned as drawn, rotation applied
	HandleSize float64
	Center     document.Point
	Rotation   float64
	Single     bool
}

// SelectionControls lays out the handles for the selected nodes. A single
// selection gets a rotate handle when rotatable, and all handles follow its
// rotation. ok is false when no handle applies.
func SelectionControls(state document.State, selBounds document.Rect, ids []string) (ControlLayout, bool) {
	if len(ids) == 0 {
		return ControlLayout{}, false
	}
	resizable, rotatable := true, false
	var rotation float64
	for _, id := range ids {
		n, ok := state.Node(id)
		if !ok {
			continue
		}
		caps := n.Capabilities()
		if !caps.Resizable {
			resizable = false
		}
		if len(ids) == 1 {
			rotatable = caps.Rotatable
			rotation = n.Rotation
		}
	}
	if !resizable {
		return ControlLayout{}, false
	}

	single := len(ids) == 1
	size := HandleSize(state.Viewport.Scale)
	center := selBounds.Center()
	handles := ControlHandles(selBounds, size, single && rotatable)
	if rotation != 0 {
		handles = RotateHandles(handles, center, rotation)
	}
	return ControlLayout{
		Handles:    handles,
		HandleSize: size,
		Center:     center,
		Rotation:   rotation,
		Single:     single,
	}, true
}

// ControlHit hit-tests p against the selection's handles.
func ControlHit(state document.State, p document.Point, selBounds document.Rect, ids []string) (Handle, bool) {
	layout, ok := SelectionControls(state, selBounds, ids)
	if !ok {
		return Handle{}, false
	}
	return HitTestHandle(p, layout.Handles, layout.HandleSize)
}
