package board

import "github.com/inamate/whiteboard/internal/document"

// Button identifies a pointer button using DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// String returns the string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "Primary"
	case ButtonMiddle:
		return "Middle"
	case ButtonSecondary:
		return "Secondary"
	default:
		return "Unknown"
	}
}

// PointerEvent is a pointer down, move or up in screen space. TargetID is
// the node under the pointer, empty over bare canvas.
type PointerEvent struct {
	Position document.Point
	Button   Button
	TargetID string
	Shift    bool
	Meta     bool
	Ctrl     bool
}

// WheelEvent carries a vertical wheel delta and the cursor position relative
// to the board's container.
type WheelEvent struct {
	DeltaY   float64
	Position document.Point
}

// KeyEvent carries a physical key code such as "Space".
type KeyEvent struct {
	Code string
}

const KeySpace = "Space"
