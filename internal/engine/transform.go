package engine

import (
	"math"
	"strings"

	"github.com/inamate/whiteboard/internal/document"
)

// DefaultMinSize is the smallest width or height a resize produces.
const DefaultMinSize = 20.0

// ResizeBounds moves the edges named by the handle's compass letters by the
// pointer delta, pinning the opposite edges. Width and height are clamped to
// minSize with the pinned edge held in place. The rotate handle returns start.
func ResizeBounds(start document.Rect, handle HandleID, startPointer, currentPointer document.Point, minSize float64) document.Rect {
	if handle == HandleRotate {
		return start
	}
	dx := currentPointer.X - startPointer.X
	dy := currentPointer.Y - startPointer.Y
	x, y, w, h := start.X, start.Y, start.Width, start.Height

	id := string(handle)
	west := strings.Contains(id, "w")
	east := strings.Contains(id, "e")
	north := strings.Contains(id, "n")
	south := strings.Contains(id, "s")

	if east {
		w = start.Width + dx
	}
	if west {
		w = start.Width - dx
		x = start.X + dx
	}
	if w < minSize {
		w = minSize
		if west {
			x = start.X + (start.Width - minSize)
		}
	}

	if south {
		h = start.Height + dy
	}
	if north {
		h = start.Height - dy
		y = start.Y + dy
	}
	if h < minSize {
		h = minSize
		if north {
			y = start.Y + (start.Height - minSize)
		}
	}

	return document.Rect{X: x, Y: y, Width: w, Height: h}
}

// RotationDelta returns the signed angle swept from "from" to "to" around
// center. Positive is clockwise in screen coordinates (y down).
func RotationDelta(center, from, to document.Point) float64 {
	start := math.Atan2(from.Y-center.Y, from.X-center.X)
	next := math.Atan2(to.Y-center.Y, to.X-center.X)
	return next - start
}

// RotatePoint rotates p about center by angle radians.
func RotatePoint(p, center document.Point, angle float64) document.Point {
	cos, sin := math.Cos(angle), math.Sin(angle)
	dx, dy := p.X-center.X, p.Y-center.Y
	return document.Point{
		X: center.X + dx*cos - dy*sin,
		Y: center.Y + dx*sin + dy*cos,
	}
}

// NodeTransform is a node's position, size and rotation.
type NodeTransform struct {
	Position document.Point
	Size     document.Size
	Rotation float64
}

// TransformOf captures the transform of n.
func TransformOf(n document.Node) NodeTransform {
	return NodeTransform{Position: n.Position, Size: n.Size, Rotation: n.Rotation}
}

// ScaleNodes remaps each node from startBounds into nextBounds, scaling its
// offset from the selection origin and its size by the same factors. ids
// fixes the output order; ids missing from bases are skipped.
func ScaleNodes(startBounds, nextBounds document.Rect, ids []string, bases map[string]NodeTransform) []document.TransformUpdate {
	sx := scaleFactor(nextBounds.Width, startBounds.Width)
	sy := scaleFactor(nextBounds.Height, startBounds.Height)

	updates := make([]document.TransformUpdate, 0, len(ids))
	for _, id := range ids {
		base, ok := bases[id]
		if !ok {
			continue
		}
		dx := base.Position.X - startBounds.X
		dy := base.Position.Y - startBounds.Y
		pos := document.Point{X: nextBounds.X + dx*sx, Y: nextBounds.Y + dy*sy}
		size := document.Size{Width: base.Size.Width * sx, Height: base.Size.Height * sy}
		rot := base.Rotation
		updates = append(updates, document.TransformUpdate{
			ID:       id,
			Position: &pos,
			Size:     &size,
			Rotation: &rot,
		})
	}
	return updates
}

func scaleFactor(next, start float64) float64 {
	if start == 0 {
		return 1
	}
	return next / start
}
