package engine

import "github.com/inamate/whiteboard/internal/document"

// DefaultConnectorStrokeWidth is the stroke width of an unstyled connector.
const DefaultConnectorStrokeWidth = 2.0

// HitTestNode reports whether the world point p lies on the rendered surface
// of n. Rotated nodes are tested in their local frame.
func HitTestNode(state document.State, n document.Node, p document.Point) bool {
	switch n.Type {
	case document.KindConnector:
		width := n.Style.StrokeWidth
		if width <= 0 {
			width = DefaultConnectorStrokeWidth
		}
		return HitTestLine(p, ConnectorPath(n, state), width+4)
	case document.KindGeometry:
		local := unrotate(n, p)
		if n.Shape == document.ShapeEllipse {
			return hitEllipse(n.Bounds(), local)
		}
		return n.Bounds().Contains(local)
	default:
		return n.Bounds().Contains(unrotate(n, p))
	}
}

func unrotate(n document.Node, p document.Point) document.Point {
	if n.Rotation == 0 {
		return p
	}
	return NodeMatrix(n).Invert().Apply(p)
}

func hitEllipse(b document.Rect, p document.Point) bool {
	rx, ry := b.Width/2, b.Height/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := b.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// HitTest returns the id of the topmost node under the world point p, or "".
// Shapes and text sit above connectors; within a layer later nodes are on top.
func HitTest(state document.State, p document.Point) string {
	for i := len(state.Nodes) - 1; i >= 0; i-- {
		n := state.Nodes[i]
		if n.Type != document.KindConnector && HitTestNode(state, n, p) {
			return n.ID
		}
	}
	for i := len(state.Nodes) - 1; i >= 0; i-- {
		n := state.Nodes[i]
		if n.Type == document.KindConnector && HitTestNode(state, n, p) {
			return n.ID
		}
	}
	return ""
}
