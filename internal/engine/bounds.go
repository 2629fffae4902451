package engine

import "github.com/inamate/whiteboard/internal/document"

// ConnectorPadding pads connector path bounds so thin lines stay hittable.
const ConnectorPadding = 6.0

// NodeBounds returns a node's unrotated bounds in world space. Connector
// bounds are the padded bounds of their resolved path.
func NodeBounds(state document.State, n document.Node) document.Rect {
	switch n.Type {
	case document.KindConnector:
		return BoundsFromPoints(ConnectorPath(n, state), ConnectorPadding)
	default:
		return n.Bounds()
	}
}

// MergeBounds returns the smallest rect enclosing all rects. ok is false for
// empty input.
func MergeBounds(rects []document.Rect) (merged document.Rect, ok bool) {
	if len(rects) == 0 {
		return document.Rect{}, false
	}
	merged = rects[0]
	for _, r := range rects[1:] {
		merged = merged.Union(r)
	}
	return merged, true
}

// SelectedBounds merges the bounds of the listed nodes that exist in state.
func SelectedBounds(state document.State, ids []string) (document.Rect, bool) {
	if len(ids) == 0 {
		return document.Rect{}, false
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var rects []document.Rect
	for _, n := range state.Nodes {
		if want[n.ID] {
			rects = append(rects, NodeBounds(state, n))
		}
	}
	return MergeBounds(rects)
}

// BoundsFromPoints returns the bounds of a point list grown by padding.
// An empty list yields a padded rect at the origin.
func BoundsFromPoints(points []document.Point, padding float64) document.Rect {
	if len(points) == 0 {
		return document.Rect{X: -padding, Y: -padding, Width: 2 * padding, Height: 2 * padding}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return document.Rect{
		X:      minX - padding,
		Y:      minY - padding,
		Width:  maxX - minX + padding*2,
		Height: maxY - minY + padding*2,
	}
}
