package engine

import (
	"math"

	"github.com/inamate/whiteboard/internal/document"
)

// NormalizeBox returns the rect spanned by two arbitrary corners.
func NormalizeBox(start, end document.Point) document.Rect {
	return document.Rect{
		X:      math.Min(start.X, end.X),
		Y:      math.Min(start.Y, end.Y),
		Width:  math.Abs(end.X - start.X),
		Height: math.Abs(end.Y - start.Y),
	}
}

// Intersects reports whether box and bounds overlap, touching edges
// included. A nil box intersects nothing.
func Intersects(box *document.Rect, bounds document.Rect) bool {
	if box == nil {
		return false
	}
	return !(bounds.X > box.X+box.Width ||
		bounds.X+bounds.Width < box.X ||
		bounds.Y > box.Y+box.Height ||
		bounds.Y+bounds.Height < box.Y)
}

// MergeSelectionIDs unions two id lists, keeping first-seen order with base
// first.
func MergeSelectionIDs(base, hits []string) []string {
	seen := make(map[string]bool, len(base)+len(hits))
	out := make([]string, 0, len(base)+len(hits))
	for _, ids := range [][]string{base, hits} {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// BoxHits returns the ids of nodes whose bounds intersect box, in paint order.
func BoxHits(state document.State, box document.Rect) []string {
	hits := []string{}
	for _, n := range state.Nodes {
		if Intersects(&box, NodeBounds(state, n)) {
			hits = append(hits, n.ID)
		}
	}
	return hits
}
