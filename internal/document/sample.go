package document

import (
	"time"

	"github.com/inamate/whiteboard/internal/typeid"
)

func NewSampleBoard() State {
	state := NewState()
	state.UpdatedAt = time.Now().UnixMilli()

	rectID := typeid.NewNodeID()
	ellipseID := typeid.NewNodeID()
	textID := typeid.NewNodeID()
	linkID := typeid.NewNodeID()
	freeID := typeid.NewNodeID()

	rect := NewGeometryNode(rectID, ShapeRect)
	rect.Position = Point{X: 80, Y: 80}
	rect.Style = Style{Fill: "#fef3c7", Stroke: "#b45309", StrokeWidth: 2}

	ellipse := NewGeometryNode(ellipseID, ShapeEllipse)
	ellipse.Position = Point{X: 420, Y: 60}
	ellipse.Style = Style{Fill: "#dbeafe", Stroke: "#1d4ed8", StrokeWidth: 2}

	text := NewTextNode(textID, "Whiteboard")
	text.Position = Point{X: 90, Y: 260}
	text.Rotation = -0.08

	link := NewConnectorNode(linkID,
		AttachedEndpoint(rectID, "e"),
		AttachedEndpoint(ellipseID, "w"),
	)
	link.Style = Style{
		LineType: LineCurve,
		ArrowEnd: &ArrowStyle{Type: ArrowTriangle},
	}

	free := NewConnectorNode(freeID,
		FreeEndpoint(Point{X: 420, Y: 280}),
		FreeEndpoint(Point{X: 620, Y: 340}),
	)
	free.Style = Style{LineType: LineOrthogonal, Dash: []float64{6, 4}}

	state.Nodes = append(state.Nodes, rect, ellipse, text, link, free)
	state.Edges = append(state.Edges, Edge{
		ID:     typeid.NewEdgeID(),
		Source: rectID,
		Target: textID,
	})
	state.Groups = append(state.Groups, Group{
		ID:      typeid.NewGroupID(),
		Name:    "Shapes",
		NodeIDs: []string{rectID, ellipseID},
	})
	return state
}
