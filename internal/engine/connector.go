package engine

import (
	"math"

	"github.com/inamate/whiteboard/internal/document"
)

// Anchor is a named attachment point on a node, in unrotated world space.
type Anchor struct {
	ID       string         `json:"id"`
	Position document.Point `json:"position"`
}

const (
	AnchorCenter = "c"

	curveSegments  = 20
	curveMaxOffset = 80.0
)

// Anchors returns a node's attachment points. Every connectable kind uses
// the center and the four edge midpoints; connectors have none.
func Anchors(n document.Node, bounds document.Rect) []Anchor {
	switch n.Type {
	case document.KindConnector:
		return nil
	default:
		c := bounds.Center()
		return []Anchor{
			{ID: AnchorCenter, Position: c},
			{ID: "n", Position: document.Point{X: c.X, Y: bounds.Y}},
			{ID: "e", Position: document.Point{X: bounds.X + bounds.Width, Y: c.Y}},
			{ID: "s", Position: document.Point{X: c.X, Y: bounds.Y + bounds.Height}},
			{ID: "w", Position: document.Point{X: bounds.X, Y: c.Y}},
		}
	}
}

// ResolveEndpoint returns the world position of a connector endpoint. An
// attached endpoint follows its node's anchor and rotation, falling back to
// the node center for an unknown anchor and to the origin for a missing node.
// A free endpoint returns its position, or the origin when unset.
func ResolveEndpoint(e document.Endpoint, state document.State) document.Point {
	if e.Attached() {
		n, ok := state.Node(e.NodeID)
		if ok && n.Type != document.KindConnector {
			bounds := n.Bounds()
			center := bounds.Center()
			pos := center
			for _, a := range Anchors(n, bounds) {
				if a.ID == e.AnchorID {
					pos = a.Position
					break
				}
			}
			if n.Rotation != 0 {
				pos = RotatePoint(pos, center, n.Rotation)
			}
			if e.Offset != nil {
				pos = pos.Add(*e.Offset)
			}
			return pos
		}
	}
	if e.Position != nil {
		return *e.Position
	}
	return document.Point{}
}

// ConnectorEndpoints resolves both ends of a connector.
func ConnectorEndpoints(n document.Node, state document.State) (source, target document.Point) {
	if n.Source != nil {
		source = ResolveEndpoint(*n.Source, state)
	}
	if n.Target != nil {
		target = ResolveEndpoint(*n.Target, state)
	}
	return source, target
}

// ConnectorPath returns the polyline drawn for a connector.
func ConnectorPath(n document.Node, state document.State) []document.Point {
	source, target := ConnectorEndpoints(n, state)
	return BuildPathPoints(source, target, n.LineType())
}

// BuildPathPoints builds a connector polyline. Straight lines have two
// points, orthogonal lines bend through the horizontal midpoint, and curves
// sample a quadratic Bézier whose control point bows off the midpoint.
func BuildPathPoints(source, target document.Point, lineType document.LineType) []document.Point {
	switch lineType {
	case document.LineStraight:
		return []document.Point{source, target}
	case document.LineOrthogonal:
		midX := (source.X + target.X) / 2
		return []document.Point{
			source,
			{X: midX, Y: source.Y},
			{X: midX, Y: target.Y},
			target,
		}
	default:
		ctrl := curveControl(source, target)
		points := make([]document.Point, 0, curveSegments+1)
		for i := 0; i <= curveSegments; i++ {
			t := float64(i) / curveSegments
			mt := 1 - t
			points = append(points, document.Point{
				X: mt*mt*source.X + 2*mt*t*ctrl.X + t*t*target.X,
				Y: mt*mt*source.Y + 2*mt*t*ctrl.Y + t*t*target.Y,
			})
		}
		return points
	}
}

func curveControl(source, target document.Point) document.Point {
	mid := document.Point{X: (source.X + target.X) / 2, Y: (source.Y + target.Y) / 2}
	d := target.Sub(source)
	length := d.Length()
	if length == 0 {
		length = 1
	}
	normal := document.Point{X: -d.Y / length, Y: d.X / length}
	return mid.Add(normal.Mul(math.Min(curveMaxOffset, length/3)))
}

// AnchorHit is an anchor found near a point.
type AnchorHit struct {
	NodeID   string
	AnchorID string
	Position document.Point
}

// FindAnchorAtPoint returns the first anchor of a connectable node within
// radius of p, scanning nodes in paint order.
func FindAnchorAtPoint(state document.State, p document.Point, radius float64) (AnchorHit, bool) {
	r2 := radius * radius
	for _, n := range state.Nodes {
		if !n.Capabilities().Connectable {
			continue
		}
		bounds := n.Bounds()
		center := bounds.Center()
		for _, a := range Anchors(n, bounds) {
			pos := a.Position
			if n.Rotation != 0 {
				pos = RotatePoint(pos, center, n.Rotation)
			}
			if p.DistanceSq(pos) <= r2 {
				return AnchorHit{NodeID: n.ID, AnchorID: a.ID, Position: pos}, true
			}
		}
	}
	return AnchorHit{}, false
}

// EndpointKey names a connector end.
type EndpointKey string

const (
	EndpointNone   EndpointKey = ""
	EndpointSource EndpointKey = "source"
	EndpointTarget EndpointKey = "target"
)

// HitTestEndpoint reports which endpoint, if any, lies within radius of p.
// The source wins when both do.
func HitTestEndpoint(p, source, target document.Point, radius float64) EndpointKey {
	r2 := radius * radius
	if p.DistanceSq(source) <= r2 {
		return EndpointSource
	}
	if p.DistanceSq(target) <= r2 {
		return EndpointTarget
	}
	return EndpointNone
}

// DistanceToSegment returns the distance from p to segment ab.
func DistanceToSegment(p, a, b document.Point) float64 {
	d := b.Sub(a)
	len2 := d.X*d.X + d.Y*d.Y
	if len2 == 0 {
		return p.Sub(a).Length()
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / len2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(d.Mul(t))
	return p.Sub(proj).Length()
}

// HitTestLine reports whether p is within threshold of any segment of the
// polyline.
func HitTestLine(p document.Point, points []document.Point, threshold float64) bool {
	for i := 0; i+1 < len(points); i++ {
		if DistanceToSegment(p, points[i], points[i+1]) <= threshold {
			return true
		}
	}
	return false
}

// ResolveConnectorMode is linked iff both endpoints reference a node.
func ResolveConnectorMode(source, target document.Endpoint) document.ConnectorMode {
	return document.ModeOf(source, target)
}

// ArrowDirection returns the unit direction of the path at its start or end,
// pointing outward. Degenerate paths yield (1, 0).
func ArrowDirection(points []document.Point, atStart bool) document.Point {
	if len(points) < 2 {
		return document.Point{X: 1, Y: 0}
	}
	from, to := points[len(points)-2], points[len(points)-1]
	if atStart {
		from, to = points[1], points[0]
	}
	d := to.Sub(from)
	length := d.Length()
	if length == 0 {
		return document.Point{X: 1, Y: 0}
	}
	return d.Mul(1 / length)
}

// ArrowPath is the outline of an arrowhead.
type ArrowPath struct {
	Tip   document.Point
	Left  document.Point
	Right document.Point
	Back  document.Point
}

// BuildArrowPath builds an arrowhead of the given size with its tip at p,
// pointing along dir.
func BuildArrowPath(p, dir document.Point, size float64) ArrowPath {
	normal := document.Point{X: -dir.Y, Y: dir.X}
	back := p.Sub(dir.Mul(size))
	side := normal.Mul(size * 0.6)
	return ArrowPath{
		Tip:   p,
		Left:  back.Add(side),
		Right: back.Sub(side),
		Back:  back,
	}
}

// ArrowSpec is an arrow style with defaults filled in.
type ArrowSpec struct {
	Type   document.ArrowType
	Size   float64
	Filled bool
}

// ResolveArrow fills defaults into an optional arrow style.
func ResolveArrow(s *document.ArrowStyle) ArrowSpec {
	spec := ArrowSpec{Type: document.ArrowNone, Size: 10, Filled: true}
	if s == nil {
		return spec
	}
	if s.Type != "" {
		spec.Type = s.Type
	}
	if s.Size > 0 {
		spec.Size = s.Size
	}
	if s.Filled != nil {
		spec.Filled = *s.Filled
	}
	return spec
}
