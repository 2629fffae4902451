package document

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Length returns the distance from the origin.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

// DistanceSq returns the squared distance between two points.
func (p Point) DistanceSq(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectOf returns the rect covering a position and size.
func RectOf(pos Point, size Size) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects. Unlike a pure area
// union, degenerate rects still contribute their position.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Inset shrinks the rect by d on every side. Negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

const (
	MinScale = 0.2
	MaxScale = 4.0
)

// Viewport maps world to screen: screen = world*scale + (x, y).
type Viewport struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Scale: 1}
}

type NodeKind string

const (
	KindGeometry  NodeKind = "geometry"
	KindText      NodeKind = "text"
	KindConnector NodeKind = "connector"
)

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindGeometry, KindText, KindConnector:
		return true
	}
	return false
}

type ShapeKind string

const (
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
)

type ConnectorMode string

const (
	ModeLinked ConnectorMode = "linked"
	ModeFree   ConnectorMode = "free"
)

type LineType string

const (
	LineStraight   LineType = "straight"
	LineOrthogonal LineType = "orthogonal"
	LineCurve      LineType = "curve"
)

type ArrowType string

const (
	ArrowNone     ArrowType = "none"
	ArrowTriangle ArrowType = "triangle"
	ArrowCircle   ArrowType = "circle"
	ArrowDiamond  ArrowType = "diamond"
)

type ArrowStyle struct {
	Type   ArrowType `json:"type,omitempty"`
	Size   float64   `json:"size,omitempty"`
	Filled *bool     `json:"filled,omitempty"`
}

// Style holds optional presentation attributes. Zero values mean "use the
// kind's default"; pointer fields distinguish an explicit zero.
type Style struct {
	Fill         string      `json:"fill,omitempty"`
	Stroke       string      `json:"stroke,omitempty"`
	StrokeWidth  float64     `json:"strokeWidth,omitempty"`
	Opacity      *float64    `json:"opacity,omitempty"`
	Dash         []float64   `json:"dash,omitempty"`
	CornerRadius *float64    `json:"cornerRadius,omitempty"`
	FontSize     float64     `json:"fontSize,omitempty"`
	FontFamily   string      `json:"fontFamily,omitempty"`
	LineType     LineType    `json:"lineType,omitempty"`
	ArrowStart   *ArrowStyle `json:"arrowStart,omitempty"`
	ArrowEnd     *ArrowStyle `json:"arrowEnd,omitempty"`
}

func (s Style) clone() Style {
	out := s
	if s.Opacity != nil {
		v := *s.Opacity
		out.Opacity = &v
	}
	if s.CornerRadius != nil {
		v := *s.CornerRadius
		out.CornerRadius = &v
	}
	if s.Dash != nil {
		out.Dash = append([]float64(nil), s.Dash...)
	}
	if s.ArrowStart != nil {
		a := *s.ArrowStart
		out.ArrowStart = &a
	}
	if s.ArrowEnd != nil {
		a := *s.ArrowEnd
		out.ArrowEnd = &a
	}
	return out
}

// Endpoint is one end of a connector. An attached endpoint references a node
// and never carries a literal position; a free endpoint carries only Position.
type Endpoint struct {
	NodeID   string `json:"nodeId,omitempty"`
	AnchorID string `json:"anchorId,omitempty"`
	Offset   *Point `json:"offset,omitempty"`
	Position *Point `json:"position,omitempty"`
}

// AttachedEndpoint references an anchor on a node. An empty anchorID means
// the center anchor.
func AttachedEndpoint(nodeID, anchorID string) Endpoint {
	return Endpoint{NodeID: nodeID, AnchorID: anchorID}
}

func FreeEndpoint(p Point) Endpoint {
	return Endpoint{Position: &p}
}

// Attached reports whether the endpoint references a node.
func (e Endpoint) Attached() bool { return e.NodeID != "" }

func (e Endpoint) clone() Endpoint {
	out := e
	if e.Offset != nil {
		o := *e.Offset
		out.Offset = &o
	}
	if e.Position != nil {
		p := *e.Position
		out.Position = &p
	}
	return out
}

// Node is a single board element. Type selects the variant: geometry nodes use
// Shape, connector nodes use Source, Target and Mode. Fields that do not
// belong to the node's variant are left zero.
type Node struct {
	ID       string         `json:"id"`
	Type     NodeKind       `json:"type"`
	Shape    ShapeKind      `json:"kind,omitempty"`
	Position Point          `json:"position"`
	Size     Size           `json:"size"`
	Rotation float64        `json:"rotation,omitempty"`
	Style    Style          `json:"style"`
	Data     map[string]any `json:"data,omitempty"`

	Source *Endpoint     `json:"source,omitempty"`
	Target *Endpoint     `json:"target,omitempty"`
	Mode   ConnectorMode `json:"mode,omitempty"`
}

// Bounds returns the unrotated rect covered by the node's position and size.
// Connector bounds depend on the rest of the board; see engine.NodeBounds.
func (n Node) Bounds() Rect {
	return RectOf(n.Position, n.Size)
}

// Text returns the text content of a text node.
func (n Node) Text() string {
	if s, ok := n.Data["text"].(string); ok {
		return s
	}
	return DefaultText
}

// FontSize returns the font size of a text node, preferring the style value.
func (n Node) FontSize() float64 {
	if n.Style.FontSize > 0 {
		return n.Style.FontSize
	}
	switch v := n.Data["fontSize"].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	}
	return DefaultFontSize
}

// LineType returns the connector's path style, curve by default.
func (n Node) LineType() LineType {
	if n.Style.LineType == "" {
		return LineCurve
	}
	return n.Style.LineType
}

// Clone returns a deep copy. Data values are copied one level deep.
func (n Node) Clone() Node {
	out := n
	out.Style = n.Style.clone()
	if n.Data != nil {
		out.Data = make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			out.Data[k] = v
		}
	}
	if n.Source != nil {
		e := n.Source.clone()
		out.Source = &e
	}
	if n.Target != nil {
		e := n.Target.clone()
		out.Target = &e
	}
	return out
}

type SelectionMode string

const (
	SelectSingle SelectionMode = "single"
	SelectMulti  SelectionMode = "multi"
)

type Selection struct {
	NodeIDs  []string      `json:"nodeIds"`
	EdgeIDs  []string      `json:"edgeIds"`
	GroupIDs []string      `json:"groupIds"`
	Mode     SelectionMode `json:"mode"`
	Box      *Rect         `json:"box,omitempty"`
}

func EmptySelection() Selection {
	return Selection{
		NodeIDs:  []string{},
		EdgeIDs:  []string{},
		GroupIDs: []string{},
		Mode:     SelectSingle,
	}
}

// Has reports whether the node id is selected.
func (s Selection) Has(id string) bool {
	for _, v := range s.NodeIDs {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) clone() Selection {
	out := s
	out.NodeIDs = cloneIDs(s.NodeIDs)
	out.EdgeIDs = cloneIDs(s.EdgeIDs)
	out.GroupIDs = cloneIDs(s.GroupIDs)
	if s.Box != nil {
		b := *s.Box
		out.Box = &b
	}
	return out
}

// Edge is a plain node-to-node link, drawn center to center.
type Edge struct {
	ID     string         `json:"id"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Label  string         `json:"label,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	NodeIDs []string `json:"nodeIds"`
}

// State is a full board snapshot. Nodes are in paint order, last on top.
type State struct {
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Groups    []Group   `json:"groups"`
	Selection Selection `json:"selection"`
	Viewport  Viewport  `json:"viewport"`
	UpdatedAt int64     `json:"updatedAt"`
}

// NewState returns an empty board at the default viewport.
func NewState() State {
	return State{
		Nodes:     []Node{},
		Edges:     []Edge{},
		Groups:    []Group{},
		Selection: EmptySelection(),
		Viewport:  DefaultViewport(),
	}
}

// Node looks up a node by id.
func (s State) Node(id string) (Node, bool) {
	if i := s.NodeIndex(id); i >= 0 {
		return s.Nodes[i], true
	}
	return Node{}, false
}

// NodeIndex returns the paint-order index of a node, or -1.
func (s State) NodeIndex(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Edges = make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		out.Edges[i] = e
		if e.Data != nil {
			out.Edges[i].Data = make(map[string]any, len(e.Data))
			for k, v := range e.Data {
				out.Edges[i].Data[k] = v
			}
		}
	}
	out.Groups = make([]Group, len(s.Groups))
	for i, g := range s.Groups {
		out.Groups[i] = g
		out.Groups[i].NodeIDs = cloneIDs(g.NodeIDs)
	}
	out.Selection = s.Selection.clone()
	return out
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return append([]string(nil), ids...)
}
