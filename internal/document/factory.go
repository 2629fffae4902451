package document

// Defaults applied to nodes created without an explicit size. The typed
// constructors also place new nodes at DefaultNodePosition.
var (
	DefaultNodePosition  = Point{X: 120, Y: 120}
	DefaultGeometrySize  = Size{Width: 160, Height: 96}
	DefaultEllipseSize   = Size{Width: 140, Height: 140}
	DefaultTextSize      = Size{Width: 180, Height: 40}
	DefaultConnectorFrom = Point{X: 80, Y: 80}
	DefaultConnectorTo   = Point{X: 240, Y: 160}
)

const (
	DefaultText     = "Text"
	DefaultFontSize = 16.0
)

func NewGeometryNode(id string, shape ShapeKind) Node {
	return WithDefaults(Node{ID: id, Type: KindGeometry, Shape: shape, Position: DefaultNodePosition})
}

func NewTextNode(id, text string) Node {
	return WithDefaults(Node{
		ID:       id,
		Type:     KindText,
		Position: DefaultNodePosition,
		Data:     map[string]any{"text": text, "fontSize": DefaultFontSize},
	})
}

func NewConnectorNode(id string, source, target Endpoint) Node {
	return WithDefaults(Node{
		ID:     id,
		Type:   KindConnector,
		Source: &source,
		Target: &target,
	})
}

// WithDefaults fills the zero fields of a partially specified node with the
// defaults for its kind. Position is never touched since the origin is a
// valid place for a node. An unknown kind is treated as geometry.
func WithDefaults(n Node) Node {
	if !n.Type.Valid() {
		n.Type = KindGeometry
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}

	switch n.Type {
	case KindGeometry:
		if n.Shape == "" {
			n.Shape = ShapeRect
		}
		if n.Size == (Size{}) {
			n.Size = DefaultGeometrySize
			if n.Shape == ShapeEllipse {
				n.Size = DefaultEllipseSize
			}
		}
	case KindText:
		n.Shape = ""
		if n.Size == (Size{}) {
			n.Size = DefaultTextSize
		}
	case KindConnector:
		n.Shape = ""
		if n.Source == nil {
			src := FreeEndpoint(DefaultConnectorFrom)
			n.Source = &src
		}
		if n.Target == nil {
			dst := FreeEndpoint(DefaultConnectorTo)
			n.Target = &dst
		}
		n.Mode = ModeOf(*n.Source, *n.Target)
	}
	return n
}

// ModeOf derives a connector's mode: linked iff both endpoints reference a node.
func ModeOf(source, target Endpoint) ConnectorMode {
	if source.Attached() && target.Attached() {
		return ModeLinked
	}
	return ModeFree
}
