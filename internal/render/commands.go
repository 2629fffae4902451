package render

import (
	"encoding/json"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
)

// Layer groups draw commands. Layers are painted in the order edges, nodes,
// overlay.
type Layer string

const (
	LayerEdges   Layer = "edges"
	LayerNodes   Layer = "nodes"
	LayerOverlay Layer = "overlay"
)

const (
	OpPath = "path"
	OpText = "text"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// DrawCommand represents a single drawing operation for the frontend to execute.
// Coordinates are in world space; Transform maps them further when set.
type DrawCommand struct {
	Op          string         `json:"op"` // "path" or "text"
	Layer       Layer          `json:"layer"`
	ObjectID    string         `json:"objectId,omitempty"`
	Transform   []float64      `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand  `json:"path,omitempty"`
	Fill        string         `json:"fill,omitempty"`
	Stroke      string         `json:"stroke,omitempty"`
	StrokeWidth float64        `json:"strokeWidth,omitempty"`
	Opacity     float64        `json:"opacity"`
	Dash        []float64      `json:"dash,omitempty"`
	Text        string         `json:"text,omitempty"`
	Box         *document.Rect `json:"box,omitempty"` // text layout box
	FontSize    float64        `json:"fontSize,omitempty"`
	FontFamily  string         `json:"fontFamily,omitempty"`
}

// Frame is a compiled board: the viewport to apply and the commands to draw
// in order.
type Frame struct {
	Viewport document.Viewport `json:"viewport"`
	Commands []DrawCommand     `json:"commands"`
}

// Default paint.
const (
	GeometryFill         = "#ffffff"
	GeometryStroke       = "#475569"
	GeometryStrokeWidth  = 1.0
	GeometryCornerRadius = 8.0

	TextColor      = "#0f172a"
	TextFontFamily = "Inter"

	ConnectorStroke  = "#94a3b8"
	ConnectorOpacity = 0.9

	EdgeStroke      = "#94a3b8"
	EdgeStrokeWidth = 1.5
	EdgeOpacity     = 0.8

	MarqueeStroke        = "#3b82f6"
	MarqueeStrokeOpacity = 0.9
	MarqueeFill          = "#93c5fd"
	MarqueeFillOpacity   = 0.15

	SelectionStroke = "#2563eb"
	SelectionInset  = 4.0
	HandleFill      = "#ffffff"
	EndpointRadius  = 4.0
)

// CompileFrame compiles state into a frame.
func CompileFrame(state document.State) Frame {
	return Frame{Viewport: state.Viewport, Commands: CompileDrawCommands(state)}
}

// CompileDrawCommands generates a draw command buffer from a board state.
// Commands are in painter's order (back to front).
func CompileDrawCommands(state document.State) []DrawCommand {
	commands := []DrawCommand{}
	compileEdges(state, &commands)
	compileNodes(state, &commands)
	compileOverlay(state, &commands)
	return commands
}

func compileEdges(state document.State, commands *[]DrawCommand) {
	for _, e := range state.Edges {
		src, ok := state.Node(e.Source)
		if !ok {
			continue
		}
		dst, ok := state.Node(e.Target)
		if !ok {
			continue
		}
		from, to := src.Bounds().Center(), dst.Bounds().Center()
		*commands = append(*commands, DrawCommand{
			Op:          OpPath,
			Layer:       LayerEdges,
			ObjectID:    e.ID,
			Path:        polylinePath([]document.Point{from, to}, false),
			Stroke:      EdgeStroke,
			StrokeWidth: EdgeStrokeWidth,
			Opacity:     EdgeOpacity,
		})
	}

	for _, n := range state.Nodes {
		if n.Type == document.KindConnector {
			compileConnector(state, n, commands)
		}
	}
}

func compileConnector(state document.State, n document.Node, commands *[]DrawCommand) {
	points := engine.ConnectorPath(n, state)
	stroke := orDefault(n.Style.Stroke, ConnectorStroke)
	width := n.Style.StrokeWidth
	if width <= 0 {
		width = engine.DefaultConnectorStrokeWidth
	}
	opacity := ConnectorOpacity
	if n.Style.Opacity != nil {
		opacity = *n.Style.Opacity
	}

	*commands = append(*commands, DrawCommand{
		Op:          OpPath,
		Layer:       LayerEdges,
		ObjectID:    n.ID,
		Path:        polylinePath(points, false),
		Stroke:      stroke,
		StrokeWidth: width,
		Opacity:     opacity,
		Dash:        n.Style.Dash,
	})

	ends := []struct {
		style   *document.ArrowStyle
		atStart bool
	}{
		{n.Style.ArrowStart, true},
		{n.Style.ArrowEnd, false},
	}
	for _, end := range ends {
		spec := engine.ResolveArrow(end.style)
		if spec.Type == document.ArrowNone || len(points) == 0 {
			continue
		}
		tip := points[len(points)-1]
		if end.atStart {
			tip = points[0]
		}
		dir := engine.ArrowDirection(points, end.atStart)
		cmd := DrawCommand{
			Op:          OpPath,
			Layer:       LayerEdges,
			ObjectID:    n.ID,
			Path:        arrowPath(spec, tip, dir),
			Stroke:      stroke,
			StrokeWidth: width,
			Opacity:     opacity,
		}
		if spec.Filled {
			cmd.Fill = stroke
		}
		*commands = append(*commands, cmd)
	}
}

func arrowPath(spec engine.ArrowSpec, tip, dir document.Point) []PathCommand {
	head := engine.BuildArrowPath(tip, dir, spec.Size)
	switch spec.Type {
	case document.ArrowCircle:
		c := tip.Sub(dir.Mul(spec.Size / 2))
		r := spec.Size / 2
		return ellipsePath(c.X, c.Y, r, r)
	case document.ArrowDiamond:
		half := dir.Mul(spec.Size / 2)
		return polylinePath([]document.Point{head.Tip, head.Left.Add(half), head.Back, head.Right.Add(half)}, true)
	default:
		return polylinePath([]document.Point{head.Tip, head.Left, head.Right}, true)
	}
}

func compileNodes(state document.State, commands *[]DrawCommand) {
	for _, n := range state.Nodes {
		switch n.Type {
		case document.KindGeometry:
			*commands = append(*commands, geometryCommand(n))
		case document.KindText:
			*commands = append(*commands, textCommand(n))
		}
	}
}

func geometryCommand(n document.Node) DrawCommand {
	b := n.Bounds()
	var path []PathCommand
	if n.Shape == document.ShapeEllipse {
		c := b.Center()
		path = ellipsePath(c.X, c.Y, b.Width/2, b.Height/2)
	} else {
		radius := GeometryCornerRadius
		if n.Style.CornerRadius != nil {
			radius = *n.Style.CornerRadius
		}
		path = roundedRectPath(b, radius)
	}

	width := n.Style.StrokeWidth
	if width <= 0 {
		width = GeometryStrokeWidth
	}
	return DrawCommand{
		Op:          OpPath,
		Layer:       LayerNodes,
		ObjectID:    n.ID,
		Transform:   nodeTransform(n),
		Path:        path,
		Fill:        orDefault(n.Style.Fill, GeometryFill),
		Stroke:      orDefault(n.Style.Stroke, GeometryStroke),
		StrokeWidth: width,
		Opacity:     opacityOf(n.Style),
		Dash:        n.Style.Dash,
	}
}

func textCommand(n document.Node) DrawCommand {
	b := n.Bounds()
	return DrawCommand{
		Op:         OpText,
		Layer:      LayerNodes,
		ObjectID:   n.ID,
		Transform:  nodeTransform(n),
		Fill:       orDefault(n.Style.Fill, TextColor),
		Opacity:    opacityOf(n.Style),
		Text:       n.Text(),
		Box:        &b,
		FontSize:   n.FontSize(),
		FontFamily: orDefault(n.Style.FontFamily, TextFontFamily),
	}
}

func compileOverlay(state document.State, commands *[]DrawCommand) {
	scale := state.Viewport.Scale
	if scale <= 0 {
		scale = 1
	}
	line := 1 / scale

	if box := state.Selection.Box; box != nil {
		path := rectPath(*box)
		*commands = append(*commands,
			DrawCommand{Op: OpPath, Layer: LayerOverlay, Path: path, Fill: MarqueeFill, Opacity: MarqueeFillOpacity},
			DrawCommand{Op: OpPath, Layer: LayerOverlay, Path: path, Stroke: MarqueeStroke, StrokeWidth: line, Opacity: MarqueeStrokeOpacity},
		)
	}

	ids := state.Selection.NodeIDs
	var connectors []document.Node
	for _, id := range ids {
		if n, ok := state.Node(id); ok && n.Type == document.KindConnector {
			connectors = append(connectors, n)
		}
	}

	// A selection containing a connector shows endpoint dots instead of
	// bounds and handles.
	if len(connectors) > 0 {
		r := EndpointRadius / scale
		for _, n := range connectors {
			source, target := engine.ConnectorEndpoints(n, state)
			for _, p := range []document.Point{source, target} {
				*commands = append(*commands, DrawCommand{
					Op:          OpPath,
					Layer:       LayerOverlay,
					ObjectID:    n.ID,
					Path:        ellipsePath(p.X, p.Y, r, r),
					Fill:        HandleFill,
					Stroke:      SelectionStroke,
					StrokeWidth: line,
					Opacity:     1,
				})
			}
		}
		return
	}

	bounds, ok := engine.SelectedBounds(state, ids)
	if !ok {
		return
	}
	layout, hasHandles := engine.SelectionControls(state, bounds, ids)
	var transform []float64
	if hasHandles && layout.Rotation != 0 {
		transform = engine.RotateAbout(layout.Rotation, layout.Center.X, layout.Center.Y).ToSlice()
	}
	*commands = append(*commands, DrawCommand{
		Op:          OpPath,
		Layer:       LayerOverlay,
		Transform:   transform,
		Path:        rectPath(bounds.Inset(-SelectionInset / scale)),
		Stroke:      SelectionStroke,
		StrokeWidth: line,
		Opacity:     1,
	})
	if !hasHandles {
		return
	}

	half := layout.HandleSize / 2
	for _, h := range layout.Handles {
		var path []PathCommand
		if h.ID == engine.HandleRotate {
			path = ellipsePath(h.Position.X, h.Position.Y, half, half)
		} else {
			path = rectPath(document.Rect{X: h.Position.X - half, Y: h.Position.Y - half, Width: layout.HandleSize, Height: layout.HandleSize})
		}
		*commands = append(*commands, DrawCommand{
			Op:          OpPath,
			Layer:       LayerOverlay,
			ObjectID:    string(h.ID),
			Path:        path,
			Fill:        HandleFill,
			Stroke:      SelectionStroke,
			StrokeWidth: line,
			Opacity:     1,
		})
	}
}

// --- Paths ---

func polylinePath(points []document.Point, closed bool) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points)+1)
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

func rectPath(r document.Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// Magic number for bezier approximation of a circle/ellipse
// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
const kappa = 0.5522847498

func roundedRectPath(r document.Rect, radius float64) []PathCommand {
	radius = min(radius, r.Width/2, r.Height/2)
	if radius <= 0 {
		return rectPath(r)
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	k := radius * (1 - kappa)
	return []PathCommand{
		{"M", x0 + radius, y0},
		{"L", x1 - radius, y0},
		{"C", x1 - k, y0, x1, y0 + k, x1, y0 + radius},
		{"L", x1, y1 - radius},
		{"C", x1, y1 - k, x1 - k, y1, x1 - radius, y1},
		{"L", x0 + radius, y1},
		{"C", x0 + k, y1, x0, y1 - k, x0, y1 - radius},
		{"L", x0, y0 + radius},
		{"C", x0, y0 + k, x0 + k, y0, x0 + radius, y0},
		{"Z"},
	}
}

// ellipsePath approximates an ellipse with four bezier curves.
func ellipsePath(cx, cy, rx, ry float64) []PathCommand {
	kx, ky := rx*kappa, ry*kappa
	return []PathCommand{
		{"M", cx + rx, cy},
		{"C", cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		{"C", cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		{"C", cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		{"C", cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		{"Z"},
	}
}

func nodeTransform(n document.Node) []float64 {
	m := engine.NodeMatrix(n)
	if m.IsIdentity() {
		return nil
	}
	return m.ToSlice()
}

func opacityOf(s document.Style) float64 {
	if s.Opacity == nil {
		return 1
	}
	return *s.Opacity
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
