package document

import (
	"encoding/json"
	"testing"
)

func TestWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Node
		size Size
		pos  Point
	}{
		{"rect", Node{Type: KindGeometry}, DefaultGeometrySize, Point{}},
		{"ellipse", Node{Type: KindGeometry, Shape: ShapeEllipse}, DefaultEllipseSize, Point{}},
		{"text", Node{Type: KindText}, DefaultTextSize, Point{}},
		{"unknown kind", Node{Type: "sticker"}, DefaultGeometrySize, Point{}},
		{"explicit size kept", Node{Type: KindGeometry, Size: Size{Width: 10, Height: 20}}, Size{Width: 10, Height: 20}, Point{}},
		{"explicit position kept", Node{Type: KindText, Position: Point{X: 3, Y: 4}}, DefaultTextSize, Point{X: 3, Y: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithDefaults(tt.in)
			if got.Size != tt.size {
				t.Errorf("Size = %+v, want %+v", got.Size, tt.size)
			}
			if got.Position != tt.pos {
				t.Errorf("Position = %+v, want %+v", got.Position, tt.pos)
			}
			if got.Data == nil {
				t.Error("Data should be initialized")
			}
		})
	}
}

func TestConstructorsPlaceNodes(t *testing.T) {
	tests := []struct {
		name string
		node Node
		size Size
	}{
		{"geometry", NewGeometryNode("g", ShapeRect), DefaultGeometrySize},
		{"ellipse", NewGeometryNode("e", ShapeEllipse), DefaultEllipseSize},
		{"text", NewTextNode("t", "hi"), DefaultTextSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.node.Position != DefaultNodePosition {
				t.Errorf("Position = %+v, want %+v", tt.node.Position, DefaultNodePosition)
			}
			if tt.node.Size != tt.size {
				t.Errorf("Size = %+v, want %+v", tt.node.Size, tt.size)
			}
		})
	}
}

func TestConnectorDefaults(t *testing.T) {
	n := WithDefaults(Node{Type: KindConnector})
	if n.Source == nil || n.Target == nil {
		t.Fatal("connector endpoints should default")
	}
	if *n.Source.Position != DefaultConnectorFrom || *n.Target.Position != DefaultConnectorTo {
		t.Errorf("endpoints = %+v -> %+v", *n.Source.Position, *n.Target.Position)
	}
	if n.Mode != ModeFree {
		t.Errorf("Mode = %q, want free", n.Mode)
	}

	linked := NewConnectorNode("c", AttachedEndpoint("a", "e"), AttachedEndpoint("b", ""))
	if linked.Mode != ModeLinked {
		t.Errorf("Mode = %q, want linked", linked.Mode)
	}
}

func TestModeOf(t *testing.T) {
	tests := []struct {
		name   string
		source Endpoint
		target Endpoint
		want   ConnectorMode
	}{
		{"both attached", AttachedEndpoint("a", ""), AttachedEndpoint("b", "n"), ModeLinked},
		{"source free", FreeEndpoint(Point{}), AttachedEndpoint("b", ""), ModeFree},
		{"target free", Endpoint{NodeID: "a"}, Endpoint{Position: &Point{}}, ModeFree},
		{"both free", FreeEndpoint(Point{X: 1}), FreeEndpoint(Point{Y: 1}), ModeFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModeOf(tt.source, tt.target); got != tt.want {
				t.Errorf("ModeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	if c := CapabilitiesOf(KindGeometry); !c.Draggable || !c.Resizable || !c.Rotatable || !c.Connectable || c.TextEditable {
		t.Errorf("geometry capabilities = %+v", c)
	}
	if c := CapabilitiesOf(KindText); !c.TextEditable || !c.Draggable {
		t.Errorf("text capabilities = %+v", c)
	}
	if c := CapabilitiesOf(KindConnector); c != (Capabilities{}) {
		t.Errorf("connector capabilities = %+v, want none", c)
	}
	if c := CapabilitiesOf("unknown"); c != (Capabilities{}) {
		t.Errorf("unknown capabilities = %+v, want none", c)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	s := NewState()
	s.Nodes = append(s.Nodes, NewGeometryNode("a", ShapeRect), NewConnectorNode("c", AttachedEndpoint("a", ""), FreeEndpoint(Point{X: 5})))
	s.Selection.NodeIDs = []string{"a"}
	s.Selection.Box = &Rect{Width: 4}
	s.Groups = []Group{{ID: "g", NodeIDs: []string{"a"}}}

	c := s.Clone()
	c.Nodes[0].Position.X = 999
	c.Nodes[0].Data["k"] = "v"
	c.Nodes[1].Target.Position.X = 999
	c.Selection.NodeIDs[0] = "z"
	c.Selection.Box.Width = 999
	c.Groups[0].NodeIDs[0] = "z"

	if s.Nodes[0].Position.X == 999 {
		t.Error("node position shared")
	}
	if _, ok := s.Nodes[0].Data["k"]; ok {
		t.Error("node data shared")
	}
	if s.Nodes[1].Target.Position.X == 999 {
		t.Error("endpoint shared")
	}
	if s.Selection.NodeIDs[0] != "a" || s.Selection.Box.Width != 4 {
		t.Error("selection shared")
	}
	if s.Groups[0].NodeIDs[0] != "a" {
		t.Error("group ids shared")
	}
}

func TestNodePatchApply(t *testing.T) {
	n := NewConnectorNode("c", FreeEndpoint(Point{}), FreeEndpoint(Point{X: 10}))
	src := AttachedEndpoint("a", "n")
	dst := AttachedEndpoint("b", "s")

	got := NodePatch{Source: &src, Target: &dst}.Apply(n)
	if got.Mode != ModeLinked {
		t.Errorf("Mode = %q, want linked", got.Mode)
	}
	if n.Source.Attached() {
		t.Error("Apply mutated its input")
	}

	rot := 1.5
	geo := NodePatch{Rotation: &rot, Source: &src, Data: map[string]any{"text": "x"}}.Apply(NewGeometryNode("g", ShapeRect))
	if geo.Rotation != 1.5 {
		t.Errorf("Rotation = %v", geo.Rotation)
	}
	if geo.Source != nil {
		t.Error("endpoints should not be set on geometry")
	}
	if geo.Data["text"] != "x" {
		t.Error("data should merge")
	}
}

func TestTextAccessors(t *testing.T) {
	n := NewTextNode("t", "hello")
	if n.Text() != "hello" || n.FontSize() != DefaultFontSize {
		t.Errorf("Text() = %q, FontSize() = %v", n.Text(), n.FontSize())
	}
	n.Style.FontSize = 24
	if n.FontSize() != 24 {
		t.Errorf("style font size should win, got %v", n.FontSize())
	}

	var decoded Node
	if err := json.Unmarshal([]byte(`{"id":"t","type":"text","data":{"fontSize":20}}`), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.FontSize() != 20 || decoded.Text() != DefaultText {
		t.Errorf("decoded FontSize() = %v, Text() = %q", decoded.FontSize(), decoded.Text())
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(Point{X: 10, Y: 10}) {
		t.Error("edges should be inside")
	}
	if r.Contains(Point{X: 10.1, Y: 5}) {
		t.Error("point outside reported inside")
	}
	u := r.Union(Rect{X: 20, Y: -5, Width: 0, Height: 0})
	if u != (Rect{X: 0, Y: -5, Width: 20, Height: 15}) {
		t.Errorf("Union = %+v", u)
	}
	if c := r.Center(); c != (Point{X: 5, Y: 5}) {
		t.Errorf("Center = %+v", c)
	}
}

func TestSampleBoard(t *testing.T) {
	s := NewSampleBoard()
	if len(s.Nodes) != 5 {
		t.Fatalf("sample has %d nodes", len(s.Nodes))
	}
	var linked, free int
	for _, n := range s.Nodes {
		if n.Type != KindConnector {
			continue
		}
		switch n.Mode {
		case ModeLinked:
			linked++
		case ModeFree:
			free++
		}
	}
	if linked != 1 || free != 1 {
		t.Errorf("linked=%d free=%d, want 1 each", linked, free)
	}
}
