package store

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/inamate/whiteboard/internal/document"
)

// newTestStore returns a store with deterministic ids and clock.
func newTestStore(t *testing.T, nodes ...document.Node) *Store {
	t.Helper()
	initial := document.NewState()
	initial.Nodes = append(initial.Nodes, nodes...)
	seq := 0
	return New(initial,
		WithClock(func() time.Time { return time.UnixMilli(1000) }),
		WithIDGenerator(func(prefix string) string {
			seq++
			return fmt.Sprintf("%s_%d", prefix, seq)
		}),
	)
}

func rect(id string, x, y float64) document.Node {
	n := document.NewGeometryNode(id, document.ShapeRect)
	n.Position = document.Point{X: x, Y: y}
	n.Size = document.Size{Width: 100, Height: 50}
	return n
}

func TestPreviewDoesNotRecordHistory(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))

	tests := []struct {
		name string
		act  func()
	}{
		{"position preview", func() { s.UpdateNodesPositionPreview([]document.PositionUpdate{{ID: "a", X: 5, Y: 5}}) }},
		{"transform preview", func() {
			rot := 1.0
			s.UpdateNodesTransformPreview([]document.TransformUpdate{{ID: "a", Rotation: &rot}})
		}},
		{"node preview", func() { s.UpdateNodePreview("a", document.NodePatch{Data: map[string]any{"k": 1}}) }},
		{"selection box", func() { s.SetSelectionBox(&document.Rect{Width: 1}) }},
		{"clear box", s.ClearSelectionBox},
		{"viewport", func() { s.SetViewport(document.Viewport{X: 1, Scale: 2}) }},
		{"selection preview", func() { s.SetSelectionPreview(document.Selection{NodeIDs: []string{"a"}}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.act()
			if s.CanUndo() {
				t.Error("preview recorded history")
			}
		})
	}
}

func TestCommitRecordsOneSnapshot(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0), rect("b", 200, 0))

	tests := []struct {
		name string
		act  func()
	}{
		{"set selection", func() { s.SetSelection(document.Selection{NodeIDs: []string{"a"}}) }},
		{"toggle", func() { s.ToggleSelection("b") }},
		{"clear", s.ClearSelection},
		{"position", func() { s.UpdateNodesPosition([]document.PositionUpdate{{ID: "a", X: 9, Y: 9}}) }},
		{"transform", func() {
			size := document.Size{Width: 1, Height: 1}
			s.UpdateNodesTransformCommit([]document.TransformUpdate{{ID: "a", Size: &size}})
		}},
		{"node", func() { s.UpdateNode("a", document.NodePatch{Shape: document.ShapeEllipse}) }},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.act()
			past := s.ledger.Past()
			if len(past) != i+1 {
				t.Errorf("past has %d snapshots, want %d", len(past), i+1)
			}
		})
	}
}

func TestUndoRedo(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	s.UpdateNodesPositionPreview([]document.PositionUpdate{{ID: "a", X: 5, Y: 5}})
	s.UpdateNodesPosition([]document.PositionUpdate{{ID: "a", X: 10, Y: 10}})

	s.Undo()
	if n, _ := s.Node("a"); n.Position != (document.Point{}) {
		t.Errorf("after undo position = %+v, want origin", n.Position)
	}
	s.Redo()
	if n, _ := s.Node("a"); n.Position != (document.Point{X: 10, Y: 10}) {
		t.Errorf("after redo position = %+v", n.Position)
	}

	// Boundaries are no-ops.
	s.Redo()
	if n, _ := s.Node("a"); n.Position != (document.Point{X: 10, Y: 10}) {
		t.Errorf("redo past end moved node to %+v", n.Position)
	}
}

func TestHistoryKeepsLiveViewport(t *testing.T) {
	panned := document.Viewport{X: 100, Y: 50, Scale: 2}

	tests := []struct {
		name      string
		act       func(s *Store)
		wantNodes int
	}{
		{"undo at start after pan", func(s *Store) {
			s.SetViewport(panned)
			s.Undo()
		}, 1},
		{"redo at end after pan", func(s *Store) {
			s.SetViewport(panned)
			s.Redo()
		}, 1},
		{"undo add after pan", func(s *Store) {
			s.AddGeometry(document.ShapeRect)
			s.SetViewport(panned)
			s.Undo()
		}, 1},
		{"redo add after pan", func(s *Store) {
			s.AddGeometry(document.ShapeRect)
			s.Undo()
			s.SetViewport(panned)
			s.Redo()
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, rect("a", 0, 0))
			tt.act(s)
			st := s.GetState()
			if st.Viewport != panned {
				t.Errorf("viewport = %+v, want %+v", st.Viewport, panned)
			}
			if len(st.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(st.Nodes), tt.wantNodes)
			}
		})
	}
}

func TestHistoryBoundaryLeavesPreviewState(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	s.UpdateNodesPositionPreview([]document.PositionUpdate{{ID: "a", X: 5, Y: 5}})

	notified := 0
	s.Subscribe(func(document.State) { notified++ })

	s.Undo()
	s.Redo()
	if n, _ := s.Node("a"); n.Position != (document.Point{X: 5, Y: 5}) {
		t.Errorf("position = %+v, want preview position kept", n.Position)
	}
	if notified != 2 {
		t.Errorf("notified %d times, want 2", notified)
	}
}

func TestUndoDropsSelectionBox(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	s.UpdateNodesPosition([]document.PositionUpdate{{ID: "a", X: 10, Y: 10}})
	s.SetSelectionBox(&document.Rect{X: 1, Y: 1, Width: 20, Height: 20})

	s.Undo()
	if box := s.GetState().Selection.Box; box != nil {
		t.Errorf("selection box = %+v, want nil", box)
	}
}

func TestAddNodeKeepsOrigin(t *testing.T) {
	s := newTestStore(t)
	id := s.AddNode(document.Node{
		ID:       "a",
		Type:     document.KindGeometry,
		Shape:    document.ShapeRect,
		Position: document.Point{},
		Size:     document.Size{Width: 100, Height: 50},
	})
	if n, _ := s.Node(id); n.Position != (document.Point{}) {
		t.Errorf("position = %+v, want origin", n.Position)
	}

	id = s.AddGeometry(document.ShapeRect)
	if n, _ := s.Node(id); n.Position != document.DefaultNodePosition {
		t.Errorf("AddGeometry position = %+v, want %+v", n.Position, document.DefaultNodePosition)
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	before := s.GetState()
	s.UpdateNodesPosition([]document.PositionUpdate{{ID: "a", X: 50, Y: 50}})

	if before.Nodes[0].Position != (document.Point{}) {
		t.Error("published snapshot was mutated")
	}
}

func TestUpdatesSkipMissingIDs(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	s.UpdateNodesPosition([]document.PositionUpdate{{ID: "gone", X: 1, Y: 1}, {ID: "a", X: 2, Y: 2}})

	st := s.GetState()
	if len(st.Nodes) != 1 || st.Nodes[0].Position != (document.Point{X: 2, Y: 2}) {
		t.Errorf("nodes = %+v", st.Nodes)
	}
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	var order []string
	unsubA := s.Subscribe(func(document.State) { order = append(order, "a") })
	s.Subscribe(func(document.State) { order = append(order, "b") })

	s.SetViewport(document.Viewport{Scale: 1})
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Fatalf("order = %v", order)
	}

	unsubA()
	unsubA()
	order = nil
	s.ClearSelection()
	if !slices.Equal(order, []string{"b"}) {
		t.Errorf("after unsubscribe order = %v", order)
	}
}

func TestListenerMayReadState(t *testing.T) {
	s := newTestStore(t)
	var seen float64
	s.Subscribe(func(document.State) { seen = s.GetState().Viewport.X })
	s.SetViewport(document.Viewport{X: 42, Scale: 1})
	if seen != 42 {
		t.Errorf("listener saw X = %v", seen)
	}
}

func TestSetViewportClamps(t *testing.T) {
	s := newTestStore(t)
	s.SetViewport(document.Viewport{Scale: 10})
	if got := s.GetState().Viewport.Scale; got != document.MaxScale {
		t.Errorf("Scale = %v, want %v", got, document.MaxScale)
	}
	s.SetViewport(document.Viewport{Scale: 0})
	if got := s.GetState().Viewport.Scale; got != document.MinScale {
		t.Errorf("Scale = %v, want %v", got, document.MinScale)
	}
}

func TestToggleSelection(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0), rect("b", 0, 0))
	s.ToggleSelection("a")
	s.ToggleSelection("b")
	s.ToggleSelection("a")

	sel := s.GetState().Selection
	if !slices.Equal(sel.NodeIDs, []string{"b"}) || sel.Mode != document.SelectMulti {
		t.Errorf("selection = %+v", sel)
	}
}

func TestAddNodes(t *testing.T) {
	s := newTestStore(t)
	geo := s.AddGeometry(document.ShapeEllipse)
	text := s.AddText("")
	conn := s.AddConnector(document.AttachedEndpoint(geo, "e"), document.AttachedEndpoint(text, "w"))

	st := s.GetState()
	if len(st.Nodes) != 3 {
		t.Fatalf("got %d nodes", len(st.Nodes))
	}
	if geo != "node_1" {
		t.Errorf("generated id = %q", geo)
	}
	if n, _ := st.Node(geo); n.Size != document.DefaultEllipseSize {
		t.Errorf("ellipse size = %+v", n.Size)
	}
	if n, _ := st.Node(text); n.Text() != document.DefaultText {
		t.Errorf("text = %q", n.Text())
	}
	if n, _ := st.Node(conn); n.Mode != document.ModeLinked {
		t.Errorf("connector mode = %q", n.Mode)
	}
	if st.UpdatedAt != 1000 {
		t.Errorf("UpdatedAt = %d", st.UpdatedAt)
	}
}

func TestRemoveNodePrunesReferences(t *testing.T) {
	a := rect("a", 0, 0)
	b := rect("b", 300, 0)
	c := document.NewConnectorNode("c", document.AttachedEndpoint("a", "e"), document.AttachedEndpoint("b", "w"))
	s := newTestStore(t, a, b, c)
	s.AddEdge(document.Edge{Source: "a", Target: "b"})
	s.AddGroup(document.Group{Name: "g", NodeIDs: []string{"a", "b"}})
	s.SetSelection(document.Selection{NodeIDs: []string{"a", "b"}, Mode: document.SelectMulti})

	if !s.RemoveNode("a") {
		t.Fatal("RemoveNode reported missing node")
	}
	if s.RemoveNode("a") {
		t.Error("second RemoveNode should report missing")
	}

	st := s.GetState()
	if _, ok := st.Node("a"); ok {
		t.Error("node still present")
	}
	if len(st.Edges) != 0 {
		t.Errorf("edges = %+v", st.Edges)
	}
	if !slices.Equal(st.Groups[0].NodeIDs, []string{"b"}) {
		t.Errorf("group ids = %v", st.Groups[0].NodeIDs)
	}
	if !slices.Equal(st.Selection.NodeIDs, []string{"b"}) {
		t.Errorf("selection = %v", st.Selection.NodeIDs)
	}

	conn, _ := st.Node("c")
	if conn.Source.Attached() || conn.Source.Position == nil {
		t.Fatalf("source not detached: %+v", conn.Source)
	}
	if *conn.Source.Position != (document.Point{X: 100, Y: 25}) {
		t.Errorf("detached at %+v, want (100,25)", *conn.Source.Position)
	}
	if conn.Mode != document.ModeFree {
		t.Errorf("mode = %q, want free", conn.Mode)
	}
}

func TestResetIsUndoable(t *testing.T) {
	s := newTestStore(t, rect("a", 0, 0))
	s.Reset()
	if len(s.GetState().Nodes) != 0 {
		t.Fatal("reset left nodes")
	}
	s.Undo()
	if len(s.GetState().Nodes) != 1 {
		t.Error("undo should restore the board")
	}
}

func TestHistoryLimit(t *testing.T) {
	s := New(document.NewState(), WithHistoryLimit(2))
	for i := range 5 {
		s.SetViewport(document.Viewport{X: float64(i), Scale: 1})
		s.ClearSelection()
	}
	s.Undo()
	s.Undo()
	if s.CanUndo() {
		t.Error("limit should cap undo depth")
	}
}
