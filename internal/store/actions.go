package store

import (
	"slices"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
	"github.com/inamate/whiteboard/internal/typeid"
)

// --- Selection ---

func (s *Store) SetSelection(sel document.Selection) {
	s.update(func(st *document.State) { st.Selection = normalizeSelection(sel) }, true)
}

// SetSelectionPreview replaces the selection without recording history.
func (s *Store) SetSelectionPreview(sel document.Selection) {
	s.update(func(st *document.State) { st.Selection = normalizeSelection(sel) }, false)
}

func (s *Store) ClearSelection() {
	s.update(func(st *document.State) { st.Selection = document.EmptySelection() }, true)
}

// ToggleSelection adds or removes a node id and switches to multi mode.
func (s *Store) ToggleSelection(nodeID string) {
	s.update(func(st *document.State) {
		ids := st.Selection.NodeIDs
		if i := slices.Index(ids, nodeID); i >= 0 {
			st.Selection.NodeIDs = slices.Delete(ids, i, i+1)
		} else {
			st.Selection.NodeIDs = append(ids, nodeID)
		}
		st.Selection.Mode = document.SelectMulti
	}, true)
}

// SetSelectionBox updates the live marquee. The marquee is not part of
// undo history.
func (s *Store) SetSelectionBox(box *document.Rect) {
	s.update(func(st *document.State) {
		if box == nil {
			st.Selection.Box = nil
		} else {
			b := *box
			st.Selection.Box = &b
		}
		st.Selection.Mode = document.SelectMulti
	}, false)
}

func (s *Store) ClearSelectionBox() {
	s.update(func(st *document.State) { st.Selection.Box = nil }, false)
}

func normalizeSelection(sel document.Selection) document.Selection {
	out := document.Selection{
		NodeIDs:  slices.Clone(sel.NodeIDs),
		EdgeIDs:  slices.Clone(sel.EdgeIDs),
		GroupIDs: slices.Clone(sel.GroupIDs),
		Mode:     sel.Mode,
	}
	if out.NodeIDs == nil {
		out.NodeIDs = []string{}
	}
	if out.EdgeIDs == nil {
		out.EdgeIDs = []string{}
	}
	if out.GroupIDs == nil {
		out.GroupIDs = []string{}
	}
	if out.Mode == "" {
		out.Mode = document.SelectSingle
	}
	if sel.Box != nil {
		b := *sel.Box
		out.Box = &b
	}
	return out
}

// --- Viewport ---

// SetViewport replaces the viewport, clamping its scale. Viewport changes
// are not part of undo history.
func (s *Store) SetViewport(vp document.Viewport) {
	vp.Scale = engine.ClampScale(vp.Scale, document.MinScale, document.MaxScale)
	s.update(func(st *document.State) { st.Viewport = vp }, false)
}

// --- Node updates ---

func (s *Store) UpdateNodesPositionPreview(updates []document.PositionUpdate) {
	s.update(func(st *document.State) { applyPositions(st, updates) }, false)
}

func (s *Store) UpdateNodesPosition(updates []document.PositionUpdate) {
	s.update(func(st *document.State) { applyPositions(st, updates) }, true)
}

func (s *Store) UpdateNodesTransformPreview(updates []document.TransformUpdate) {
	s.update(func(st *document.State) { applyTransforms(st, updates) }, false)
}

func (s *Store) UpdateNodesTransformCommit(updates []document.TransformUpdate) {
	s.update(func(st *document.State) { applyTransforms(st, updates) }, true)
}

func (s *Store) UpdateNodePreview(id string, patch document.NodePatch) {
	s.update(func(st *document.State) { applyPatch(st, id, patch) }, false)
}

func (s *Store) UpdateNode(id string, patch document.NodePatch) {
	s.update(func(st *document.State) { applyPatch(st, id, patch) }, true)
}

// Updates naming ids that are not in the state are skipped.
func applyPositions(st *document.State, updates []document.PositionUpdate) {
	for _, u := range updates {
		if i := st.NodeIndex(u.ID); i >= 0 {
			st.Nodes[i].Position = document.Point{X: u.X, Y: u.Y}
		}
	}
}

func applyTransforms(st *document.State, updates []document.TransformUpdate) {
	for _, u := range updates {
		if i := st.NodeIndex(u.ID); i >= 0 {
			st.Nodes[i] = u.Apply(st.Nodes[i])
		}
	}
}

func applyPatch(st *document.State, id string, patch document.NodePatch) {
	if i := st.NodeIndex(id); i >= 0 {
		st.Nodes[i] = patch.Apply(st.Nodes[i])
	}
}

// --- Creation and removal ---

// AddNode appends a node, filling defaults for its kind and generating an
// id when it has none. It returns the node id.
func (s *Store) AddNode(n document.Node) string {
	return s.AddNodes([]document.Node{n})[0]
}

// AddNodes appends nodes as one history step.
func (s *Store) AddNodes(nodes []document.Node) []string {
	prepared := make([]document.Node, len(nodes))
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		n = document.WithDefaults(n.Clone())
		if n.ID == "" {
			n.ID = s.newID(typeid.PrefixNode)
		}
		prepared[i] = n
		ids[i] = n.ID
	}
	s.update(func(st *document.State) { st.Nodes = append(st.Nodes, prepared...) }, true)
	s.logger.Debug("nodes added", "count", len(ids))
	return ids
}

func (s *Store) AddGeometry(shape document.ShapeKind) string {
	return s.AddNode(document.NewGeometryNode("", shape))
}

func (s *Store) AddText(text string) string {
	if text == "" {
		text = document.DefaultText
	}
	return s.AddNode(document.NewTextNode("", text))
}

func (s *Store) AddConnector(source, target document.Endpoint) string {
	return s.AddNode(document.NewConnectorNode("", source, target))
}

// RemoveNode deletes a node and every reference to it: edges, selection and
// group membership are pruned, and connector endpoints attached to it are
// detached at their current position. It reports whether the node existed.
func (s *Store) RemoveNode(id string) bool {
	if _, ok := s.Node(id); !ok {
		return false
	}
	s.update(func(st *document.State) {
		// Endpoints resolve against the board before the node goes away.
		for i := range st.Nodes {
			n := &st.Nodes[i]
			if n.Type != document.KindConnector {
				continue
			}
			detached := false
			for _, e := range []*document.Endpoint{n.Source, n.Target} {
				if e != nil && e.NodeID == id {
					*e = document.FreeEndpoint(engine.ResolveEndpoint(*e, *st))
					detached = true
				}
			}
			if detached {
				n.Mode = engine.ResolveConnectorMode(derefEndpoint(n.Source), derefEndpoint(n.Target))
			}
		}
		st.Nodes = slices.DeleteFunc(st.Nodes, func(n document.Node) bool { return n.ID == id })
		st.Edges = slices.DeleteFunc(st.Edges, func(e document.Edge) bool {
			return e.Source == id || e.Target == id
		})
		for i := range st.Groups {
			st.Groups[i].NodeIDs = slices.DeleteFunc(st.Groups[i].NodeIDs, func(v string) bool { return v == id })
		}
		st.Selection.NodeIDs = slices.DeleteFunc(st.Selection.NodeIDs, func(v string) bool { return v == id })
	}, true)
	return true
}

func derefEndpoint(e *document.Endpoint) document.Endpoint {
	if e == nil {
		return document.Endpoint{}
	}
	return *e
}

// AddEdge appends an edge and returns its id.
func (s *Store) AddEdge(e document.Edge) string {
	if e.ID == "" {
		e.ID = s.newID(typeid.PrefixEdge)
	}
	s.update(func(st *document.State) { st.Edges = append(st.Edges, e) }, true)
	return e.ID
}

func (s *Store) RemoveEdge(id string) {
	s.update(func(st *document.State) {
		st.Edges = slices.DeleteFunc(st.Edges, func(e document.Edge) bool { return e.ID == id })
		st.Selection.EdgeIDs = slices.DeleteFunc(st.Selection.EdgeIDs, func(v string) bool { return v == id })
	}, true)
}

// AddGroup appends a group and returns its id.
func (s *Store) AddGroup(g document.Group) string {
	if g.ID == "" {
		g.ID = s.newID(typeid.PrefixGroup)
	}
	g.NodeIDs = slices.Clone(g.NodeIDs)
	s.update(func(st *document.State) { st.Groups = append(st.Groups, g) }, true)
	return g.ID
}

// Reset replaces the board with an empty one as a single history step.
func (s *Store) Reset() {
	s.update(func(st *document.State) { *st = document.NewState() }, true)
}

// Load replaces the board with state as a single history step.
func (s *Store) Load(state document.State) {
	next := state.Clone()
	s.update(func(st *document.State) { *st = next }, true)
}
