package board

import (
	"log/slog"
	"slices"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
)

// Store is the scene store a Board reads and mutates. Preview methods must
// not record history; the others must record exactly one step.
type Store interface {
	GetState() document.State
	Subscribe(fn func(document.State)) (unsubscribe func())

	SetSelection(sel document.Selection)
	SetSelectionPreview(sel document.Selection)
	ClearSelection()
	ToggleSelection(nodeID string)
	SetSelectionBox(box *document.Rect)
	ClearSelectionBox()
	SetViewport(vp document.Viewport)

	UpdateNodesPositionPreview(updates []document.PositionUpdate)
	UpdateNodesPosition(updates []document.PositionUpdate)
	UpdateNodesTransformPreview(updates []document.TransformUpdate)
	UpdateNodesTransformCommit(updates []document.TransformUpdate)
	UpdateNodePreview(id string, patch document.NodePatch)
	UpdateNode(id string, patch document.NodePatch)

	Undo()
	Redo()
}

// Renderer draws full board states. Render must accept any state the store
// can produce.
type Renderer interface {
	Render(state document.State)
}

// Board turns pointer, wheel and key input into store mutations. It holds at
// most one interaction session at a time. A Board is not safe for concurrent
// use; feed it events from one goroutine.
type Board struct {
	store  Store
	opts   Options
	logger *slog.Logger

	session      session
	spacePressed bool

	unsubscribe func()
}

// New creates a board over store.
func New(store Store, opts Options) *Board {
	opts = opts.withDefaults()
	return &Board{
		store:  store,
		opts:   opts,
		logger: opts.Logger,
	}
}

// --- Lifecycle ---

// Mount draws the current state with r and redraws on every store change
// until Unmount. Mounting again replaces the previous renderer.
func (b *Board) Mount(r Renderer) {
	b.Unmount()
	r.Render(b.store.GetState())
	b.unsubscribe = b.store.Subscribe(r.Render)
}

// Unmount stops redrawing and drops any session in progress. It is a no-op
// when nothing is mounted.
func (b *Board) Unmount() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.session = nil
}

// Session reports the interaction in progress.
func (b *Board) Session() SessionKind {
	if b.session == nil {
		return SessionIdle
	}
	return b.session.kind()
}

// SpacePressed reports whether the space bar is held.
func (b *Board) SpacePressed() bool { return b.spacePressed }

func (b *Board) Undo() { b.store.Undo() }

func (b *Board) Redo() { b.store.Redo() }

func (b *Board) begin(s session) {
	b.session = s
	b.logger.Debug("session started", "session", s.kind().String())
}

func (b *Board) end() {
	if b.session != nil {
		b.logger.Debug("session ended", "session", b.session.kind().String())
	}
	b.session = nil
}

// --- Pointer down ---

// PointerDown starts at most one session. Routing goes in priority order:
// panning, selection handles, connector endpoints, connector selection,
// node selection and drag, then marquee on empty canvas.
func (b *Board) PointerDown(ev PointerEvent) {
	b.session = nil

	state := b.store.GetState()
	vp := state.Viewport
	if b.spacePressed || ev.Button == ButtonMiddle {
		b.begin(&panSession{start: ev.Position, base: vp})
		return
	}

	world := engine.ScreenToWorld(vp, ev.Position)
	if s, ok := b.controlSessionAt(state, world); ok {
		b.begin(s)
		return
	}

	target, ok := state.Node(ev.TargetID)
	if !ok {
		b.beginBox(state, world, ev.Shift)
		return
	}

	switch target.Type {
	case document.KindConnector:
		b.pointerDownConnector(state, target, world)
	default:
		if ev.Shift {
			b.store.ToggleSelection(target.ID)
			return
		}
		b.beginDrag(target.ID, world)
	}
}

func (b *Board) controlSessionAt(state document.State, world document.Point) (*controlSession, bool) {
	ids := state.Selection.NodeIDs
	if len(ids) == 0 {
		return nil, false
	}
	for _, id := range ids {
		if n, ok := state.Node(id); ok && n.Type == document.KindConnector {
			return nil, false
		}
	}
	bounds, ok := engine.SelectedBounds(state, ids)
	if !ok {
		return nil, false
	}
	handle, ok := engine.ControlHit(state, world, bounds, ids)
	if !ok {
		return nil, false
	}

	bases := make(map[string]engine.NodeTransform, len(ids))
	for _, n := range state.Nodes {
		if slices.Contains(ids, n.ID) {
			bases[n.ID] = engine.TransformOf(n)
		}
	}
	var startRotation float64
	if len(ids) == 1 {
		startRotation = bases[ids[0]].Rotation
	}
	return &controlSession{
		handle:        handle.ID,
		targetIDs:     slices.Clone(ids),
		startPointer:  world,
		startBounds:   bounds,
		startRotation: startRotation,
		bases:         bases,
	}, true
}

func (b *Board) pointerDownConnector(state document.State, conn document.Node, world document.Point) {
	source, target := engine.ConnectorEndpoints(conn, state)
	radius := b.opts.EndpointHitRadius / state.Viewport.Scale
	key := engine.HitTestEndpoint(world, source, target, radius)

	b.store.SetSelection(singleSelection(conn.ID))
	if key == engine.EndpointNone {
		return
	}

	s := &connectorSession{connectorID: conn.ID, key: key}
	if conn.Source != nil {
		s.source = *conn.Source
	}
	if conn.Target != nil {
		s.target = *conn.Target
	}
	b.begin(s)
}

func (b *Board) beginDrag(targetID string, world document.Point) {
	current := b.store.GetState()
	ids := []string{targetID}
	if current.Selection.Has(targetID) {
		ids = slices.Clone(current.Selection.NodeIDs)
	} else {
		b.store.SetSelection(singleSelection(targetID))
	}

	bases := make(map[string]document.Point, len(ids))
	dragged := make([]string, 0, len(ids))
	for _, id := range ids {
		n, ok := current.Node(id)
		if !ok || !n.Capabilities().Draggable {
			continue
		}
		bases[id] = n.Position
		dragged = append(dragged, id)
	}
	b.begin(&dragSession{start: world, ids: dragged, bases: bases})
}

func (b *Board) beginBox(state document.State, world document.Point, shift bool) {
	base := []string{}
	if shift {
		base = slices.Clone(state.Selection.NodeIDs)
	}
	b.store.SetSelectionPreview(document.Selection{
		NodeIDs:  base,
		EdgeIDs:  []string{},
		GroupIDs: []string{},
		Mode:     document.SelectMulti,
		Box:      &document.Rect{X: world.X, Y: world.Y},
	})
	b.begin(&boxSession{start: world, base: base})
}

func singleSelection(id string) document.Selection {
	return document.Selection{
		NodeIDs:  []string{id},
		EdgeIDs:  []string{},
		GroupIDs: []string{},
		Mode:     document.SelectSingle,
	}
}

// --- Pointer move and up ---

// PointerMove previews the active session at the pointer position.
func (b *Board) PointerMove(ev PointerEvent) {
	if b.session == nil {
		return
	}
	state := b.store.GetState()
	world := engine.ScreenToWorld(state.Viewport, ev.Position)

	switch s := b.session.(type) {
	case *controlSession:
		if s.handle == engine.HandleRotate {
			b.store.UpdateNodesTransformPreview(s.rotation(world))
			return
		}
		b.store.UpdateNodesTransformPreview(s.resize(world, b.opts.MinSize))
	case *connectorSession:
		id, patch := s.patch(b.connectorEndpoint(state, world))
		b.store.UpdateNodePreview(id, patch)
	case *panSession:
		b.store.SetViewport(s.viewport(ev.Position, state.Viewport.Scale))
	case *dragSession:
		b.store.UpdateNodesPositionPreview(s.positions(world))
	case *boxSession:
		box := engine.NormalizeBox(s.start, world)
		b.store.SetSelectionBox(&box)
	}
}

// PointerUp commits the active session at the pointer position and returns
// the board to idle.
func (b *Board) PointerUp(ev PointerEvent) {
	if b.session == nil {
		return
	}
	state := b.store.GetState()
	world := engine.ScreenToWorld(state.Viewport, ev.Position)

	switch s := b.session.(type) {
	case *panSession:
		// Viewport changes are not recorded in history.
	case *controlSession:
		if s.handle == engine.HandleRotate {
			b.store.UpdateNodesTransformCommit(s.rotation(world))
		} else {
			b.store.UpdateNodesTransformCommit(s.resize(world, b.opts.MinSize))
		}
	case *connectorSession:
		id, patch := s.patch(b.connectorEndpoint(state, world))
		b.store.UpdateNode(id, patch)
	case *dragSession:
		b.store.UpdateNodesPosition(s.positions(world))
	case *boxSession:
		b.finishBox(state, s, world)
	}
	b.end()
}

func (b *Board) finishBox(state document.State, s *boxSession, world document.Point) {
	box := engine.NormalizeBox(s.start, world)
	threshold := b.opts.ClickThreshold / state.Viewport.Scale
	isClick := box.Width < threshold && box.Height < threshold

	if isClick && len(s.base) == 0 {
		b.store.ClearSelection()
	} else {
		merged := engine.MergeSelectionIDs(s.base, engine.BoxHits(state, box))
		mode := document.SelectSingle
		if len(merged) > 1 {
			mode = document.SelectMulti
		}
		b.store.SetSelection(document.Selection{
			NodeIDs:  merged,
			EdgeIDs:  []string{},
			GroupIDs: []string{},
			Mode:     mode,
		})
	}
	b.store.ClearSelectionBox()
}

// connectorEndpoint snaps to a nearby anchor or returns a free endpoint.
func (b *Board) connectorEndpoint(state document.State, world document.Point) document.Endpoint {
	radius := b.opts.AnchorSnapRadius / state.Viewport.Scale
	if hit, ok := engine.FindAnchorAtPoint(state, world, radius); ok {
		return document.AttachedEndpoint(hit.NodeID, hit.AnchorID)
	}
	return document.FreeEndpoint(world)
}

func (s *controlSession) rotation(world document.Point) []document.TransformUpdate {
	id := s.targetIDs[0]
	if _, ok := s.bases[id]; !ok {
		return nil
	}
	delta := engine.RotationDelta(s.startBounds.Center(), s.startPointer, world)
	rot := s.startRotation + delta
	return []document.TransformUpdate{{ID: id, Rotation: &rot}}
}

func (s *controlSession) resize(world document.Point, minSize float64) []document.TransformUpdate {
	next := engine.ResizeBounds(s.startBounds, s.handle, s.startPointer, world, minSize)
	return engine.ScaleNodes(s.startBounds, next, s.targetIDs, s.bases)
}

func (s *connectorSession) patch(moved document.Endpoint) (string, document.NodePatch) {
	source, target := s.source, s.target
	switch s.key {
	case engine.EndpointSource:
		source = moved
	case engine.EndpointTarget:
		target = moved
	}
	return s.connectorID, document.NodePatch{
		Source: &source,
		Target: &target,
		Mode:   engine.ResolveConnectorMode(source, target),
	}
}

func (s *panSession) viewport(pointer document.Point, scale float64) document.Viewport {
	return document.Viewport{
		X:     s.base.X + pointer.X - s.start.X,
		Y:     s.base.Y + pointer.Y - s.start.Y,
		Scale: scale,
	}
}

func (s *dragSession) positions(world document.Point) []document.PositionUpdate {
	dx := world.X - s.start.X
	dy := world.Y - s.start.Y
	updates := make([]document.PositionUpdate, 0, len(s.ids))
	for _, id := range s.ids {
		base := s.bases[id]
		updates = append(updates, document.PositionUpdate{ID: id, X: base.X + dx, Y: base.Y + dy})
	}
	return updates
}

// --- Wheel and keys ---

// Wheel zooms about the cursor. It does not touch the active session.
func (b *Board) Wheel(ev WheelEvent) {
	vp := b.store.GetState().Viewport
	b.store.SetViewport(engine.ZoomAt(vp, ev.DeltaY, ev.Position, b.opts.Zoom))
}

func (b *Board) KeyDown(ev KeyEvent) {
	if ev.Code == KeySpace {
		b.spacePressed = true
	}
}

func (b *Board) KeyUp(ev KeyEvent) {
	if ev.Code == KeySpace {
		b.spacePressed = false
	}
}
