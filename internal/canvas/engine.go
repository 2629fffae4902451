package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/engine"
	"github.com/inamate/whiteboard/internal/render"
	"github.com/inamate/whiteboard/internal/store"
)

// Engine is a single-user whiteboard that owns its store, board and frame
// recorder. It takes commands from a host UI and answers queries as JSON
// strings. An Engine is not safe for concurrent use.
type Engine struct {
	store    *store.Store
	board    *board.Board
	recorder *render.Recorder

	onChange func()
}

// NewEngine creates an engine over an empty board.
func NewEngine(opts board.Options) *Engine {
	var storeOpts []store.Option
	if opts.Logger != nil {
		storeOpts = append(storeOpts, store.WithLogger(opts.Logger))
	}
	e := &Engine{
		store:    store.New(document.NewState(), storeOpts...),
		recorder: &render.Recorder{},
	}
	e.recorder.OnFrame = func(render.Frame) {
		if e.onChange != nil {
			e.onChange()
		}
	}
	e.board = board.New(e.store, opts)
	e.board.Mount(e.recorder)
	return e
}

// OnChange registers fn to run after every redraw. Passing nil clears it.
func (e *Engine) OnChange(fn func()) { e.onChange = fn }

// Close unmounts the recorder. Commands still update the store afterwards but
// Render keeps returning the last frame.
func (e *Engine) Close() { e.board.Unmount() }

// --- Commands (host → engine) ---

// LoadDocument replaces the board with a JSON encoded state as one undoable
// step.
func (e *Engine) LoadDocument(jsonData string) error {
	state := document.NewState()
	if err := json.Unmarshal([]byte(jsonData), &state); err != nil {
		return fmt.Errorf("decode board: %w", err)
	}
	if state.Viewport.Scale <= 0 {
		state.Viewport = document.DefaultViewport()
	}
	e.store.Load(state)
	return nil
}

// LoadSampleDocument loads the built-in sample board.
func (e *Engine) LoadSampleDocument() {
	e.store.Load(document.NewSampleBoard())
}

// PointerDown starts an interaction. An empty targetID is resolved by hit
// testing when resolve is set.
func (e *Engine) PointerDown(ev board.PointerEvent, resolve bool) {
	if ev.TargetID == "" && resolve {
		ev.TargetID = e.HitTest(ev.Position.X, ev.Position.Y)
	}
	e.board.PointerDown(ev)
}

func (e *Engine) PointerMove(ev board.PointerEvent) { e.board.PointerMove(ev) }

func (e *Engine) PointerUp(ev board.PointerEvent) { e.board.PointerUp(ev) }

func (e *Engine) Wheel(deltaY, x, y float64) {
	e.board.Wheel(board.WheelEvent{DeltaY: deltaY, Position: document.Point{X: x, Y: y}})
}

func (e *Engine) KeyDown(code string) { e.board.KeyDown(board.KeyEvent{Code: code}) }

func (e *Engine) KeyUp(code string) { e.board.KeyUp(board.KeyEvent{Code: code}) }

func (e *Engine) Undo() { e.board.Undo() }

func (e *Engine) Redo() { e.board.Redo() }

// AddNode adds a JSON encoded node and returns its id.
func (e *Engine) AddNode(jsonData string) (string, error) {
	var n document.Node
	if err := json.Unmarshal([]byte(jsonData), &n); err != nil {
		return "", fmt.Errorf("decode node: %w", err)
	}
	if !n.Type.Valid() {
		return "", fmt.Errorf("unknown node type %q", n.Type)
	}
	return e.store.AddNode(n), nil
}

// RemoveNode reports whether id existed.
func (e *Engine) RemoveNode(id string) bool { return e.store.RemoveNode(id) }

// --- Queries (host ← engine) ---

// Render returns the latest frame as JSON.
func (e *Engine) Render() string {
	frame, _ := e.recorder.Last()
	data, err := json.Marshal(frame)
	if err != nil {
		return `{"commands":[]}`
	}
	return string(data)
}

// HitTest returns the topmost node under the screen point, or "".
func (e *Engine) HitTest(x, y float64) string {
	state := e.store.GetState()
	return engine.HitTest(state, engine.ScreenToWorld(state.Viewport, document.Point{X: x, Y: y}))
}

func (e *Engine) GetDocument() string {
	return toJSON(e.store.GetState(), "{}")
}

func (e *Engine) GetSelection() string {
	return toJSON(e.store.GetState().Selection, "{}")
}

// GetSelectionBounds returns the world bounds of the selected nodes, or null
// when nothing is selected.
func (e *Engine) GetSelectionBounds() string {
	state := e.store.GetState()
	bounds, ok := engine.SelectedBounds(state, state.Selection.NodeIDs)
	if !ok {
		return "null"
	}
	return toJSON(bounds, "null")
}

func (e *Engine) GetSession() string { return e.board.Session().String() }

func (e *Engine) CanUndo() bool { return e.store.CanUndo() }

func (e *Engine) CanRedo() bool { return e.store.CanRedo() }

func toJSON(v any, fallback string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}
