//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/canvas"
	"github.com/inamate/whiteboard/internal/document"
)

var eng *canvas.Engine

func main() {
	eng = canvas.NewEngine(board.DefaultOptions())

	whiteboardEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	whiteboardEngine.Set("loadDocument", js.FuncOf(loadDocument))
	whiteboardEngine.Set("loadSample", js.FuncOf(loadSample))
	whiteboardEngine.Set("pointerDown", js.FuncOf(pointerDown))
	whiteboardEngine.Set("pointerMove", js.FuncOf(pointerMove))
	whiteboardEngine.Set("pointerUp", js.FuncOf(pointerUp))
	whiteboardEngine.Set("wheel", js.FuncOf(wheel))
	whiteboardEngine.Set("keyDown", js.FuncOf(keyDown))
	whiteboardEngine.Set("keyUp", js.FuncOf(keyUp))
	whiteboardEngine.Set("undo", js.FuncOf(undo))
	whiteboardEngine.Set("redo", js.FuncOf(redo))
	whiteboardEngine.Set("addNode", js.FuncOf(addNode))
	whiteboardEngine.Set("removeNode", js.FuncOf(removeNode))
	whiteboardEngine.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← engine) ---
	whiteboardEngine.Set("render", js.FuncOf(render))
	whiteboardEngine.Set("hitTest", js.FuncOf(hitTest))
	whiteboardEngine.Set("getState", js.FuncOf(getState))
	whiteboardEngine.Set("getSelection", js.FuncOf(getSelection))
	whiteboardEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	whiteboardEngine.Set("getSession", js.FuncOf(getSession))
	whiteboardEngine.Set("canUndo", js.FuncOf(canUndo))
	whiteboardEngine.Set("canRedo", js.FuncOf(canRedo))

	js.Global().Set("whiteboardEngine", whiteboardEngine)
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	select {}
}

// pointerEvent reads a DOM-like event object:
// {x, y, button, targetId, shiftKey, metaKey, ctrlKey}.
func pointerEvent(v js.Value) board.PointerEvent {
	ev := board.PointerEvent{
		Position: document.Point{X: v.Get("x").Float(), Y: v.Get("y").Float()},
	}
	if b := v.Get("button"); b.Type() == js.TypeNumber {
		ev.Button = board.Button(b.Int())
	}
	if t := v.Get("targetId"); t.Type() == js.TypeString {
		ev.TargetID = t.String()
	}
	ev.Shift = v.Get("shiftKey").Truthy()
	ev.Meta = v.Get("metaKey").Truthy()
	ev.Ctrl = v.Get("ctrlKey").Truthy()
	return ev
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing board JSON"})
	}
	if err := eng.LoadDocument(args[0].String()); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSample(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleDocument()
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// pointerDown hit tests the board itself when the event has no targetId.
func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerDown(pointerEvent(args[0]), args[0].Get("targetId").IsUndefined())
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerMove(pointerEvent(args[0]))
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.PointerUp(pointerEvent(args[0]))
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.Wheel(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func keyDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.KeyDown(args[0].String())
	return nil
}

func keyUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.KeyUp(args[0].String())
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	eng.Undo()
	return nil
}

func redo(this js.Value, args []js.Value) interface{} {
	eng.Redo()
	return nil
}

func addNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing node JSON"})
	}
	id, err := eng.AddNode(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"id": id})
}

func removeNode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.RemoveNode(args[0].String()))
}

var changeCallback js.Value

// onChange registers a JS callback run after every redraw. Passing a
// non-function clears it.
func onChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		eng.OnChange(nil)
		return nil
	}
	changeCallback = args[0]
	eng.OnChange(func() { changeCallback.Invoke() })
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getSession(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSession())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.CanRedo())
}
