package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/remote"
	"github.com/inamate/whiteboard/internal/render"
)

func newTestServer(t *testing.T) (*httptest.Server, *remote.Hub) {
	t.Helper()
	hub := remote.NewHub(remote.RoomOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := mux.NewRouter()
	NewHandler(hub, []string{"http://localhost:5173"}, nil).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Stop()
		cancel()
		srv.Close()
	})
	return srv, hub
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func createBoard(t *testing.T, srv *httptest.Server, sample bool) string {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/boards", createBoardRequest{Sample: sample})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	return decode[map[string]string](t, resp)["id"]
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[map[string]any](t, resp)["status"]; got != "ok" {
		t.Errorf("status field = %v", got)
	}
}

func TestBoardLifecycle(t *testing.T) {
	srv, hub := newTestServer(t)

	id := createBoard(t, srv, true)
	if hub.Len() != 1 {
		t.Fatalf("hub.Len() = %d", hub.Len())
	}

	state := decode[document.State](t, do(t, http.MethodGet, srv.URL+"/boards/"+id+"/state", nil))
	sampleNodes := len(state.Nodes)
	if sampleNodes == 0 {
		t.Fatal("sample board has no nodes")
	}

	resp := do(t, http.MethodPost, srv.URL+"/boards/"+id+"/nodes", document.NewTextNode("", "note"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add node status = %d", resp.StatusCode)
	}
	nodeID := decode[map[string]string](t, resp)["id"]
	if nodeID == "" {
		t.Fatal("empty node id")
	}

	hist := decode[historyResponse](t, do(t, http.MethodPost, srv.URL+"/boards/"+id+"/undo", nil))
	if hist.CanUndo || !hist.CanRedo {
		t.Errorf("after undo = %+v", hist)
	}
	hist = decode[historyResponse](t, do(t, http.MethodPost, srv.URL+"/boards/"+id+"/redo", nil))
	if !hist.CanUndo || hist.CanRedo {
		t.Errorf("after redo = %+v", hist)
	}

	state = decode[document.State](t, do(t, http.MethodGet, srv.URL+"/boards/"+id+"/state", nil))
	if len(state.Nodes) != sampleNodes+1 {
		t.Errorf("nodes = %d, want %d", len(state.Nodes), sampleNodes+1)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/boards/"+id+"/nodes/"+nodeID, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, srv.URL+"/boards/"+id+"/nodes/"+nodeID, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second remove status = %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodDelete, srv.URL+"/boards/"+id, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete board status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/boards/"+id+"/state", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("state after delete status = %d", resp.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createBoard(t, srv, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown board", http.MethodGet, "/boards/board_missing/state", "", http.StatusNotFound},
		{"unknown board draw", http.MethodGet, "/boards/board_missing/draw", "", http.StatusNotFound},
		{"invalid create body", http.MethodPost, "/boards", "{", http.StatusBadRequest},
		{"invalid node body", http.MethodPost, "/boards/" + id + "/nodes", "nope", http.StatusBadRequest},
		{"node without type", http.MethodPost, "/boards/" + id + "/nodes", `{"id":"x"}`, http.StatusBadRequest},
		{"bad width", http.MethodGet, "/boards/" + id + "/render.png?width=wide", "", http.StatusBadRequest},
		{"bad height", http.MethodGet, "/boards/" + id + "/render.png?height=-", "", http.StatusBadRequest},
		{"websocket unknown board", http.MethodGet, "/ws/boards/board_missing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createBoard(t, srv, true)

	frame := decode[render.Frame](t, do(t, http.MethodGet, srv.URL+"/boards/"+id+"/draw", nil))
	if len(frame.Commands) == 0 {
		t.Fatal("no draw commands")
	}
	if frame.Viewport.Scale != 1 {
		t.Errorf("viewport = %+v", frame.Viewport)
	}
}

func TestRenderPNG(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createBoard(t, srv, true)

	resp := do(t, http.MethodGet, srv.URL+"/boards/"+id+"/render.png?width=320&height=200", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("bounds = %v", b)
	}
}

func TestWebSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createBoard(t, srv, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/boards/" + id
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() remote.Message {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		var msg remote.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		return msg
	}

	if msg := read(); msg.Type != remote.TypeWelcome || msg.BoardID != id {
		t.Fatalf("first message = %+v", msg)
	}
	if msg := read(); msg.Type != remote.TypeStateSync {
		t.Fatalf("second message = %+v", msg)
	}
	if msg := read(); msg.Type != remote.TypePresenceState {
		t.Fatalf("third message = %+v", msg)
	}

	payload, _ := json.Marshal(remote.NodeAddPayload{Node: document.NewTextNode("", "hi")})
	out, _ := json.Marshal(remote.Message{Type: remote.TypeNodeAdd, Payload: payload})
	if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	msg := read()
	var update remote.StateSyncPayload
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		t.Fatal(err)
	}
	if msg.Type != remote.TypeStateSync || len(update.State.Nodes) != 1 {
		t.Errorf("update = %+v nodes=%d", msg, len(update.State.Nodes))
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"board.explode"}`)); err != nil {
		t.Fatal(err)
	}
	if msg := read(); msg.Type != remote.TypeError {
		t.Errorf("expected error message, got %+v", msg)
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:5173", "*", "example.com"})
	want := []string{"localhost:5173", "*", "example.com"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("originPatterns = %v, want %v", got, want)
	}
}
