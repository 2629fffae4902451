package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/internal/board"
	"github.com/inamate/whiteboard/internal/document"
	"github.com/inamate/whiteboard/internal/remote"
	"github.com/inamate/whiteboard/internal/render"
	"github.com/inamate/whiteboard/internal/store"
)

type Handler struct {
	hub            *remote.Hub
	originPatterns []string
	logger         *slog.Logger
}

// NewHandler serves boards held by hub. origins are the allowed browser
// origins for WebSocket upgrades, e.g. "http://localhost:5173".
func NewHandler(hub *remote.Hub, origins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{hub: hub, originPatterns: originPatterns(origins), logger: logger}
}

// originPatterns turns origin URLs into the host patterns websocket.Accept
// matches against.
func originPatterns(origins []string) []string {
	var patterns []string
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

// Routes registers every board endpoint on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	r.HandleFunc("/boards", h.CreateBoard).Methods("POST", "OPTIONS")
	r.HandleFunc("/boards/{boardId}", h.DeleteBoard).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/boards/{boardId}/state", h.GetState).Methods("GET")
	r.HandleFunc("/boards/{boardId}/nodes", h.AddNode).Methods("POST", "OPTIONS")
	r.HandleFunc("/boards/{boardId}/nodes/{nodeId}", h.RemoveNode).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/boards/{boardId}/undo", h.Undo).Methods("POST", "OPTIONS")
	r.HandleFunc("/boards/{boardId}/redo", h.Redo).Methods("POST", "OPTIONS")
	r.HandleFunc("/boards/{boardId}/draw", h.Draw).Methods("GET")
	r.HandleFunc("/boards/{boardId}/render.png", h.RenderPNG).Methods("GET")

	r.HandleFunc("/ws/boards/{boardId}", h.WebSocket)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "boards": h.hub.Len()})
}

type createBoardRequest struct {
	Sample bool `json:"sample"`
}

type historyResponse struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	initial := document.NewState()
	if req.Sample {
		initial = document.NewSampleBoard()
	}

	room, err := h.hub.Create(initial)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": room.ID()})
}

func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Delete(mux.Vars(r)["boardId"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.State())
}

func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var node document.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !node.Type.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown node type"})
		return
	}

	var id string
	err = room.Do(r.Context(), func(_ *board.Board, s *store.Store) {
		id = s.AddNode(node)
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, err := h.hub.Room(vars["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var removed bool
	err = room.Do(r.Context(), func(_ *board.Board, s *store.Store) {
		removed = s.RemoveNode(vars["nodeId"])
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !removed {
		handleServiceError(w, remote.ErrNodeNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, (*board.Board).Undo)
}

func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, (*board.Board).Redo)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, step func(*board.Board)) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var resp historyResponse
	err = room.Do(r.Context(), func(b *board.Board, s *store.Store) {
		step(b)
		resp = historyResponse{CanUndo: s.CanUndo(), CanRedo: s.CanRedo()}
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, render.CompileFrame(room.State()))
}

func (h *Handler) RenderPNG(w http.ResponseWriter, r *http.Request) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	width, err := intParam(r, "width")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid width"})
		return
	}
	height, err := intParam(r, "height")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid height"})
		return
	}

	rast, err := render.NewRasterizer(width, height, h.logger)
	if err != nil {
		h.logger.Error("create rasterizer", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := rast.WritePNG(w, room.State()); err != nil {
		h.logger.Error("encode png", "board", room.ID(), "error", err)
	}
}

func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	room, err := h.hub.Room(mux.Vars(r)["boardId"])
	if err != nil {
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := remote.NewClient(h.hub, room, conn, clientID)

	if err := h.hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// intParam reads an optional integer query parameter. Missing means 0.
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, remote.ErrRoomNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "board not found"})
	case errors.Is(err, remote.ErrNodeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "node not found"})
	case errors.Is(err, remote.ErrRoomClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "board closed"})
	default:
		slog.Error("unhandled service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
