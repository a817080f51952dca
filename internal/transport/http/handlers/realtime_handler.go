package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tasknest/realtime/internal/transport/ws"
)

// RealtimeHandler exposes read-only views over the live connection state.
type RealtimeHandler struct {
	hub *ws.Hub
}

func NewRealtimeHandler(hub *ws.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// ProjectViewers returns the users currently subscribed to a project room.
func (h *RealtimeHandler) ProjectViewers(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
		return
	}

	viewers := h.hub.ProjectViewers(projectID)
	if viewers == nil {
		viewers = []uuid.UUID{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"viewers": viewers})
}

// OnlineUsers returns every user with at least one live connection.
func (h *RealtimeHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	online := h.hub.OnlineUsers()
	if online == nil {
		online = []uuid.UUID{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"online": online})
}
