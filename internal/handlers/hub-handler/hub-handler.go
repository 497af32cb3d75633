package hub_handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/handlers"
	"github.com/telecare/consult-session/internal/middleware"
	"github.com/telecare/consult-session/internal/websocket"
)

type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "consult-session",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.GetHubStats()
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket stats", stats, reqID))
	return nil
}

// HandleGetRoomClients exposes who is currently connected to one
// consultation room; ops-facing, not part of the client app flow.
func (h *HubHandler) HandleGetRoomClients(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	clients := h.Hub.RoomClients(appointmentID)

	type ClientInfo struct {
		ID       string    `json:"id"`
		UserID   string    `json:"user_id"`
		Role     string    `json:"role"`
		LastSeen time.Time `json:"last_seen"`
	}

	var clientList []ClientInfo
	for _, client := range clients {
		clientList = append(clientList, ClientInfo{
			ID:       client.ID,
			UserID:   client.UserID,
			Role:     client.Role,
			LastSeen: client.GetLastSeen(),
		})
	}

	resp := map[string]any{
		"appointment_id": appointmentID,
		"count":          len(clientList),
		"clients":        clientList,
	}
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("successfully get room clients", resp, reqID))
	return nil
}
