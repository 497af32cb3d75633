package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/telecare/consult-session/internal/middleware"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

func NewRouter(state *state.AppState, hub *websocket.Hub, wsHandler *websocket.WebSocketHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	ConsultRouter(r, state, hub)
	ChatRouter(r, state, hub)
	HubRouter(r, state, hub, wsHandler)
	return r
}
