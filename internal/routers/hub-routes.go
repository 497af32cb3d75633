package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/telecare/consult-session/config"
	"github.com/telecare/consult-session/internal/handlers"
	hub_handler "github.com/telecare/consult-session/internal/handlers/hub-handler"
	"github.com/telecare/consult-session/internal/middleware"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

func HubRouter(r chi.Router, state *state.AppState, hub *websocket.Hub, wsHandler *websocket.WebSocketHandler) {
	hubHandler := hub_handler.NewHubHandler(hub)

	r.Get("/api/v1/health", hubHandler.HandleHealth)
	r.Get("/ws", wsHandler.ServeWS)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public, config.Conf.App.InsecureAuth))
		protected.Get("/api/v1/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
		protected.Get("/api/v1/rooms/{appointmentId}/clients", handlers.WrapHandler(hubHandler.HandleGetRoomClients))
	})
}
