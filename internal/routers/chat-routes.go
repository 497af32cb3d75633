package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/telecare/consult-session/config"
	"github.com/telecare/consult-session/internal/handlers"
	chat_handler "github.com/telecare/consult-session/internal/handlers/chat-handler"
	"github.com/telecare/consult-session/internal/middleware"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

func ChatRouter(r chi.Router, state *state.AppState, hub *websocket.Hub) {
	chatHandler := chat_handler.NewChatHandler(state, hub)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public, config.Conf.App.InsecureAuth))
		protected.Post("/api/v1/consultations/{appointmentId}/messages", handlers.WrapHandler(chatHandler.SendMessage))
		protected.Get("/api/v1/consultations/{appointmentId}/messages", handlers.WrapHandler(chatHandler.GetMessages))
		protected.Patch("/api/v1/consultations/{appointmentId}/read", handlers.WrapHandler(chatHandler.MarkRead))
		protected.Get("/api/v1/consultations/{appointmentId}/unread", handlers.WrapHandler(chatHandler.UnreadCount))
		protected.Get("/api/v1/consultations/{appointmentId}/latest", handlers.WrapHandler(chatHandler.LatestMessage))
		protected.Get("/api/v1/consultations/unread-count", handlers.WrapHandler(chatHandler.UnreadCount)) // across all threads
	})
}
