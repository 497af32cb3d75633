package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/telecare/consult-session/config"
	"github.com/telecare/consult-session/internal/handlers"
	consult_handler "github.com/telecare/consult-session/internal/handlers/consult-handler"
	"github.com/telecare/consult-session/internal/middleware"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

func ConsultRouter(r chi.Router, state *state.AppState, hub *websocket.Hub) {
	consultHandler := consult_handler.NewConsultHandler(state, hub)
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(state.JwtSecret.Public, config.Conf.App.InsecureAuth))
		protected.Post("/api/v1/consultations/{appointmentId}/start", handlers.WrapHandler(consultHandler.StartCall))
		protected.Post("/api/v1/consultations/{appointmentId}/end", handlers.WrapHandler(consultHandler.EndCall))
		protected.Get("/api/v1/consultations/{appointmentId}/status", handlers.WrapHandler(consultHandler.CallStatus))
		protected.Get("/api/v1/consultations/{appointmentId}/validate", handlers.WrapHandler(consultHandler.Validate))
		protected.Post("/api/v1/consultations/{appointmentId}/token", handlers.WrapHandler(consultHandler.IssueToken))
	})
}
