package ws_handler

import (
	"context"

	"github.com/rs/zerolog/log"
	app_error "github.com/telecare/consult-session/internal/errors"
	session_repo "github.com/telecare/consult-session/internal/repo/session"
	chat_service "github.com/telecare/consult-session/internal/use-case/chat-case"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

// ConsultEventHandler routes decoded socket events into the use-cases. The
// transport layer stays dumb; participant checks live here.
type ConsultEventHandler struct {
	SessionRepo session_repo.SessionRepoContract
	ChatService chat_service.ChatServiceContract
	Hub         *websocket.Hub
}

func NewConsultEventHandler(appState *state.AppState, hub *websocket.Hub, chatService chat_service.ChatServiceContract) *ConsultEventHandler {
	return &ConsultEventHandler{
		SessionRepo: session_repo.NewSessionRepo(appState),
		ChatService: chatService,
		Hub:         hub,
	}
}

func (h *ConsultEventHandler) OnJoinRoom(ctx context.Context, c *websocket.Client, appointmentID string) {
	if appointmentID == "" {
		h.sendError(c, "", app_error.Validation("appointmentId is required", "appointmentId"))
		return
	}

	session, appErr := h.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		h.sendError(c, appointmentID, appErr)
		return
	}
	if _, ok := session.RoleOf(c.UserID); !ok {
		h.sendError(c, appointmentID, app_error.Authorization("you are not a participant of this consultation"))
		return
	}

	h.Hub.JoinRoom(appointmentID, c)
}

func (h *ConsultEventHandler) OnSendMessage(ctx context.Context, c *websocket.Client, appointmentID, content string) {
	if appointmentID == "" {
		h.sendError(c, "", app_error.Validation("appointmentId is required", "appointmentId"))
		return
	}

	if _, appErr := h.ChatService.SendMessage(ctx, appointmentID, c.UserID, content); appErr != nil {
		// sender learns about the failure; the room never sees the message
		h.sendError(c, appointmentID, appErr)
	}
}

func (h *ConsultEventHandler) OnTyping(ctx context.Context, c *websocket.Client, appointmentID string, typing bool) {
	if appointmentID == "" || !h.Hub.IsUserInRoom(appointmentID, c.UserID) {
		return
	}
	h.ChatService.Typing(appointmentID, c, typing)
}

func (h *ConsultEventHandler) OnMarkRead(ctx context.Context, c *websocket.Client, appointmentID string) {
	if appointmentID == "" {
		return
	}
	if _, appErr := h.ChatService.MarkRead(ctx, appointmentID, c.UserID); appErr != nil {
		h.sendError(c, appointmentID, appErr)
	}
}

func (h *ConsultEventHandler) sendError(c *websocket.Client, appointmentID string, appErr *app_error.AppError) {
	log.Debug().Str("clientID", c.ID).Str("appointmentID", appointmentID).Str("kind", string(appErr.Kind)).Msg("ws: event rejected")

	h.Hub.SendToClient(c, websocket.OutgoingEvent{
		Event:  websocket.EventMessageError,
		RoomID: appointmentID,
		Data: map[string]any{
			"message": appErr.Message,
			"kind":    appErr.Kind,
		},
	})
}
