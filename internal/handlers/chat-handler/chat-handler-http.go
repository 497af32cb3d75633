package chat_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/handlers"
	"github.com/telecare/consult-session/internal/middleware"
	chat_service "github.com/telecare/consult-session/internal/use-case/chat-case"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

type ChatHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  chat_service.ChatServiceContract
}

func NewChatHandler(state *state.AppState, hub *websocket.Hub) *ChatHandler {
	return &ChatHandler{
		State:    state,
		Validate: validator.New(),
		Service:  chat_service.NewChatService(state, hub),
	}
}

// SendMessage is the HTTP fallback for clients without a live socket. Same
// persistence and fan-out path as the send_message socket event.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req consult_dto.SendMessageRequest
	defer r.Body.Close()

	appointmentID := chi.URLParam(r, "appointmentId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.SendMessage(r.Context(), appointmentID, principal.ID, req.Content)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("message sent successfully", *resp, reqID))
	return nil
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")

	req := consult_dto.GetMessagesRequest{}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return app_error.NewAppError(http.StatusBadRequest, "limit must be a number", "limit")
		}
		req.Limit = limit
	}
	if v := r.URL.Query().Get("before"); v != "" {
		req.BeforeID = &v
	}

	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.GetMessages(r.Context(), appointmentID, principal.ID, req)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("messages fetch successfully", *resp, reqID))
	return nil
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	modified, err := h.Service.MarkRead(r.Context(), appointmentID, principal.ID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("messages marked as read", map[string]any{"modified": modified}, reqID))
	return nil
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	// empty on the global unread-count route, where the count spans every
	// consultation the caller participates in
	appointmentID := chi.URLParam(r, "appointmentId")

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	count, err := h.Service.UnreadCount(r.Context(), appointmentID, principal.ID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	resp := consult_dto.UnreadCountResponse{
		AppointmentID: appointmentID,
		UnreadCount:   count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("unread count fetched", resp, reqID))
	return nil
}

func (h *ChatHandler) LatestMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.LatestMessage(r.Context(), appointmentID, principal.ID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	if resp == nil {
		json.NewEncoder(w).Encode(handlers.CreateResponse[*consult_dto.ChatMessageResponse]("no messages yet", nil, reqID))
		return nil
	}
	json.NewEncoder(w).Encode(handlers.CreateResponse("latest message fetched", *resp, reqID))
	return nil
}
