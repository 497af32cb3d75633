package consult_handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/handlers"
	"github.com/telecare/consult-session/internal/middleware"
	consult_service "github.com/telecare/consult-session/internal/use-case/consult-case"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

type ConsultHandler struct {
	State   *state.AppState
	Service consult_service.ConsultServiceContract
}

func NewConsultHandler(state *state.AppState, hub *websocket.Hub) *ConsultHandler {
	return &ConsultHandler{
		State:   state,
		Service: consult_service.NewConsultService(state, hub),
	}
}

func (h *ConsultHandler) StartCall(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	if appointmentID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "appointmentId is required", "params")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.StartCall(r.Context(), appointmentID, principal.ID, principal.Role)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("call started", *resp, reqID))
	return nil
}

func (h *ConsultHandler) EndCall(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	if appointmentID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "appointmentId is required", "params")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.EndCall(r.Context(), appointmentID, principal.ID, principal.Role)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("call ended", *resp, reqID))
	return nil
}

func (h *ConsultHandler) CallStatus(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	if appointmentID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "appointmentId is required", "params")
	}

	resp, err := h.Service.CallStatus(r.Context(), appointmentID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("call status fetched", *resp, reqID))
	return nil
}

func (h *ConsultHandler) Validate(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	if appointmentID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "appointmentId is required", "params")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.Validate(r.Context(), appointmentID, principal.ID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("eligibility evaluated", *resp, reqID))
	return nil
}

func (h *ConsultHandler) IssueToken(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	appointmentID := chi.URLParam(r, "appointmentId")
	if appointmentID == "" {
		return app_error.NewAppError(http.StatusBadRequest, "appointmentId is required", "params")
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return app_error.NewAppError(http.StatusUnauthorized, "principal is not found in context", "context")
	}

	resp, err := h.Service.IssueToken(r.Context(), appointmentID, principal.ID)
	if err != nil {
		return err
	}

	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		reqID = "unknown"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("rtc token issued", *resp, reqID))
	return nil
}
