package consult_service

import (
	"context"

	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
)

type ConsultServiceContract interface {
	// StartCall transitions not_started -> active. Repeating it while active
	// is a no-op success returning the original state; the waiting-room poll
	// may race an explicit start.
	StartCall(ctx context.Context, appointmentID, actorID string, actorRole entity.ParticipantRole) (*consult_dto.CallStatusResponse, *app_error.AppError)
	// EndCall transitions active -> ended and completes the appointment.
	// Terminal: a new consultation needs a new appointment.
	EndCall(ctx context.Context, appointmentID, actorID string, actorRole entity.ParticipantRole) (*consult_dto.CallStatusResponse, *app_error.AppError)
	// CallStatus is the cheap waiting-room poll target.
	CallStatus(ctx context.Context, appointmentID string) (*consult_dto.CallStatusResponse, *app_error.AppError)
	// Validate answers "can I join right now, and why not if not".
	Validate(ctx context.Context, appointmentID, actorID string) (*consult_dto.EligibilityResponse, *app_error.AppError)
	// IssueToken re-checks eligibility at call time and mints the RTC
	// credential. Ineligibility hardens into an error here.
	IssueToken(ctx context.Context, appointmentID, actorID string) (*consult_dto.TokenResponse, *app_error.AppError)
}
