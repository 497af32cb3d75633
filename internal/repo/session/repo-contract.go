package session_repo

import (
	"context"
	"time"

	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
)

type SessionRepoContract interface {
	FindByAppointmentID(ctx context.Context, appointmentID string) (*entity.ConsultationSession, *app_error.AppError)
	// BeginCall flips the session to active if and only if the call has not
	// started yet. Returns false without error when another start won the race.
	BeginCall(ctx context.Context, appointmentID string, by entity.ParticipantRole, at time.Time) (bool, *app_error.AppError)
	// FinishCall ends an active call and completes the appointment. Returns
	// false when the session is not active (never started or already ended).
	FinishCall(ctx context.Context, appointmentID string, at time.Time) (bool, *app_error.AppError)
}
