package session_repo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/state"
	"gorm.io/gorm"
)

type SessionRepo struct {
	AppState *state.AppState
}

func NewSessionRepo(appState *state.AppState) SessionRepoContract {
	return &SessionRepo{
		AppState: appState,
	}
}

func (r *SessionRepo) FindByAppointmentID(ctx context.Context, appointmentID string) (*entity.ConsultationSession, *app_error.AppError) {
	var session entity.ConsultationSession
	if err := r.AppState.DB.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("no consultation session for this appointment")
		}
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to fetch consultation session")
		return nil, app_error.NewAppError(http.StatusInternalServerError, "failed to fetch consultation session", "db-error")
	}
	return &session, nil
}

// BeginCall uses a guarded UPDATE so two concurrent starts cannot both claim
// the call: the WHERE clause only matches while call_started is still false.
func (r *SessionRepo) BeginCall(ctx context.Context, appointmentID string, by entity.ParticipantRole, at time.Time) (bool, *app_error.AppError) {
	tx := r.AppState.DB.WithContext(ctx).
		Model(&entity.ConsultationSession{}).
		Where("appointment_id = ? AND call_started = ?", appointmentID, false).
		Updates(map[string]any{
			"call_started":    true,
			"call_started_by": by,
			"call_started_at": at,
		})

	if tx.Error != nil {
		log.Error().Err(tx.Error).Str("appointmentID", appointmentID).Msg("failed to start call")
		return false, app_error.NewAppError(http.StatusInternalServerError, "failed to start call", "db-error")
	}

	return tx.RowsAffected > 0, nil
}

func (r *SessionRepo) FinishCall(ctx context.Context, appointmentID string, at time.Time) (bool, *app_error.AppError) {
	tx := r.AppState.DB.WithContext(ctx).
		Model(&entity.ConsultationSession{}).
		Where("appointment_id = ? AND call_started = ? AND call_ended_at IS NULL", appointmentID, true).
		Updates(map[string]any{
			"call_ended_at":      at,
			"appointment_status": entity.AppointmentCompleted,
		})

	if tx.Error != nil {
		log.Error().Err(tx.Error).Str("appointmentID", appointmentID).Msg("failed to end call")
		return false, app_error.NewAppError(http.StatusInternalServerError, "failed to end call", "db-error")
	}

	return tx.RowsAffected > 0, nil
}
