package consult_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/telecare/consult-session/config"
	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/queue"
	session_repo "github.com/telecare/consult-session/internal/repo/session"
	"github.com/telecare/consult-session/internal/utils"
	"github.com/telecare/consult-session/internal/utils/types"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

const statusCacheTTL = 5 * time.Second

type ConsultService struct {
	SessionRepo session_repo.SessionRepoContract
	Hub         *websocket.Hub
	Producer    queue.Producer
	Redis       *redis.Client

	RTCAppID       string
	RTCCertificate string
	TokenTTL       time.Duration

	nowFn func() time.Time
}

func NewConsultService(appState *state.AppState, hub *websocket.Hub) ConsultServiceContract {
	return &ConsultService{
		SessionRepo:    session_repo.NewSessionRepo(appState),
		Hub:            hub,
		Producer:       queue.NewProducer(appState.Redis),
		Redis:          appState.Redis,
		RTCAppID:       config.Conf.RTC.AppID,
		RTCCertificate: config.Conf.RTC.AppCertificate,
		TokenTTL:       time.Duration(config.Conf.RTC.TokenTTLMin) * time.Minute,
		nowFn:          time.Now,
	}
}

func (s *ConsultService) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now()
}

func (s *ConsultService) StartCall(ctx context.Context, appointmentID, actorID string, actorRole entity.ParticipantRole) (*consult_dto.CallStatusResponse, *app_error.AppError) {
	session, appErr := s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	role, ok := session.RoleOf(actorID)
	if !ok || role != actorRole {
		return nil, app_error.Authorization("only the appointment's doctor or patient may start the call")
	}

	if session.CallEndedAt != nil {
		return nil, app_error.InvalidState("consultation has already ended")
	}
	if session.CallStarted {
		// racing poll vs explicit start: keep the original starter
		return statusResponse(session), nil
	}
	if session.AppointmentStatus != entity.AppointmentConfirmed {
		return nil, app_error.InvalidState("appointment is not confirmed")
	}

	startedAt := s.now()
	won, appErr := s.SessionRepo.BeginCall(ctx, appointmentID, actorRole, startedAt)
	if appErr != nil {
		return nil, appErr
	}

	if !won {
		// lost a concurrent start; report whoever got there first
		session, appErr = s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
		if appErr != nil {
			return nil, appErr
		}
		if !session.CallStarted {
			return nil, app_error.InvalidState("call could not be started")
		}
		return statusResponse(session), nil
	}

	session.CallStarted = true
	session.CallStartedBy = actorRole
	session.CallStartedAt = &startedAt

	s.invalidateStatusCache(ctx, appointmentID)
	s.broadcastCallEvent(appointmentID, websocket.EventCallStarted, session)

	log.Info().Str("appointmentID", appointmentID).Str("startedBy", string(actorRole)).Msg("consultation call started")
	return statusResponse(session), nil
}

func (s *ConsultService) EndCall(ctx context.Context, appointmentID, actorID string, actorRole entity.ParticipantRole) (*consult_dto.CallStatusResponse, *app_error.AppError) {
	session, appErr := s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	role, ok := session.RoleOf(actorID)
	if !ok || role != actorRole {
		return nil, app_error.Authorization("only the appointment's doctor or patient may end the call")
	}

	endedAt := s.now()
	done, appErr := s.SessionRepo.FinishCall(ctx, appointmentID, endedAt)
	if appErr != nil {
		return nil, appErr
	}
	if !done {
		if session.CallEndedAt != nil {
			return nil, app_error.InvalidState("consultation has already ended")
		}
		return nil, app_error.InvalidState("call has not been started")
	}

	session.CallEndedAt = &endedAt
	session.AppointmentStatus = entity.AppointmentCompleted

	s.invalidateStatusCache(ctx, appointmentID)
	s.broadcastCallEvent(appointmentID, websocket.EventCallEnded, session)
	s.enqueueWrapUpMail(ctx, session, endedAt)

	log.Info().Str("appointmentID", appointmentID).Str("endedBy", string(actorRole)).Msg("consultation call ended")
	return statusResponse(session), nil
}

func (s *ConsultService) CallStatus(ctx context.Context, appointmentID string) (*consult_dto.CallStatusResponse, *app_error.AppError) {
	cacheKey := "call_status:" + appointmentID

	if s.Redis != nil {
		cached, _ := utils.GetCacheData[consult_dto.CallStatusResponse](ctx, s.Redis, cacheKey)
		if cached != nil {
			return cached, nil
		}
	}

	session, appErr := s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	resp := statusResponse(session)
	if s.Redis != nil {
		if err := utils.SetCacheData(ctx, s.Redis, cacheKey, resp, statusCacheTTL); err != nil {
			log.Warn().Err(err).Str("appointmentID", appointmentID).Msg("failed to cache call status")
		}
	}

	return resp, nil
}

func (s *ConsultService) Validate(ctx context.Context, appointmentID, actorID string) (*consult_dto.EligibilityResponse, *app_error.AppError) {
	session, appErr := s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	elig, appErr := Evaluate(session, actorID, s.now())
	if appErr != nil {
		return nil, appErr
	}

	return &consult_dto.EligibilityResponse{
		CanJoin:       elig.CanJoin,
		Reason:        elig.Reason,
		CallStarted:   elig.CallStarted,
		CallStartedBy: string(elig.CallStartedBy),
		Appointment:   appointmentEcho(session),
	}, nil
}

func (s *ConsultService) IssueToken(ctx context.Context, appointmentID, actorID string) (*consult_dto.TokenResponse, *app_error.AppError) {
	session, appErr := s.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	// re-check at issuance time: payment or cancellation may have changed
	// since the client's last validate poll
	elig, appErr := Evaluate(session, actorID, s.now())
	if appErr != nil {
		return nil, appErr
	}
	if !elig.CanJoin {
		return nil, app_error.Authorization(elig.Reason)
	}

	uid := RTCUid(actorID)
	token, expiresAt, err := MintRTCToken(s.RTCAppID, s.RTCCertificate, appointmentID, uid, s.TokenTTL, s.now())
	if err != nil {
		log.Error().Err(err).Str("appointmentID", appointmentID).Msg("failed to mint rtc token")
		return nil, app_error.Internal("failed to issue rtc credential", "rtc")
	}

	return &consult_dto.TokenResponse{
		Token:       token,
		Channel:     appointmentID,
		UID:         uid,
		ExpiresAt:   expiresAt,
		Appointment: appointmentEcho(session),
	}, nil
}

func (s *ConsultService) invalidateStatusCache(ctx context.Context, appointmentID string) {
	if s.Redis == nil {
		return
	}
	if err := utils.DeleteCacheData(ctx, s.Redis, "call_status:"+appointmentID); err != nil {
		log.Warn().Err(err).Str("appointmentID", appointmentID).Msg("failed to invalidate call status cache")
	}
}

func (s *ConsultService) broadcastCallEvent(appointmentID, event string, session *entity.ConsultationSession) {
	if s.Hub == nil {
		return
	}
	s.Hub.BroadcastToRoom(appointmentID, websocket.OutgoingEvent{
		Event: event,
		Data:  statusResponse(session),
	})
}

func (s *ConsultService) enqueueWrapUpMail(ctx context.Context, session *entity.ConsultationSession, endedAt time.Time) {
	if s.Producer == nil {
		return
	}

	job := queue.Job{
		ID:   uuid.New().String(),
		Type: queue.JobConsultationEnded,
		Payload: queue.MustMarshal(types.ConsultationEndedPayload{
			AppointmentID: session.AppointmentID,
			PatientName:   session.PatientName,
			DoctorName:    session.DoctorName,
			EndedAt:       endedAt,
		}),
		MaxRetry:  3,
		CreatedAt: endedAt.Unix(),
		ExpireAt:  endedAt.Add(time.Hour).Unix(),
	}

	if err := s.Producer.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Str("appointmentID", session.AppointmentID).Msg("failed to enqueue wrap-up mail job")
	}
}

func statusResponse(session *entity.ConsultationSession) *consult_dto.CallStatusResponse {
	return &consult_dto.CallStatusResponse{
		AppointmentID:     session.AppointmentID,
		CallStarted:       session.CallStarted,
		CallStartedBy:     string(session.CallStartedBy),
		CallStartedAt:     session.CallStartedAt,
		CallEndedAt:       session.CallEndedAt,
		AppointmentStatus: string(session.AppointmentStatus),
	}
}

func appointmentEcho(session *entity.ConsultationSession) consult_dto.AppointmentEcho {
	return consult_dto.AppointmentEcho{
		AppointmentID:   session.AppointmentID,
		DoctorID:        session.DoctorID,
		DoctorName:      session.DoctorName,
		PatientID:       session.PatientID,
		PatientName:     session.PatientName,
		ScheduledDate:   session.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:   session.ScheduledTime,
		DurationMinutes: session.DurationMinutes,
	}
}
