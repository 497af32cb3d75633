package chat_service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/queue"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) FindByAppointmentID(ctx context.Context, appointmentID string) (*entity.ConsultationSession, *app_error.AppError) {
	args := m.Called(ctx, appointmentID)
	var session *entity.ConsultationSession
	if args.Get(0) != nil {
		session = args.Get(0).(*entity.ConsultationSession)
	}
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return session, appErr
}

func (m *MockSessionRepo) BeginCall(ctx context.Context, appointmentID string, by entity.ParticipantRole, at time.Time) (bool, *app_error.AppError) {
	args := m.Called(ctx, appointmentID, by, at)
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return args.Bool(0), appErr
}

func (m *MockSessionRepo) FinishCall(ctx context.Context, appointmentID string, at time.Time) (bool, *app_error.AppError) {
	args := m.Called(ctx, appointmentID, at)
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return args.Bool(0), appErr
}

type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) InsertMessage(ctx context.Context, msg *entity.ChatMessage) (bson.ObjectID, *app_error.AppError) {
	args := m.Called(ctx, msg)
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return args.Get(0).(bson.ObjectID), appErr
}

func (m *MockChatRepo) MarkAllRead(ctx context.Context, appointmentID, readerID string, at time.Time) (int64, *app_error.AppError) {
	args := m.Called(ctx, appointmentID, readerID, at)
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return args.Get(0).(int64), appErr
}

func (m *MockChatRepo) UnreadCount(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError) {
	args := m.Called(ctx, appointmentID, readerID)
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return args.Get(0).(int64), appErr
}

func (m *MockChatRepo) GetMessages(ctx context.Context, appointmentID string, limit int, beforeID *string) ([]*entity.ChatMessage, *app_error.AppError) {
	args := m.Called(ctx, appointmentID, limit, beforeID)
	var msgs []*entity.ChatMessage
	if args.Get(0) != nil {
		msgs = args.Get(0).([]*entity.ChatMessage)
	}
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return msgs, appErr
}

func (m *MockChatRepo) LatestMessage(ctx context.Context, appointmentID string) (*entity.ChatMessage, *app_error.AppError) {
	args := m.Called(ctx, appointmentID)
	var msg *entity.ChatMessage
	if args.Get(0) != nil {
		msg = args.Get(0).(*entity.ChatMessage)
	}
	var appErr *app_error.AppError
	if args.Get(1) != nil {
		appErr = args.Get(1).(*app_error.AppError)
	}
	return msg, appErr
}

func testSession() *entity.ConsultationSession {
	return &entity.ConsultationSession{
		AppointmentID:     "apt-100",
		PatientID:         "pat-1",
		DoctorID:          "doc-1",
		PatientName:       "Jordan Rivera",
		DoctorName:        "Sam Okafor",
		PaymentStatus:     entity.PaymentPaid,
		AppointmentStatus: entity.AppointmentConfirmed,
		DurationMinutes:   15,
		ScheduledDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		ScheduledTime:     "09:00 AM",
	}
}

func newTestChatService(sessionRepo *MockSessionRepo, chatRepo *MockChatRepo) *ChatService {
	return &ChatService{
		SessionRepo: sessionRepo,
		ChatRepo:    chatRepo,
	}
}

func TestSendMessage_ReceiverIsCounterpart(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)

	msgID := bson.NewObjectID()
	chatRepo.On("InsertMessage", mock.Anything, mock.MatchedBy(func(msg *entity.ChatMessage) bool {
		return msg.SenderID == "pat-1" &&
			msg.SenderRole == entity.RolePatient &&
			msg.ReceiverID == "doc-1" &&
			msg.ReceiverRole == entity.RoleDoctor &&
			!msg.IsRead
	})).Return(msgID, nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.SendMessage(context.Background(), "apt-100", "pat-1", "hello doctor")

	require.Nil(t, appErr)
	assert.Equal(t, msgID.Hex(), resp.MessageID)
	assert.Equal(t, "hello doctor", resp.Content)
	assert.Equal(t, "Jordan Rivera", resp.SenderName)
	chatRepo.AssertExpectations(t)
}

func TestSendMessage_EmptyContentNeverPersisted(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.SendMessage(context.Background(), "apt-100", "pat-1", "   ")

	assert.Nil(t, resp)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindValidation, appErr.Kind)
	chatRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestSendMessage_NonParticipantNeverPersisted(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.SendMessage(context.Background(), "apt-100", "stranger", "let me in")

	assert.Nil(t, resp)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAuthorization, appErr.Kind)
	chatRepo.AssertNotCalled(t, "InsertMessage", mock.Anything, mock.Anything)
}

func TestSendMessage_PersistFailureReturnsError(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)
	chatRepo.On("InsertMessage", mock.Anything, mock.Anything).
		Return(bson.NilObjectID, app_error.Internal("insert failed", "mongo"))

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.SendMessage(context.Background(), "apt-100", "pat-1", "hello")

	assert.Nil(t, resp)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindInternal, appErr.Kind)
}

func TestGetMessages_MarksThreadRead(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)

	unread := &entity.ChatMessage{
		ID:            bson.NewObjectID(),
		AppointmentID: "apt-100",
		SenderID:      "pat-1",
		SenderRole:    entity.RolePatient,
		ReceiverID:    "doc-1",
		ReceiverRole:  entity.RoleDoctor,
		Content:       "are you there?",
		CreatedAt:     time.Now(),
	}
	own := &entity.ChatMessage{
		ID:            bson.NewObjectID(),
		AppointmentID: "apt-100",
		SenderID:      "doc-1",
		SenderRole:    entity.RoleDoctor,
		ReceiverID:    "pat-1",
		ReceiverRole:  entity.RolePatient,
		Content:       "one moment",
		CreatedAt:     time.Now(),
	}

	chatRepo.On("GetMessages", mock.Anything, "apt-100", 20, (*string)(nil)).
		Return([]*entity.ChatMessage{unread, own}, nil)
	chatRepo.On("MarkAllRead", mock.Anything, "apt-100", "doc-1", mock.Anything).
		Return(int64(1), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.GetMessages(context.Background(), "apt-100", "doc-1", consult_dto.GetMessagesRequest{})

	require.Nil(t, appErr)
	require.Len(t, resp.Messages, 2)
	// the message addressed to the reader comes back read
	assert.True(t, resp.Messages[0].IsRead)
	// the reader's own outgoing message is untouched
	assert.False(t, resp.Messages[1].IsRead)
	chatRepo.AssertExpectations(t)
}

func TestGetMessages_NonParticipantRejected(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	_, appErr := svc.GetMessages(context.Background(), "apt-100", "stranger", consult_dto.GetMessagesRequest{})

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAuthorization, appErr.Kind)
	chatRepo.AssertNotCalled(t, "GetMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkRead_IdempotentOnEmptyThread(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)
	chatRepo.On("MarkAllRead", mock.Anything, "apt-100", "doc-1", mock.Anything).
		Return(int64(0), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	modified, appErr := svc.MarkRead(context.Background(), "apt-100", "doc-1")

	require.Nil(t, appErr)
	assert.Zero(t, modified)

	// a second call behaves identically
	modified, appErr = svc.MarkRead(context.Background(), "apt-100", "doc-1")
	require.Nil(t, appErr)
	assert.Zero(t, modified)
}

func TestUnreadCount_GlobalScopeSkipsSessionLookup(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	chatRepo.On("UnreadCount", mock.Anything, "", "doc-1").Return(int64(3), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	count, appErr := svc.UnreadCount(context.Background(), "", "doc-1")

	require.Nil(t, appErr)
	assert.Equal(t, int64(3), count)
	sessionRepo.AssertNotCalled(t, "FindByAppointmentID", mock.Anything, mock.Anything)
}

type capturingProducer struct {
	jobs []queue.Job
}

func (p *capturingProducer) Enqueue(_ context.Context, job queue.Job) error {
	p.jobs = append(p.jobs, job)
	return nil
}

func TestSendMessage_NotifyJobIsDueImmediately(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	producer := &capturingProducer{}
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)
	chatRepo.On("InsertMessage", mock.Anything, mock.Anything).Return(bson.NewObjectID(), nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	svc.Producer = producer

	before := time.Now().Unix()
	_, appErr := svc.SendMessage(context.Background(), "apt-100", "pat-1", "hello doctor")
	after := time.Now().Unix()

	require.Nil(t, appErr)
	require.Len(t, producer.jobs, 1)

	job := producer.jobs[0]
	assert.Equal(t, queue.JobNotifyUser, job.Type)
	assert.Equal(t, 3, job.MaxRetry)

	// due the moment it is enqueued, with the expiry strictly later as the
	// drop deadline
	assert.GreaterOrEqual(t, job.CreatedAt, before)
	assert.LessOrEqual(t, job.CreatedAt, after)
	assert.Equal(t, job.CreatedAt+300, job.ExpireAt)
}

func TestLatestMessage_NoneYet(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	chatRepo := new(MockChatRepo)
	sessionRepo.On("FindByAppointmentID", mock.Anything, "apt-100").Return(testSession(), nil)
	chatRepo.On("LatestMessage", mock.Anything, "apt-100").Return(nil, nil)

	svc := newTestChatService(sessionRepo, chatRepo)
	resp, appErr := svc.LatestMessage(context.Background(), "apt-100", "doc-1")

	require.Nil(t, appErr)
	assert.Nil(t, resp)
}
