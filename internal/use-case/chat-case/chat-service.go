package chat_service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/queue"
	chat_repo "github.com/telecare/consult-session/internal/repo/chat"
	session_repo "github.com/telecare/consult-session/internal/repo/session"
	"github.com/telecare/consult-session/internal/utils/types"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/state"
)

const defaultPageSize = 20

type ChatService struct {
	SessionRepo session_repo.SessionRepoContract
	ChatRepo    chat_repo.ChatRepoContract
	Hub         *websocket.Hub
	Producer    queue.Producer
}

func NewChatService(appState *state.AppState, hub *websocket.Hub) ChatServiceContract {
	return &ChatService{
		SessionRepo: session_repo.NewSessionRepo(appState),
		ChatRepo:    chat_repo.NewChatRepo(appState),
		Hub:         hub,
		Producer:    queue.NewProducer(appState.Redis),
	}
}

func (c *ChatService) SendMessage(ctx context.Context, appointmentID, senderID, content string) (*consult_dto.ChatMessageResponse, *app_error.AppError) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, app_error.Validation("message body must not be empty", "content")
	}

	session, appErr := c.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}

	senderRole, ok := session.RoleOf(senderID)
	if !ok {
		return nil, app_error.Authorization("sender is not a participant of this consultation")
	}
	receiverID, receiverRole := session.Counterpart(senderID)

	msg := &entity.ChatMessage{
		AppointmentID: appointmentID,
		SenderID:      senderID,
		SenderRole:    senderRole,
		ReceiverID:    receiverID,
		ReceiverRole:  receiverRole,
		Content:       content,
		IsRead:        false,
		CreatedAt:     time.Now(),
	}

	// persist first: a message that failed to store is never broadcast
	msgID, appErr := c.ChatRepo.InsertMessage(ctx, msg)
	if appErr != nil {
		return nil, appErr
	}

	resp := messageResponse(msg, session)
	resp.MessageID = msgID.Hex()

	if c.Hub != nil {
		c.Hub.BroadcastToRoom(appointmentID, websocket.OutgoingEvent{
			Event: websocket.EventReceiveMessage,
			Data:  resp,
		})
	}

	c.enqueueNotify(ctx, resp)

	return &resp, nil
}

func (c *ChatService) GetMessages(ctx context.Context, appointmentID, readerID string, req consult_dto.GetMessagesRequest) (*consult_dto.GetMessagesResponse, *app_error.AppError) {
	session, appErr := c.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}
	if _, ok := session.RoleOf(readerID); !ok {
		return nil, app_error.Authorization("reader is not a participant of this consultation")
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultPageSize
	}

	messages, appErr := c.ChatRepo.GetMessages(ctx, appointmentID, limit, req.BeforeID)
	if appErr != nil {
		return nil, appErr
	}

	// opening the thread reads it
	if _, appErr := c.markReadAndNotify(ctx, session, readerID); appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	respMessages := make([]consult_dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		r := messageResponse(msg, session)
		if msg.ReceiverID == readerID && !msg.IsRead {
			r.IsRead = true
			r.ReadAt = &now
		}
		respMessages = append(respMessages, r)
	}

	var nextCursor *string
	if len(messages) > 0 {
		firstID := messages[0].ID.Hex()
		nextCursor = &firstID
	}

	return &consult_dto.GetMessagesResponse{
		Messages:   respMessages,
		NextCursor: nextCursor,
		HasMore:    len(messages) == limit,
	}, nil
}

func (c *ChatService) MarkRead(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError) {
	session, appErr := c.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return 0, appErr
	}
	if _, ok := session.RoleOf(readerID); !ok {
		return 0, app_error.Authorization("reader is not a participant of this consultation")
	}

	return c.markReadAndNotify(ctx, session, readerID)
}

func (c *ChatService) markReadAndNotify(ctx context.Context, session *entity.ConsultationSession, readerID string) (int64, *app_error.AppError) {
	modified, appErr := c.ChatRepo.MarkAllRead(ctx, session.AppointmentID, readerID, time.Now())
	if appErr != nil {
		return 0, appErr
	}

	// only tell the room when something actually changed
	if modified > 0 && c.Hub != nil {
		c.Hub.BroadcastToRoom(session.AppointmentID, websocket.OutgoingEvent{
			Event: websocket.EventMessagesRead,
			Data: map[string]any{
				"reader_id": readerID,
				"count":     modified,
			},
		})
	}

	return modified, nil
}

func (c *ChatService) UnreadCount(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError) {
	if appointmentID != "" {
		session, appErr := c.SessionRepo.FindByAppointmentID(ctx, appointmentID)
		if appErr != nil {
			return 0, appErr
		}
		if _, ok := session.RoleOf(readerID); !ok {
			return 0, app_error.Authorization("reader is not a participant of this consultation")
		}
	}

	return c.ChatRepo.UnreadCount(ctx, appointmentID, readerID)
}

func (c *ChatService) LatestMessage(ctx context.Context, appointmentID, readerID string) (*consult_dto.ChatMessageResponse, *app_error.AppError) {
	session, appErr := c.SessionRepo.FindByAppointmentID(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}
	if _, ok := session.RoleOf(readerID); !ok {
		return nil, app_error.Authorization("reader is not a participant of this consultation")
	}

	msg, appErr := c.ChatRepo.LatestMessage(ctx, appointmentID)
	if appErr != nil {
		return nil, appErr
	}
	if msg == nil {
		return nil, nil
	}

	resp := messageResponse(msg, session)
	return &resp, nil
}

func (c *ChatService) Typing(appointmentID string, sender *websocket.Client, typing bool) {
	if c.Hub == nil {
		return
	}

	event := websocket.EventTyping
	if !typing {
		event = websocket.EventStopTyping
	}

	c.Hub.BroadcastToRoomExcept(appointmentID, websocket.OutgoingEvent{
		Event: event,
		Data: map[string]any{
			"user_id": sender.UserID,
			"name":    sender.DisplayName,
		},
	}, sender)
}

func (c *ChatService) enqueueNotify(ctx context.Context, msg consult_dto.ChatMessageResponse) {
	if c.Producer == nil {
		return
	}

	now := time.Now()
	job := queue.Job{
		ID:   uuid.New().String(),
		Type: queue.JobNotifyUser,
		Payload: queue.MustMarshal(types.NotifyUserPayload{
			MessageID:     msg.MessageID,
			AppointmentID: msg.AppointmentID,
			SenderID:      msg.SenderID,
			SenderRole:    msg.SenderRole,
			SenderName:    msg.SenderName,
			ReceiverID:    msg.ReceiverID,
			Content:       msg.Content,
			CreatedAt:     msg.CreatedAt,
		}),
		MaxRetry:  3,
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(5 * time.Minute).Unix(),
	}

	if err := c.Producer.Enqueue(ctx, job); err != nil {
		// delivery to the room already happened, this is best-effort
		log.Warn().Err(err).Str("appointmentID", msg.AppointmentID).Msg("failed to enqueue notify job")
	}
}

func messageResponse(msg *entity.ChatMessage, session *entity.ConsultationSession) consult_dto.ChatMessageResponse {
	return consult_dto.ChatMessageResponse{
		MessageID:     msg.ID.Hex(),
		AppointmentID: msg.AppointmentID,
		SenderID:      msg.SenderID,
		SenderRole:    string(msg.SenderRole),
		SenderName:    session.DisplayNameOf(msg.SenderID),
		ReceiverID:    msg.ReceiverID,
		ReceiverRole:  string(msg.ReceiverRole),
		Content:       msg.Content,
		IsRead:        msg.IsRead,
		ReadAt:        msg.ReadAt,
		CreatedAt:     msg.CreatedAt,
	}
}
