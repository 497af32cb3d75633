package chat_service

import (
	"context"

	"github.com/telecare/consult-session/internal/dtos/consult_dto"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/internal/websocket"
)

type ChatServiceContract interface {
	// SendMessage validates, persists and fans out one chat message. The
	// receiver is always the appointment's other participant.
	SendMessage(ctx context.Context, appointmentID, senderID, content string) (*consult_dto.ChatMessageResponse, *app_error.AppError)
	// GetMessages returns the thread oldest-first and marks everything
	// addressed to the reader as read (opening the thread means reading it).
	GetMessages(ctx context.Context, appointmentID, readerID string, req consult_dto.GetMessagesRequest) (*consult_dto.GetMessagesResponse, *app_error.AppError)
	MarkRead(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError)
	UnreadCount(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError)
	LatestMessage(ctx context.Context, appointmentID, readerID string) (*consult_dto.ChatMessageResponse, *app_error.AppError)
	// Typing relays a typing indicator to the other room members. Pure
	// broadcast, nothing persisted, best-effort ordering.
	Typing(appointmentID string, sender *websocket.Client, typing bool)
}
