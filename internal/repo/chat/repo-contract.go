package chat_repo

import (
	"context"
	"time"

	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ChatRepoContract interface {
	InsertMessage(ctx context.Context, msg *entity.ChatMessage) (bson.ObjectID, *app_error.AppError)
	// MarkAllRead flips every unread message addressed to readerID in the
	// appointment thread. Returns how many were updated; zero is a no-op.
	MarkAllRead(ctx context.Context, appointmentID, readerID string, at time.Time) (int64, *app_error.AppError)
	// UnreadCount counts unread messages addressed to readerID, across all
	// appointments when appointmentID is empty.
	UnreadCount(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError)
	GetMessages(ctx context.Context, appointmentID string, limit int, beforeID *string) ([]*entity.ChatMessage, *app_error.AppError)
	LatestMessage(ctx context.Context, appointmentID string) (*entity.ChatMessage, *app_error.AppError)
}
