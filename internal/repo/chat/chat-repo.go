package chat_repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/telecare/consult-session/internal/entity"
	app_error "github.com/telecare/consult-session/internal/errors"
	"github.com/telecare/consult-session/state"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	chatDatabase   = "consult_chat"
	chatCollection = "messages"
)

type ChatRepo struct {
	AppState *state.AppState
}

func NewChatRepo(appState *state.AppState) ChatRepoContract {
	return &ChatRepo{
		AppState: appState,
	}
}

func (r *ChatRepo) collection() *mongo.Collection {
	return r.AppState.Mongo.Database(chatDatabase).Collection(chatCollection)
}

func (r *ChatRepo) InsertMessage(ctx context.Context, msg *entity.ChatMessage) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if _, err := r.collection().InsertOne(ctx, msg); err != nil {
		return bson.NilObjectID, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to persist message: %v", err), "mongo")
	}
	return msg.ID, nil
}

func (r *ChatRepo) MarkAllRead(ctx context.Context, appointmentID, readerID string, at time.Time) (int64, *app_error.AppError) {
	filter := bson.M{
		"appointmentId": appointmentID,
		"receiverId":    readerID,
		"isRead":        false,
	}

	res, err := r.collection().UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"isRead": true,
		"readAt": at,
	}})
	if err != nil {
		return 0, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to mark messages as read: %v", err), "mongo")
	}

	return res.ModifiedCount, nil
}

func (r *ChatRepo) UnreadCount(ctx context.Context, appointmentID, readerID string) (int64, *app_error.AppError) {
	filter := bson.M{
		"receiverId": readerID,
		"isRead":     false,
	}
	if appointmentID != "" {
		filter["appointmentId"] = appointmentID
	}

	count, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return 0, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to count unread messages: %v", err), "mongo")
	}

	return count, nil
}

func (r *ChatRepo) GetMessages(ctx context.Context, appointmentID string, limit int, beforeID *string) ([]*entity.ChatMessage, *app_error.AppError) {
	filter := bson.M{"appointmentId": appointmentID}

	// cursor pagination: _id < beforeID walks backwards through history
	if beforeID != nil {
		objID, err := bson.ObjectIDFromHex(*beforeID)
		if err != nil {
			return nil, app_error.Validation(fmt.Sprintf("invalid before_id: %v", err), "before_id")
		}
		filter["_id"] = bson.M{"$lt": objID}
	}

	cur, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch messages: %v", err), "mongo")
	}

	defer cur.Close(ctx)

	var messages []*entity.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to decode messages: %v", err), "mongo")
	}

	// oldest first for the client
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *ChatRepo) LatestMessage(ctx context.Context, appointmentID string) (*entity.ChatMessage, *app_error.AppError) {
	var msg entity.ChatMessage
	err := r.collection().FindOne(ctx, bson.M{"appointmentId": appointmentID},
		options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, app_error.NewAppError(http.StatusInternalServerError, fmt.Sprintf("failed to fetch latest message: %v", err), "mongo")
	}
	return &msg, nil
}
