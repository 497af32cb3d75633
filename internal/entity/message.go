package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ChatMessage lives in MongoDB, many per appointment. Sender and receiver are
// always the complementary doctor/patient pair of the session.
type ChatMessage struct {
	ID            bson.ObjectID   `bson:"_id,omitempty"`
	AppointmentID string          `bson:"appointmentId"`
	SenderID      string          `bson:"senderId"`
	SenderRole    ParticipantRole `bson:"senderRole"`
	ReceiverID    string          `bson:"receiverId"`
	ReceiverRole  ParticipantRole `bson:"receiverRole"`
	Content       string          `bson:"content"`
	IsRead        bool            `bson:"isRead"`
	ReadAt        *time.Time      `bson:"readAt,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt"`
}
