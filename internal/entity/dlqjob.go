package entity

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DLQJob is a permanently failed background job, parked in MongoDB for audit.
type DLQJob struct {
	ID         bson.ObjectID   `bson:"_id,omitempty"`
	JobID      string          `bson:"job_id"`
	Type       string          `bson:"type"`
	Payload    json.RawMessage `bson:"payload"`
	Status     string          `bson:"status"`
	RetryCount int             `bson:"retry_count"`
	ErrorMsg   string          `bson:"error_msg"`
	CreatedAt  time.Time       `bson:"created_at"`
	ExpireAt   time.Time       `bson:"expire_at"`
}
