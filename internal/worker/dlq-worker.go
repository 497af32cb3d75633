package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/telecare/consult-session/internal/entity"
	"github.com/telecare/consult-session/internal/queue"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// StartDLQWorker drains permanently failed jobs into MongoDB so they survive
// a redis flush and can be inspected later.
func (wp *WorkerPool) StartDLQWorker(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("DLQ worker stopping")
				return
			default:
				result, err := wp.Redis.BLPop(ctx, 10*time.Second, dlqKey).Result()
				if err == redis.Nil {
					continue
				} else if err != nil {
					log.Error().Err(err).Msg("DLQWorker pop failed")
					continue
				}

				payload := result[1]
				var job queue.Job
				if err := json.Unmarshal([]byte(payload), &job); err != nil {
					log.Warn().Err(err).Msg("DLQWorker invalid job payload")
					continue
				}

				log.Error().
					Str("job_id", job.ID).
					Str("type", job.Type).
					Str("error", job.ErrorMsg).
					Msg("DLQ job detected")

				wp.parkJob(ctx, job)
			}
		}
	}()
}

func (wp *WorkerPool) parkJob(ctx context.Context, job queue.Job) {
	if wp.Mongo == nil {
		return
	}

	doc := entity.DLQJob{
		ID:         bson.NewObjectID(),
		JobID:      job.ID,
		Type:       job.Type,
		Payload:    job.Payload,
		Status:     "failed",
		RetryCount: job.Retry,
		ErrorMsg:   job.ErrorMsg,
		CreatedAt:  time.Unix(job.CreatedAt, 0),
		ExpireAt:   time.Unix(job.ExpireAt, 0),
	}

	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	coll := wp.Mongo.Database("consult_chat").Collection("dlq_jobs")
	if _, err := coll.InsertOne(insertCtx, doc); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("DLQWorker failed to park job")
	}
}
