package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const QueueKey = "consult_jobs"

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis *redis.Client
}

func NewProducer(redis *redis.Client) Producer {
	return &RedisProducer{Redis: redis}
}

func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, QueueKey, redis.Z{
		Score:  readyScore(job),
		Member: jobBytes,
	}).Err()
}

// readyScore is the instant a job becomes visible to the dispatcher, which
// only pops scores <= now. Fresh jobs run immediately; retries re-enter with
// a future score. ExpireAt is the drop deadline checked at handling time and
// never participates in scheduling.
func readyScore(job Job) float64 {
	return float64(job.CreatedAt)
}
