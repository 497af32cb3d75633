package worker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/telecare/consult-session/internal/queue"
	"github.com/telecare/consult-session/internal/websocket"
	worker_handler "github.com/telecare/consult-session/internal/worker/worker-handler"
)

func HandleJob(ctx context.Context, job queue.Job, redis *redis.Client, ws *websocket.Hub) error {
	workerHandler := worker_handler.NewWorkerHandler(ctx, redis, ws)
	switch job.Type {
	case queue.JobNotifyUser:
		return workerHandler.HandleNotifyUser(job.Payload)
	case queue.JobConsultationEnded:
		return workerHandler.HandleConsultationEnded(job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
