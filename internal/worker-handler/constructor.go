package worker_handler

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/Saff9/campus-connect/internal/queue"
	"github.com/Saff9/campus-connect/internal/repo/user"
	worker_service "github.com/Saff9/campus-connect/internal/worker-service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler dispatches queue jobs to their implementations.
type Handler struct {
	rdb    *redis.Client
	users  user.UserRepo
	mailer *worker_service.Mailer
}

func NewHandler(rdb *redis.Client, users user.UserRepo, mailer *worker_service.Mailer) *Handler {
	return &Handler{rdb: rdb, users: users, mailer: mailer}
}

func (h *Handler) HandleJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobNotifyOffline:
		return h.NotifyOffline(ctx, job)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}
