package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/queue"
)

const dlqPollInterval = 10 * time.Second

// DLQWorker drains dead jobs into mongo so the redis list stays bounded
// and failures remain inspectable.
type DLQWorker struct {
	rdb  *redis.Client
	coll *mongo.Collection
}

func NewDLQWorker(rdb *redis.Client, db *mongo.Database) *DLQWorker {
	return &DLQWorker{rdb: rdb, coll: db.Collection("dead_jobs")}
}

func (w *DLQWorker) Start(ctx context.Context) {
	go w.run(ctx)
	log.Info().Msg("dlq worker started")
}

func (w *DLQWorker) run(ctx context.Context) {
	ticker := time.NewTicker(dlqPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *DLQWorker) drain(ctx context.Context) {
	for {
		raw, err := w.rdb.LPop(ctx, queue.DLQKey).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to pop dead job")
			return
		}

		var job queue.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Err(err).Msg("discarding undecodable dead job")
			continue
		}

		doc := entity.DeadJob{
			JobID:      job.ID,
			Type:       job.Type,
			Payload:    job.Payload,
			Retry:      job.Retry,
			ArchivedAt: time.Now(),
		}
		if _, err := w.coll.InsertOne(ctx, doc); err != nil {
			log.Error().Err(err).Str("jobID", job.ID).Msg("failed to archive dead job, pushing back")
			if pushErr := w.rdb.RPush(ctx, queue.DLQKey, raw).Err(); pushErr != nil {
				log.Error().Err(pushErr).Str("jobID", job.ID).Msg("failed to restore dead job")
			}
			return
		}
		log.Info().Str("jobID", job.ID).Str("type", job.Type).Msg("dead job archived")
	}
}
