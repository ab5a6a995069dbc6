package worker

import (
	"context"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/queue"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	pollInterval   = time.Second
	maxRetry       = 3
	baseRetryDelay = 5 * time.Second
)

type JobHandler interface {
	HandleJob(ctx context.Context, job *queue.Job) error
}

// Pool pops jobs off the redis priority queue and runs them through the
// handler. Jobs that keep failing land on the DLQ list.
type Pool struct {
	rdb     *redis.Client
	handler JobHandler
	workers int

	wg sync.WaitGroup
}

func NewPool(rdb *redis.Client, handler JobHandler, workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{rdb: rdb, handler: handler, workers: workers}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.workers).Msg("worker pool started")
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entries, err := p.rdb.ZPopMin(ctx, queue.QueueKey, 1).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", id).Msg("failed to pop job")
			sleepCtx(ctx, pollInterval)
			continue
		}
		if len(entries) == 0 {
			sleepCtx(ctx, pollInterval)
			continue
		}

		raw, ok := entries[0].Member.(string)
		if !ok {
			continue
		}

		var job queue.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Err(err).Int("worker", id).Msg("discarding undecodable job")
			continue
		}

		if err := p.handler.HandleJob(ctx, &job); err != nil {
			p.requeueOrBury(ctx, &job, err)
			continue
		}
		log.Debug().Str("jobID", job.ID).Str("type", job.Type).Int("worker", id).Msg("job completed")
	}
}

func (p *Pool) requeueOrBury(ctx context.Context, job *queue.Job, cause error) {
	job.Retry++
	if job.Retry > maxRetry {
		log.Error().Err(cause).Str("jobID", job.ID).Int("retry", job.Retry).Msg("job exhausted retries, moving to dlq")
		raw, err := json.Marshal(job)
		if err != nil {
			return
		}
		if err := p.rdb.RPush(ctx, queue.DLQKey, raw).Err(); err != nil {
			log.Error().Err(err).Str("jobID", job.ID).Msg("failed to push job to dlq")
		}
		return
	}

	delay := baseRetryDelay * time.Duration(1<<(job.Retry-1))
	log.Warn().Err(cause).Str("jobID", job.ID).Int("retry", job.Retry).Dur("delay", delay).Msg("job failed, scheduling retry")

	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	time.AfterFunc(delay, func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.rdb.ZAdd(rctx, queue.QueueKey, redis.Z{Score: job.Score(), Member: raw}).Err(); err != nil {
			log.Error().Err(err).Str("jobID", job.ID).Msg("failed to requeue job")
		}
	})
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
