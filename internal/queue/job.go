package queue

import (
	"time"

	"github.com/google/uuid"
)

const (
	QueueKey = "priority_queue"
	DLQKey   = "priority_queue_dlq"
)

// Job types handled by the worker pool.
const (
	JobNotifyOffline = "notify_offline"
)

// Priorities order jobs within the queue. Lower score pops first.
const (
	PriorityHigh = 1
	PriorityMid  = 2
	PriorityLow  = 3
)

type Job struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
	Priority  int    `json:"priority"`
	Retry     int    `json:"retry"`
	CreatedAt int64  `json:"created_at"`
}

func NewJob(jobType, payload string, priority int) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		Priority:  priority,
		CreatedAt: time.Now().Unix(),
	}
}

// Score ranks by priority first, arrival time second.
func (j *Job) Score() float64 {
	return float64(j.Priority)*1e10 + float64(j.CreatedAt)
}
