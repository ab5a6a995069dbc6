package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// DeadJob archives a queue job that exhausted its retries.
type DeadJob struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	JobID      string        `bson:"job_id" json:"job_id"`
	Type       string        `bson:"type" json:"type"`
	Payload    string        `bson:"payload" json:"payload"`
	Retry      int           `bson:"retry" json:"retry"`
	LastError  string        `bson:"last_error" json:"last_error"`
	ArchivedAt time.Time     `bson:"archived_at" json:"archived_at"`
}
