package message

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
)

type messageRepo struct {
	coll *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{coll: db.Collection("messages")}
}

func (r *messageRepo) Store(ctx context.Context, msg *entity.Message) (*entity.Message, *errors.AppError) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, errors.Internal("failed to store message", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		msg.ID = oid
	}
	return msg, nil
}

// History pages backwards from the cursor, returning newest first.
func (r *messageRepo) History(ctx context.Context, groupID, channel string, before *bson.ObjectID, limit int64) ([]entity.Message, *errors.AppError) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{"group_id": groupID, "channel": channel}
	if before != nil {
		filter["_id"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Internal("failed to query message history", err)
	}
	defer cursor.Close(ctx)

	messages := make([]entity.Message, 0, limit)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Internal("failed to decode message history", err)
	}
	return messages, nil
}

func (r *messageRepo) FindByID(ctx context.Context, id bson.ObjectID) (*entity.Message, *errors.AppError) {
	var msg entity.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NewAppError(http.StatusNotFound, "message not found", err)
		}
		return nil, errors.Internal("failed to load message", err)
	}
	return &msg, nil
}
