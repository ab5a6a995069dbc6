package message

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
)

type MessageRepo interface {
	Store(ctx context.Context, msg *entity.Message) (*entity.Message, *errors.AppError)
	History(ctx context.Context, groupID, channel string, before *bson.ObjectID, limit int64) ([]entity.Message, *errors.AppError)
	FindByID(ctx context.Context, id bson.ObjectID) (*entity.Message, *errors.AppError)
}
