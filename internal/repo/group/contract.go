package group

import (
	"context"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
)

type GroupRepo interface {
	FindGroupByID(ctx context.Context, groupID string) (*entity.Group, *errors.AppError)
	GroupsOf(ctx context.Context, userID string) ([]string, *errors.AppError)
	MembersOf(ctx context.Context, groupID string) ([]string, *errors.AppError)
	IsMember(ctx context.Context, groupID, userID string) (bool, *errors.AppError)
	HasChannel(ctx context.Context, groupID, channel string) (bool, *errors.AppError)
}
