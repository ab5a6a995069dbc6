package user

import (
	"context"
	"time"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
)

type UserRepo interface {
	FindUserByID(ctx context.Context, id string) (*entity.User, *errors.AppError)
	FindUserByCredential(ctx context.Context, credential string) (*entity.User, *errors.AppError)
	SetStatus(ctx context.Context, userID, status string, lastSeen time.Time) *errors.AppError
}
