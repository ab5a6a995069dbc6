package user_case

import (
	"context"

	"github.com/Saff9/campus-connect/internal/dtos/user_dto"
	"github.com/Saff9/campus-connect/internal/errors"
)

type UserService interface {
	Login(ctx context.Context, req *user_dto.LoginRequest) (*user_dto.AuthResponse, *errors.AppError)
	Logout(ctx context.Context, userID string) *errors.AppError
}
