package user_case

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/dtos/user_dto"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/repo/user"
	"github.com/Saff9/campus-connect/internal/types"
	"github.com/Saff9/campus-connect/internal/utils"
)

const sessionTTL = 7 * 24 * time.Hour

type userService struct {
	users      user.UserRepo
	rdb        *redis.Client
	privateKey *rsa.PrivateKey
	validate   *validator.Validate
}

func NewUserService(users user.UserRepo, rdb *redis.Client, privateKey *rsa.PrivateKey, validate *validator.Validate) UserService {
	return &userService{
		users:      users,
		rdb:        rdb,
		privateKey: privateKey,
		validate:   validate,
	}
}

func (s *userService) Login(ctx context.Context, req *user_dto.LoginRequest) (*user_dto.AuthResponse, *errors.AppError) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.BadRequest("invalid login request", err)
	}

	account, appErr := s.users.FindUserByCredential(ctx, req.Credential)
	if appErr != nil {
		// same response for unknown user and bad password
		return nil, errors.Unauthorized("invalid credentials", appErr.Err)
	}
	if !account.IsActive {
		return nil, errors.Forbidden("account is disabled", nil)
	}
	if err := utils.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		return nil, errors.Unauthorized("invalid credentials", err)
	}

	tokens, err := utils.IssueNewTokens(s.privateKey, account.ID, account.Username)
	if err != nil {
		return nil, errors.Internal("failed to issue tokens", err)
	}

	session := types.Session{
		UserID:     account.ID,
		Username:   account.Username,
		AccessJti:  tokens.AccessJti,
		RefreshJti: tokens.RefreshJti,
		LoginAt:    time.Now(),
	}
	if err := utils.SetCacheData(ctx, s.rdb, "session:"+account.ID, session, sessionTTL); err != nil {
		return nil, errors.Internal("failed to create session", err)
	}

	log.Info().Str("userID", account.ID).Str("username", account.Username).Msg("user logged in")
	return &user_dto.AuthResponse{
		UserID:       account.ID,
		Username:     account.Username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *userService) Logout(ctx context.Context, userID string) *errors.AppError {
	if err := utils.DeleteCacheData(ctx, s.rdb, "session:"+userID); err != nil {
		return errors.Internal("failed to clear session", err)
	}
	return nil
}
