package user_case

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saff9/campus-connect/internal/dtos/user_dto"
	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/utils"
)

type fakeUsers struct {
	byCredential map[string]*entity.User
}

func (f *fakeUsers) FindUserByID(_ context.Context, id string) (*entity.User, *errors.AppError) {
	for _, u := range f.byCredential {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.NotFound("user not found", nil)
}

func (f *fakeUsers) FindUserByCredential(_ context.Context, credential string) (*entity.User, *errors.AppError) {
	if u, ok := f.byCredential[credential]; ok {
		return u, nil
	}
	return nil, errors.NotFound("user not found", nil)
}

func (f *fakeUsers) SetStatus(_ context.Context, userID, status string, lastSeen time.Time) *errors.AppError {
	return nil
}

func setupUserService(t *testing.T) (UserService, *rsa.PrivateKey, *redis.Client) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hash, err := utils.HashPassword("hunter22hunter22")
	require.NoError(t, err)

	active := &entity.User{ID: "user-1", Username: "alice", Email: "alice@campus.test", PasswordHash: hash, IsActive: true}
	disabled := &entity.User{ID: "user-2", Username: "mallory", PasswordHash: hash, IsActive: false}
	repo := &fakeUsers{byCredential: map[string]*entity.User{
		"alice":             active,
		"alice@campus.test": active,
		"mallory":           disabled,
	}}

	return NewUserService(repo, rdb, key, validator.New()), key, rdb
}

func TestLoginCreatesSessionAndTokens(t *testing.T) {
	service, key, rdb := setupUserService(t)

	auth, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "alice",
		Password:   "hunter22hunter22",
	})
	require.Nil(t, appErr)
	assert.Equal(t, "user-1", auth.UserID)

	claims, err := utils.ParseAndVerifySign(auth.AccessToken, &key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)

	exists, err := rdb.Exists(context.Background(), "session:user-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestLoginByEmail(t *testing.T) {
	service, _, _ := setupUserService(t)

	auth, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "alice@campus.test",
		Password:   "hunter22hunter22",
	})
	require.Nil(t, appErr)
	assert.Equal(t, "alice", auth.Username)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	service, _, rdb := setupUserService(t)

	_, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "alice",
		Password:   "wrong password",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, 401, appErr.Code)

	exists, err := rdb.Exists(context.Background(), "session:user-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestLoginUnknownUserLooksLikeBadPassword(t *testing.T) {
	service, _, _ := setupUserService(t)

	_, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "nobody",
		Password:   "hunter22hunter22",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, 401, appErr.Code)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	service, _, _ := setupUserService(t)

	_, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "mallory",
		Password:   "hunter22hunter22",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	service, _, rdb := setupUserService(t)

	_, appErr := service.Login(context.Background(), &user_dto.LoginRequest{
		Credential: "alice",
		Password:   "hunter22hunter22",
	})
	require.Nil(t, appErr)

	require.Nil(t, service.Logout(context.Background(), "user-1"))

	exists, err := rdb.Exists(context.Background(), "session:user-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
