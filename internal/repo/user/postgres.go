package user

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) FindUserByID(ctx context.Context, id string) (*entity.User, *errors.AppError) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user not found", err)
		}
		return nil, errors.Internal("failed to load user", err)
	}
	return &user, nil
}

// FindUserByCredential resolves a login identifier that may be either a
// username or an email.
func (r *userRepo) FindUserByCredential(ctx context.Context, credential string) (*entity.User, *errors.AppError) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", credential, credential).
		First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user not found", err)
		}
		return nil, errors.Internal("failed to load user", err)
	}
	return &user, nil
}

func (r *userRepo) SetStatus(ctx context.Context, userID, status string, lastSeen time.Time) *errors.AppError {
	err := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"status": status, "last_seen": lastSeen}).Error
	if err != nil {
		return errors.Internal("failed to update user status", err)
	}
	return nil
}
