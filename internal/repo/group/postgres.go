package group

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/utils"
)

const membershipCacheTTL = 5 * time.Minute

type groupRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewGroupRepo(db *gorm.DB, rdb *redis.Client) GroupRepo {
	return &groupRepo{db: db, rdb: rdb}
}

func (r *groupRepo) FindGroupByID(ctx context.Context, groupID string) (*entity.Group, *errors.AppError) {
	var group entity.Group
	err := r.db.WithContext(ctx).
		Preload("Channels").
		Where("id = ?", groupID).
		First(&group).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("group not found", err)
		}
		return nil, errors.Internal("failed to load group", err)
	}
	return &group, nil
}

// GroupsOf returns the ids of every group the user belongs to. Results are
// cached because the broadcaster hits this on every presence transition.
func (r *groupRepo) GroupsOf(ctx context.Context, userID string) ([]string, *errors.AppError) {
	cacheKey := "groups_of:" + userID
	if cached, err := utils.GetCacheData[[]string](ctx, r.rdb, cacheKey); err == nil {
		return *cached, nil
	} else if err != redis.Nil {
		log.Warn().Err(err).Str("userID", userID).Msg("group cache lookup failed")
	}

	var groupIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error
	if err != nil {
		return nil, errors.Internal("failed to load user groups", err)
	}

	if err := utils.SetCacheData(ctx, r.rdb, cacheKey, groupIDs, membershipCacheTTL); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("failed to cache user groups")
	}
	return groupIDs, nil
}

func (r *groupRepo) MembersOf(ctx context.Context, groupID string) ([]string, *errors.AppError) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, errors.Internal("failed to load group members", err)
	}
	return userIDs, nil
}

func (r *groupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, *errors.AppError) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.Internal("failed to check membership", err)
	}
	return count > 0, nil
}

func (r *groupRepo) HasChannel(ctx context.Context, groupID, channel string) (bool, *errors.AppError) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.GroupChannel{}).
		Where("group_id = ? AND name = ?", groupID, channel).
		Count(&count).Error
	if err != nil {
		return false, errors.Internal("failed to check channel", err)
	}
	return count > 0, nil
}
