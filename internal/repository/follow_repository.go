package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

// FollowRepository 关注边的权威存储（durable replica）
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	// ListFollowees returns ids the user follows, oldest edge first.
	ListFollowees(ctx context.Context, followerID string, limit int) ([]string, error)
	// ListFollowers filters edges by followee, i.e. who follows the user.
	ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]string, error)
	// ListBySources returns all edges whose follower is in sources; feeds
	// the in-memory two-hop suggestion fallback.
	ListBySources(ctx context.Context, sources []string) ([]*model.Follow, error)
	CountFollowers(ctx context.Context, followeeID string) (int64, error)
	CountFollowees(ctx context.Context, followerID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}
	// 幂等：重复关注不报错
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowees(ctx context.Context, followerID string, limit int) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Order("created_at").
		Select("followee_id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ids []string
	err := q.Scan(&ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followeeID string, offset, limit int) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followee_id = ?", followeeID).
		Order("created_at").
		Select("follower_id").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var ids []string
	err := q.Scan(&ids).Error
	return ids, err
}

func (r *followRepository) ListBySources(ctx context.Context, sources []string) ([]*model.Follow, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	var res []*model.Follow
	err := r.db.WithContext(ctx).Where("follower_id IN ?", sources).Find(&res).Error
	return res, err
}

func (r *followRepository) CountFollowers(ctx context.Context, followeeID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("followee_id = ?", followeeID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowees(ctx context.Context, followerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", followerID).Count(&cnt).Error
	return cnt, err
}
