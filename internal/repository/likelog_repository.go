package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

// LikeLogRepository 点赞影子日志，离线重建计数的依据
type LikeLogRepository interface {
	Append(ctx context.Context, postID, actorID string) error
	Delete(ctx context.Context, postID, actorID string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
	// DistinctPosts lists every post id present in the log (rebuild scan).
	DistinctPosts(ctx context.Context) ([]string, error)
}

type likeLogRepository struct{ db *gorm.DB }

func NewLikeLogRepository(db *gorm.DB) LikeLogRepository { return &likeLogRepository{db: db} }

func (r *likeLogRepository) Append(ctx context.Context, postID, actorID string) error {
	rec := &model.LikeLog{ID: uuid.New().String(), PostID: postID, ActorID: actorID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
}

func (r *likeLogRepository) Delete(ctx context.Context, postID, actorID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND actor_id = ?", postID, actorID).
		Delete(&model.LikeLog{}).Error
}

func (r *likeLogRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.LikeLog{}).Where("post_id = ?", postID).Count(&cnt).Error
	return cnt, err
}

func (r *likeLogRepository) DistinctPosts(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.LikeLog{}).Distinct("post_id").Pluck("post_id", &ids).Error
	return ids, err
}
