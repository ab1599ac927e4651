package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

// CommentRepository 评论只读访问（feed 拼装用）
type CommentRepository interface {
	// ListTopLevel 返回帖子的顶层评论，时间正序
	ListTopLevel(ctx context.Context, postID string, limit int) ([]*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) ListTopLevel(ctx context.Context, postID string, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at").
		Limit(limit).
		Find(&res).Error
	return res, err
}
