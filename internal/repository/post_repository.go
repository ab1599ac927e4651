package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = gorm.ErrRecordNotFound

// PostRepository 帖子主存储 + 作者维度有序索引
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// ListByAuthor is the per-author index: newest first, post id as the
	// deterministic tie-break.
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}
