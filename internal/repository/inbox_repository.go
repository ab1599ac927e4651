package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

// InboxRepository 时间线分区存储
// 所有写入在 (user_id, post_id) 上幂等，冲突即成功
type InboxRepository interface {
	Append(ctx context.Context, entry *model.Inbox) error
	AppendBatch(ctx context.Context, entries []model.Inbox) error
	// Scan 按分区序返回：score（帖子时间）倒序，post_id 正序
	Scan(ctx context.Context, userID string, limit int) ([]*model.Inbox, error)
	Count(ctx context.Context, userID string) (int64, error)
}

type inboxRepository struct{ db *gorm.DB }

func NewInboxRepository(db *gorm.DB) InboxRepository { return &inboxRepository{db: db} }

func (r *inboxRepository) Append(ctx context.Context, entry *model.Inbox) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

func (r *inboxRepository) AppendBatch(ctx context.Context, entries []model.Inbox) error {
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.New().String()
		}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error
}

func (r *inboxRepository) Scan(ctx context.Context, userID string, limit int) ([]*model.Inbox, error) {
	var res []*model.Inbox
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score DESC, post_id ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *inboxRepository) Count(ctx context.Context, userID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Inbox{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}
