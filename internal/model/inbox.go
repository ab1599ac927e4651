package model

import "time"

// Inbox 时间线分区项（按 user_id 切分）
// 自然键 (user_id, post_id)，写入幂等
type Inbox struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	UserID   string `gorm:"type:varchar(36);index:idx_inbox_user;uniqueIndex:ux_inbox_user_post"`
	PostID   string `gorm:"type:varchar(36);index:idx_inbox_post;uniqueIndex:ux_inbox_user_post"`
	AuthorID string `gorm:"type:varchar(36)"`
	// ux_inbox_user_post = (user_id, post_id)
	Score     int64     `gorm:"index:idx_inbox_user_score"` // post created_at in unixnano
	CreatedAt time.Time `gorm:"index:idx_inbox_user_score"`
}

func (Inbox) TableName() string { return "inbox" }
