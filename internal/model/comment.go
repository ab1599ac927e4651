package model

import "time"

// Comment 评论，核心只读（feed 展示拼装用）
type Comment struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	PostID    string  `gorm:"type:varchar(36);index:idx_comment_post"`
	AuthorID  string  `gorm:"type:varchar(36)"`
	ParentID  *string `gorm:"type:varchar(36);index"` // nil = top-level
	Content   string  `gorm:"type:text"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "comments" }
