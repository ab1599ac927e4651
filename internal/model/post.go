package model

import "time"

// Post 内容主体，创建后不可变
// ID 使用 UUIDv7，按时间可排序
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author_created"`
	Caption   string    `gorm:"type:text"`
	MediaURL  string    `gorm:"type:varchar(512)"` // opaque reference, storage out of scope
	CreatedAt time.Time `gorm:"index:idx_post_author_created"`
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }
