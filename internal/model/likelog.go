package model

import "time"

// LikeLog 点赞落盘影子日志，计数重建的事实来源
// 自然键 (post_id, actor_id)
type LikeLog struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);index:idx_likelog_post;uniqueIndex:ux_likelog_post_actor"`
	ActorID   string `gorm:"type:varchar(36);uniqueIndex:ux_likelog_post_actor"`
	CreatedAt time.Time
}

func (LikeLog) TableName() string { return "like_log" }
