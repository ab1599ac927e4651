package model

import "time"

// User 用户资料（profile 存储，只做 upsert，不删除）
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Username  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string `gorm:"type:varchar(128);uniqueIndex;not null"`
	Password  string `gorm:"type:varchar(128);not null"` // bcrypt hash
	Age       int
	Bio       string `gorm:"type:text"`
	AvatarURL string `gorm:"type:varchar(512)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
