package model

import "time"

type PushToken struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Token     string    `gorm:"column:token;size:512;uniqueIndex;not null"`
	UserUID   string    `gorm:"column:user_uid;size:128;index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PushToken) TableName() string {
	return "push_tokens"
}
