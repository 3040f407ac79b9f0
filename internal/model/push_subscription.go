package model

import "time"

type PushSubscription struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Endpoint  string    `gorm:"column:endpoint;size:512;uniqueIndex;not null"`
	P256dh    string    `gorm:"column:p256dh;size:255;not null"`
	Auth      string    `gorm:"column:auth;size:255;not null"`
	UserUID   string    `gorm:"column:user_uid;size:128;index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
