package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Profile struct {
	UID         string    `gorm:"column:uid;size:128;primaryKey"`
	DisplayName string    `gorm:"column:display_name;size:120"`
	Role        Role      `gorm:"column:role;size:32;not null;default:user"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}
