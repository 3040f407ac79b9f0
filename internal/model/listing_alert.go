package model

import "time"

// ListingAlertPreference is a saved search; nil filter fields match any
// listing. One row per user.
type ListingAlertPreference struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	UserUID     string     `gorm:"column:user_uid;size:128;uniqueIndex;not null"`
	Continent   *string    `gorm:"column:continent;size:64"`
	City        *string    `gorm:"column:city;size:120"`
	ListingType *string    `gorm:"column:listing_type;size:32"`
	ConcertDate *time.Time `gorm:"column:concert_date"`
	Enabled     bool       `gorm:"column:enabled;not null;default:true"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (ListingAlertPreference) TableName() string {
	return "listing_alert_preferences"
}

// ListingAlertSent is the sent-log keeping a listing from being alerted to
// the same user twice across job runs.
type ListingAlertSent struct {
	ListingID uint64    `gorm:"column:listing_id;primaryKey"`
	UserUID   string    `gorm:"column:user_uid;size:128;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ListingAlertSent) TableName() string {
	return "listing_alerts_sent"
}
