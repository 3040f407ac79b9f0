package model

import "time"

// NotificationPushPreference stores the per-type opt-out map as a JSON text
// column; decoding to PreferenceMap happens at the repository boundary.
type NotificationPushPreference struct {
	UserUID   string    `gorm:"column:user_uid;size:128;primaryKey"`
	Prefs     string    `gorm:"column:prefs;type:text"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (NotificationPushPreference) TableName() string {
	return "notification_push_preferences"
}
