package model

type UserRevenue struct {
	UID          string `gorm:"column:uid;size:128;primaryKey"`
	RevenueCents int64  `gorm:"column:revenue_cents;not null;default:0"`
}

func (UserRevenue) TableName() string {
	return "user_revenues"
}
