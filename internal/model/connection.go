package model

import "time"

type ConnectionStatus string

const (
	ConnectionStatusActive ConnectionStatus = "active"
	ConnectionStatusEnded  ConnectionStatus = "ended"
)

type Connection struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ListingID uint64           `gorm:"column:listing_id;index:idx_listing_buyer,unique" json:"listingId"`
	SellerUID string           `gorm:"column:seller_uid;size:128;index" json:"sellerUid"`
	BuyerUID  string           `gorm:"column:buyer_uid;size:128;index:idx_listing_buyer,unique" json:"buyerUid"`
	Status    ConnectionStatus `gorm:"column:status;size:32;not null;default:active" json:"status"`
	EndedAt   *time.Time       `gorm:"column:ended_at" json:"endedAt,omitempty"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Connection) TableName() string {
	return "connections"
}
