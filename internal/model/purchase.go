package model

import "time"

type PurchaseStatus string

const (
	PurchaseStatusPendingShipment PurchaseStatus = "pending_shipment"
	PurchaseStatusShipped         PurchaseStatus = "shipped"
	PurchaseStatusDelivered       PurchaseStatus = "delivered"
	PurchaseStatusCanceled        PurchaseStatus = "canceled"
)

type Purchase struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement"`
	ListingID    uint64         `gorm:"column:listing_id;index;not null"`
	BuyerUID     string         `gorm:"column:buyer_uid;size:128;index;not null"`
	SellerUID    string         `gorm:"column:seller_uid;size:128;index;not null"`
	ConnectionID uint64         `gorm:"column:connection_id;index"`
	Status       PurchaseStatus `gorm:"column:status;size:32;not null"`
	PaidCents    int64          `gorm:"column:paid_cents"`
	ShippedAt    *time.Time     `gorm:"column:shipped_at"`
	DeliveredAt  *time.Time     `gorm:"column:delivered_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (Purchase) TableName() string {
	return "purchases"
}
