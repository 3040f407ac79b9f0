package model

import "time"

type NotificationType string

const (
	NotificationConnectionMessage NotificationType = "connection_message"
	NotificationConnectionEnded   NotificationType = "connection_ended"
	NotificationPurchaseCreated   NotificationType = "purchase_created"
	NotificationPurchaseShipped   NotificationType = "purchase_shipped"
	NotificationPurchaseDelivered NotificationType = "purchase_delivered"
	NotificationPurchaseCanceled  NotificationType = "purchase_canceled"
	NotificationListingAlert      NotificationType = "listing_alert"
	NotificationListingReview     NotificationType = "listing_review"
)

type Notification struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	UserUID      string           `gorm:"column:user_uid;size:128;index;not null"`
	Type         NotificationType `gorm:"column:type;size:64;not null"`
	Title        string           `gorm:"column:title;size:255"`
	Body         string           `gorm:"column:body;type:text"`
	ListingID    *uint64          `gorm:"column:listing_id;index"`
	ConnectionID *uint64          `gorm:"column:connection_id;index"`
	PurchaseID   *uint64          `gorm:"column:purchase_id;index"`
	ReadAt       *time.Time       `gorm:"column:read_at"`
	PushSent     bool             `gorm:"column:push_sent;index;not null;default:false"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// PreferenceMap holds a user's per-type push opt-outs. A type that is not
// present is enabled; only an explicit false suppresses delivery.
type PreferenceMap map[NotificationType]bool

func (m PreferenceMap) Enabled(t NotificationType) bool {
	v, ok := m[t]
	if !ok {
		return true
	}
	return v
}
