package model

import "time"

type ListingStatus string

const (
	ListingStatusProcessing ListingStatus = "processing"
	ListingStatusActive     ListingStatus = "active"
	ListingStatusLocked     ListingStatus = "locked"
	ListingStatusSold       ListingStatus = "sold"
	ListingStatusRemoved    ListingStatus = "removed"
)

type ListingType string

const (
	ListingTypeStandard ListingType = "standard"
	ListingTypeVIP      ListingType = "vip"
	ListingTypeLoge     ListingType = "loge"
	ListingTypeSuite    ListingType = "suite"
)

type Listing struct {
	ID              uint64        `gorm:"primaryKey;autoIncrement"`
	SellerUID       string        `gorm:"column:seller_uid;size:128;index;not null"`
	Title           string        `gorm:"size:120;not null"`
	Description     string        `gorm:"type:text;not null"`
	PriceCents      int64         `gorm:"column:price_cents;not null"`
	ConcertCity     string        `gorm:"column:concert_city;size:120;index;not null"`
	ConcertDate     time.Time     `gorm:"column:concert_date;not null"`
	VIP             bool          `gorm:"column:vip"`
	Loge            bool          `gorm:"column:loge"`
	Suite           bool          `gorm:"column:suite"`
	Status          ListingStatus `gorm:"column:status;size:32;index;not null"`
	ImageURL        *string       `gorm:"column:image_url;size:512"`
	BotScore        *int          `gorm:"column:bot_score"`
	ProcessingUntil *time.Time    `gorm:"column:processing_until"`
	CreatedAt       time.Time     `gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

// TypeTag collapses the seat booleans into a single tag; when several are
// set the highest tier wins.
func (l Listing) TypeTag() ListingType {
	switch {
	case l.Suite:
		return ListingTypeSuite
	case l.Loge:
		return ListingTypeLoge
	case l.VIP:
		return ListingTypeVIP
	default:
		return ListingTypeStandard
	}
}
