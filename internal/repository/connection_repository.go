package repository

import (
	"context"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
)

type ConnectionRepository interface {
	FindOrCreate(ctx context.Context, listingID uint64, sellerUID, buyerUID string) (*model.Connection, error)
	FindByUser(ctx context.Context, uid string) ([]model.Connection, error)
	FindByID(ctx context.Context, id uint64) (*model.Connection, error)
	MarkEnded(ctx context.Context, id uint64) error
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, connID uint64) ([]model.Message, error)
	SetDB(db *gorm.DB)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *connectionRepository) FindOrCreate(ctx context.Context, listingID uint64, sellerUID, buyerUID string) (*model.Connection, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	cn := model.Connection{
		ListingID: listingID,
		SellerUID: sellerUID,
		BuyerUID:  buyerUID,
		Status:    model.ConnectionStatusActive,
	}
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_uid = ?", listingID, buyerUID).
		FirstOrCreate(&cn).Error; err != nil {
		return nil, err
	}
	return &cn, nil
}

func (r *connectionRepository) FindByUser(ctx context.Context, uid string) ([]model.Connection, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Connection
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ? OR buyer_uid = ?", uid, uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *connectionRepository) FindByID(ctx context.Context, id uint64) (*model.Connection, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cn model.Connection
	if err := r.db.WithContext(ctx).First(&cn, id).Error; err != nil {
		return nil, err
	}
	return &cn, nil
}

func (r *connectionRepository) MarkEnded(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Connection{}).
		Where("id = ? AND status = ?", id, model.ConnectionStatusActive).
		Updates(map[string]interface{}{
			"status":   model.ConnectionStatusEnded,
			"ended_at": now,
		}).Error
}

func (r *connectionRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *connectionRepository) ListMessages(ctx context.Context, connID uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
