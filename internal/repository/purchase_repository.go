package repository

import (
	"context"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	FindByListing(ctx context.Context, listingID uint64) (*model.Purchase, error)
	FindByID(ctx context.Context, id uint64) (*model.Purchase, error)
	Update(ctx context.Context, p *model.Purchase) error
	MarkDeliveredIfPending(ctx context.Context, id uint64, buyerUID string) (int64, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Purchase, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Purchase, error)
	SetDB(db *gorm.DB)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepository) FindByListing(ctx context.Context, listingID uint64) (*model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Purchase
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("id DESC").
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uint64) (*model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Purchase
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) Update(ctx context.Context, p *model.Purchase) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *purchaseRepository) MarkDeliveredIfPending(ctx context.Context, id uint64, buyerUID string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ? AND buyer_uid = ? AND status <> ?", id, buyerUID, model.PurchaseStatusDelivered).
		Updates(map[string]interface{}{
			"status":       model.PurchaseStatusDelivered,
			"delivered_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *purchaseRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *purchaseRepository) SetDB(db *gorm.DB) {
	r.db = db
}
