package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
)

type ListingRepository interface {
	Create(ctx context.Context, l *model.Listing) error
	FindByID(ctx context.Context, id uint64) (*model.Listing, error)
	Update(ctx context.Context, l *model.Listing) error
	List(ctx context.Context, limit, offset int, city string) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	ListAlertEligible(ctx context.Context, touchedSince, now time.Time) ([]model.Listing, error)
	SetDB(db *gorm.DB)
}

type listingRepository struct {
	db *gorm.DB
}

var ErrDBNotReady = errors.New("database not initialized")

// alertableStatuses excludes removed listings; everything else is still
// worth alerting on (a sold listing proves demand in that city).
var alertableStatuses = []model.ListingStatus{
	model.ListingStatusProcessing,
	model.ListingStatusActive,
	model.ListingStatusLocked,
	model.ListingStatusSold,
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, l *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var l model.Listing
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *model.Listing) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *listingRepository) List(ctx context.Context, limit, offset int, city string) ([]model.Listing, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		listings []model.Listing
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Listing{}).
		Where("status = ?", model.ListingStatusActive)
	if city != "" {
		q = q.Where("concert_city = ?", city)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var listings []model.Listing
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// ListAlertEligible returns listings created or updated since touchedSince
// whose review hold, if any, has elapsed.
func (r *listingRepository) ListAlertEligible(ctx context.Context, touchedSince, now time.Time) ([]model.Listing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var listings []model.Listing
	if err := r.db.WithContext(ctx).
		Where("status IN ?", alertableStatuses).
		Where("(created_at >= ? OR updated_at >= ?)", touchedSince, touchedSince).
		Where("(processing_until IS NULL OR processing_until <= ?)", now).
		Order("created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) SetDB(db *gorm.DB) {
	r.db = db
}
