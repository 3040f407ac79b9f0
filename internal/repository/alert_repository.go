package repository

import (
	"context"
	"errors"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	GetPreference(ctx context.Context, userUID string) (*model.ListingAlertPreference, error)
	UpsertPreference(ctx context.Context, pref *model.ListingAlertPreference) error
	ListEnabledPreferences(ctx context.Context) ([]model.ListingAlertPreference, error)
	ListSentPairs(ctx context.Context) ([]model.ListingAlertSent, error)
	CreateSent(ctx context.Context, listingID uint64, userUID string) error
	SetDB(db *gorm.DB)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) GetPreference(ctx context.Context, userUID string) (*model.ListingAlertPreference, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var pref model.ListingAlertPreference
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

func (r *alertRepository) UpsertPreference(ctx context.Context, pref *model.ListingAlertPreference) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"continent":    pref.Continent,
			"city":         pref.City,
			"listing_type": pref.ListingType,
			"concert_date": pref.ConcertDate,
			"enabled":      pref.Enabled,
		}),
	}).Create(pref).Error
}

func (r *alertRepository) ListEnabledPreferences(ctx context.Context) ([]model.ListingAlertPreference, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var prefs []model.ListingAlertPreference
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *alertRepository) ListSentPairs(ctx context.Context) ([]model.ListingAlertSent, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var pairs []model.ListingAlertSent
	if err := r.db.WithContext(ctx).Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *alertRepository) CreateSent(ctx context.Context, listingID uint64, userUID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ListingAlertSent{ListingID: listingID, UserUID: userUID}).Error
}

func (r *alertRepository) SetDB(db *gorm.DB) {
	r.db = db
}
