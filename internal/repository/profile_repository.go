package repository

import (
	"context"
	"errors"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) error
	SetDB(db *gorm.DB)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, uid string) (*model.Profile, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Profile
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"display_name": p.DisplayName}),
	}).Create(p).Error
}

func (r *profileRepository) SetDB(db *gorm.DB) {
	r.db = db
}
