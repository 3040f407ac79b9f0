package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushRepository holds device push registrations (FCM tokens, web push
// subscriptions) and the per-type opt-out preference map.
type PushRepository interface {
	SaveToken(ctx context.Context, userUID, token string) error
	DeleteToken(ctx context.Context, token string) error
	TokensByUser(ctx context.Context, userUID string) ([]model.PushToken, error)
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsByUser(ctx context.Context, userUID string) ([]model.PushSubscription, error)
	GetPreferences(ctx context.Context, userUID string) (model.PreferenceMap, error)
	SavePreferences(ctx context.Context, userUID string, prefs model.PreferenceMap) error
	SetDB(db *gorm.DB)
}

type pushRepository struct {
	db *gorm.DB
}

func NewPushRepository(db *gorm.DB) PushRepository {
	return &pushRepository{db: db}
}

func (r *pushRepository) SaveToken(ctx context.Context, userUID, token string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"user_uid": userUID}),
	}).Create(&model.PushToken{Token: token, UserUID: userUID}).Error
}

func (r *pushRepository) DeleteToken(ctx context.Context, token string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.PushToken{}).Error
}

func (r *pushRepository) TokensByUser(ctx context.Context, userUID string) ([]model.PushToken, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var tokens []model.PushToken
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *pushRepository) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"p256dh":   sub.P256dh,
			"auth":     sub.Auth,
			"user_uid": sub.UserUID,
		}),
	}).Create(sub).Error
}

func (r *pushRepository) DeleteSubscription(ctx context.Context, endpoint string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&model.PushSubscription{}).Error
}

func (r *pushRepository) SubscriptionsByUser(ctx context.Context, userUID string) ([]model.PushSubscription, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var subs []model.PushSubscription
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// GetPreferences returns an empty map (everything enabled) when the user has
// never saved preferences.
func (r *pushRepository) GetPreferences(ctx context.Context, userUID string) (model.PreferenceMap, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var row model.NotificationPushPreference
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.PreferenceMap{}, nil
		}
		return nil, err
	}
	prefs := model.PreferenceMap{}
	if row.Prefs != "" {
		if err := json.Unmarshal([]byte(row.Prefs), &prefs); err != nil {
			// A corrupt blob should not block delivery; treat as defaults.
			return model.PreferenceMap{}, nil
		}
	}
	return prefs, nil
}

func (r *pushRepository) SavePreferences(ctx context.Context, userUID string, prefs model.PreferenceMap) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"prefs": string(raw)}),
	}).Create(&model.NotificationPushPreference{UserUID: userUID, Prefs: string(raw)}).Error
}

func (r *pushRepository) SetDB(db *gorm.DB) {
	r.db = db
}
