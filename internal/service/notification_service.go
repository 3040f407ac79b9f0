package service

import (
	"context"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userUID string, typ model.NotificationType, title, body string, listingID, connID, purchaseID *uint64)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, userUID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; it logs errors but does not return them to avoid
// breaking main flows. The created row is picked up later by the fan-out job.
func (s *notificationService) Notify(ctx context.Context, userUID string, typ model.NotificationType, title, body string, listingID, connID, purchaseID *uint64) {
	if userUID == "" || typ == "" {
		return
	}
	n := &model.Notification{
		UserUID:      userUID,
		Type:         typ,
		Title:        title,
		Body:         body,
		ListingID:    listingID,
		ConnectionID: connID,
		PurchaseID:   purchaseID,
	}
	_ = s.repo.Create(ctx, n)
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

// helper to return pointer
func uint64Ptr(v uint64) *uint64 {
	return &v
}
