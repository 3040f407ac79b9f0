package service

import (
	"context"
	"errors"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
	"gorm.io/gorm"
)

type ConnectionService interface {
	CreateOrGet(ctx context.Context, listingID uint64, buyerUID string) (*model.Connection, error)
	ListByUser(ctx context.Context, uid string) ([]model.Connection, error)
	Get(ctx context.Context, connID uint64, uid string) (*model.Connection, error)
	ListMessages(ctx context.Context, connID uint64, uid string) ([]model.Message, error)
	CreateMessage(ctx context.Context, connID uint64, uid, body, senderName string) error
	End(ctx context.Context, connID uint64, uid string) error
}

type connectionService struct {
	connRepo    repository.ConnectionRepository
	listingRepo repository.ListingRepository
	notify      NotificationService
}

func NewConnectionService(connRepo repository.ConnectionRepository, listingRepo repository.ListingRepository, notify NotificationService) ConnectionService {
	return &connectionService{connRepo: connRepo, listingRepo: listingRepo, notify: notify}
}

func (s *connectionService) CreateOrGet(ctx context.Context, listingID uint64, buyerUID string) (*model.Connection, error) {
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if l.SellerUID == buyerUID {
		return nil, errors.New("cannot connect with yourself")
	}
	return s.connRepo.FindOrCreate(ctx, listingID, l.SellerUID, buyerUID)
}

func (s *connectionService) ListByUser(ctx context.Context, uid string) ([]model.Connection, error) {
	return s.connRepo.FindByUser(ctx, uid)
}

func (s *connectionService) Get(ctx context.Context, connID uint64, uid string) (*model.Connection, error) {
	cn, err := s.connRepo.FindByID(ctx, connID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cn.BuyerUID != uid && cn.SellerUID != uid {
		return nil, ErrForbidden
	}
	return cn, nil
}

func (s *connectionService) ListMessages(ctx context.Context, connID uint64, uid string) ([]model.Message, error) {
	if _, err := s.Get(ctx, connID, uid); err != nil {
		return nil, err
	}
	return s.connRepo.ListMessages(ctx, connID)
}

func (s *connectionService) CreateMessage(ctx context.Context, connID uint64, uid, body, senderName string) error {
	if body == "" {
		return errors.New("body is required")
	}
	cn, err := s.Get(ctx, connID, uid)
	if err != nil {
		return err
	}
	if cn.Status != model.ConnectionStatusActive {
		return errors.New("connection has ended")
	}
	msg := &model.Message{
		ConnectionID: connID,
		SenderUID:    uid,
		SenderName:   senderName,
		Body:         body,
	}
	if err := s.connRepo.CreateMessage(ctx, msg); err != nil {
		return err
	}
	s.notify.Notify(ctx, counterpart(cn, uid), model.NotificationConnectionMessage,
		"New message", body, uint64Ptr(cn.ListingID), uint64Ptr(connID), nil)
	return nil
}

func (s *connectionService) End(ctx context.Context, connID uint64, uid string) error {
	cn, err := s.Get(ctx, connID, uid)
	if err != nil {
		return err
	}
	if cn.Status != model.ConnectionStatusActive {
		return nil
	}
	if err := s.connRepo.MarkEnded(ctx, connID); err != nil {
		return err
	}
	s.notify.Notify(ctx, counterpart(cn, uid), model.NotificationConnectionEnded,
		"Connection ended", "The other party ended this conversation.",
		uint64Ptr(cn.ListingID), uint64Ptr(connID), nil)
	return nil
}

func counterpart(cn *model.Connection, uid string) string {
	if cn.BuyerUID == uid {
		return cn.SellerUID
	}
	return cn.BuyerUID
}
