package service

import (
	"context"
	"errors"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrAlreadyPurchased = errors.New("already_purchased")
var ErrForbidden = errors.New("forbidden")

type PurchaseService interface {
	PurchaseListing(ctx context.Context, listingID uint64, buyerUID string) (*model.Purchase, error)
	GetByListing(ctx context.Context, listingID uint64, uid string) (*model.Purchase, error)
	MarkShipped(ctx context.Context, purchaseID uint64, sellerUID string) (*model.Purchase, error)
	MarkDelivered(ctx context.Context, purchaseID uint64, buyerUID string) (*model.Purchase, error)
	Cancel(ctx context.Context, purchaseID uint64, buyerUID string) (*model.Purchase, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]PurchaseWithListing, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]PurchaseWithListing, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	listingRepo  repository.ListingRepository
	connRepo     repository.ConnectionRepository
	revenue      RevenueService
	notify       NotificationService
}

type PurchaseWithListing struct {
	Purchase model.Purchase
	Listing  *model.Listing
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	listingRepo repository.ListingRepository,
	connRepo repository.ConnectionRepository,
	revenue RevenueService,
	notify NotificationService,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		listingRepo:  listingRepo,
		connRepo:     connRepo,
		revenue:      revenue,
		notify:       notify,
	}
}

func (s *purchaseService) PurchaseListing(ctx context.Context, listingID uint64, buyerUID string) (*model.Purchase, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if l.SellerUID == buyerUID {
		return nil, errors.New("cannot buy your own listing")
	}
	if l.Status != model.ListingStatusActive {
		return nil, errors.New("listing is not available")
	}
	if existing, err := s.purchaseRepo.FindByListing(ctx, listingID); err == nil && existing != nil {
		if existing.Status != model.PurchaseStatusCanceled {
			return existing, ErrAlreadyPurchased
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cn, err := s.connRepo.FindOrCreate(ctx, listingID, l.SellerUID, buyerUID)
	if err != nil {
		return nil, err
	}
	p := &model.Purchase{
		ListingID:    listingID,
		BuyerUID:     buyerUID,
		SellerUID:    l.SellerUID,
		ConnectionID: cn.ID,
		Status:       model.PurchaseStatusPendingShipment,
		PaidCents:    l.PriceCents,
	}
	if err := s.purchaseRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	l.Status = model.ListingStatusLocked
	if err := s.listingRepo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, l.SellerUID, model.NotificationPurchaseCreated,
		"Your listing was purchased", l.Title, uint64Ptr(listingID), uint64Ptr(cn.ID), uint64Ptr(p.ID))
	return p, nil
}

func (s *purchaseService) GetByListing(ctx context.Context, listingID uint64, uid string) (*model.Purchase, error) {
	p, err := s.purchaseRepo.FindByListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != "" && uid != p.BuyerUID && uid != p.SellerUID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *purchaseService) MarkShipped(ctx context.Context, purchaseID uint64, sellerUID string) (*model.Purchase, error) {
	p, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	if p.Status != model.PurchaseStatusPendingShipment {
		return nil, errors.New("purchase is not awaiting shipment")
	}
	now := time.Now()
	p.Status = model.PurchaseStatusShipped
	p.ShippedAt = &now
	if err := s.purchaseRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.notify.Notify(ctx, p.BuyerUID, model.NotificationPurchaseShipped,
		"Your order shipped", "", uint64Ptr(p.ListingID), nil, uint64Ptr(p.ID))
	return p, nil
}

func (s *purchaseService) MarkDelivered(ctx context.Context, purchaseID uint64, buyerUID string) (*model.Purchase, error) {
	p, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	affected, err := s.purchaseRepo.MarkDeliveredIfPending(ctx, purchaseID, buyerUID)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		// First delivery confirmation releases funds to the seller.
		if err := s.revenue.Add(ctx, p.SellerUID, p.PaidCents); err != nil {
			return nil, err
		}
		if l, lerr := s.listingRepo.FindByID(ctx, p.ListingID); lerr == nil {
			l.Status = model.ListingStatusSold
			_ = s.listingRepo.Update(ctx, l)
		}
		s.notify.Notify(ctx, p.SellerUID, model.NotificationPurchaseDelivered,
			"Order delivered", "The buyer confirmed delivery.", uint64Ptr(p.ListingID), nil, uint64Ptr(p.ID))
	}
	return s.purchaseRepo.FindByID(ctx, purchaseID)
}

func (s *purchaseService) Cancel(ctx context.Context, purchaseID uint64, buyerUID string) (*model.Purchase, error) {
	p, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if p.Status != model.PurchaseStatusPendingShipment {
		return nil, errors.New("only unshipped purchases can be canceled")
	}
	p.Status = model.PurchaseStatusCanceled
	if err := s.purchaseRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	if l, lerr := s.listingRepo.FindByID(ctx, p.ListingID); lerr == nil {
		l.Status = model.ListingStatusActive
		_ = s.listingRepo.Update(ctx, l)
	}
	s.notify.Notify(ctx, p.SellerUID, model.NotificationPurchaseCanceled,
		"Order canceled", "The buyer canceled the purchase.", uint64Ptr(p.ListingID), nil, uint64Ptr(p.ID))
	return p, nil
}

func (s *purchaseService) ListByBuyer(ctx context.Context, buyerUID string) ([]PurchaseWithListing, error) {
	purchases, err := s.purchaseRepo.ListByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, err
	}
	return s.attachListings(ctx, purchases), nil
}

func (s *purchaseService) ListBySeller(ctx context.Context, sellerUID string) ([]PurchaseWithListing, error) {
	purchases, err := s.purchaseRepo.ListBySeller(ctx, sellerUID)
	if err != nil {
		return nil, err
	}
	return s.attachListings(ctx, purchases), nil
}

func (s *purchaseService) attachListings(ctx context.Context, purchases []model.Purchase) []PurchaseWithListing {
	out := make([]PurchaseWithListing, 0, len(purchases))
	for _, p := range purchases {
		l, err := s.listingRepo.FindByID(ctx, p.ListingID)
		if err != nil {
			l = nil
		}
		out = append(out, PurchaseWithListing{Purchase: p, Listing: l})
	}
	return out
}
