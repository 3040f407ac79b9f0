package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/reqctx"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

const (
	// Listings scoring at or above this go on a review hold before alerts
	// fire for them.
	botScoreHoldThreshold = 70
	reviewHoldDuration    = 30 * time.Minute
)

// BotScorer rates a listing 0-100 for bot/scam likelihood.
type BotScorer interface {
	Score(ctx context.Context, title, description, city string) (int, error)
}

type CreateListingInput struct {
	Title       string
	Description string
	PriceCents  int64
	ConcertCity string
	ConcertDate time.Time
	VIP         bool
	Loge        bool
	Suite       bool
}

type ListingService interface {
	Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	List(ctx context.Context, limit, offset int, city string) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Update(ctx context.Context, id uint64, sellerUID string, in CreateListingInput) (*model.Listing, error)
	Remove(ctx context.Context, id uint64, sellerUID string) error
	SetImageURL(ctx context.Context, id uint64, sellerUID, imageURL string) error
}

type listingService struct {
	repo   repository.ListingRepository
	scorer BotScorer
	notify NotificationService
}

func NewListingService(repo repository.ListingRepository, scorer BotScorer, notify NotificationService) ListingService {
	return &listingService{repo: repo, scorer: scorer, notify: notify}
}

func (s *listingService) Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ConcertCity = strings.TrimSpace(in.ConcertCity)
	if in.Title == "" || len(in.Title) > 120 {
		return nil, errors.New("invalid title")
	}
	if in.Description == "" {
		return nil, errors.New("invalid description")
	}
	if in.ConcertCity == "" {
		return nil, errors.New("concert city is required")
	}
	if in.ConcertDate.IsZero() {
		return nil, errors.New("concert date is required")
	}
	if in.PriceCents <= 0 {
		return nil, errors.New("invalid price")
	}

	l := &model.Listing{
		SellerUID:   sellerUID,
		Title:       in.Title,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		ConcertCity: in.ConcertCity,
		ConcertDate: in.ConcertDate,
		VIP:         in.VIP,
		Loge:        in.Loge,
		Suite:       in.Suite,
		Status:      model.ListingStatusActive,
	}
	s.applyBotScore(ctx, l)
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	if l.Status == model.ListingStatusProcessing && s.notify != nil {
		s.notify.Notify(ctx, sellerUID, model.NotificationListingReview,
			"Listing under review",
			"Your listing is being checked and will go live shortly.",
			uint64Ptr(l.ID), nil, nil)
	}
	return l, nil
}

// applyBotScore is fail-open: when the scorer is absent or errors the
// listing goes straight to active.
func (s *listingService) applyBotScore(ctx context.Context, l *model.Listing) {
	if s.scorer == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	sctx = reqctx.WithRID(sctx, uuid.NewString())
	if l.ID != 0 {
		sctx = reqctx.WithListingID(sctx, l.ID)
	}
	score, err := s.scorer.Score(sctx, l.Title, l.Description, l.ConcertCity)
	if err != nil {
		log.Printf("[listing] bot score unavailable, publishing as active: %v", err)
		return
	}
	l.BotScore = &score
	if score >= botScoreHoldThreshold {
		until := time.Now().Add(reviewHoldDuration)
		l.Status = model.ListingStatusProcessing
		l.ProcessingUntil = &until
	}
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *listingService) List(ctx context.Context, limit, offset int, city string) ([]model.Listing, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset, strings.TrimSpace(city))
}

func (s *listingService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	return s.repo.ListBySeller(ctx, sellerUID)
}

func (s *listingService) Update(ctx context.Context, id uint64, sellerUID string, in CreateListingInput) (*model.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.SellerUID != sellerUID {
		return nil, ErrForbidden
	}
	if l.Status == model.ListingStatusSold || l.Status == model.ListingStatusRemoved {
		return nil, errors.New("listing can no longer be edited")
	}
	textChanged := false
	if t := strings.TrimSpace(in.Title); t != "" && t != l.Title {
		l.Title = t
		textChanged = true
	}
	if d := strings.TrimSpace(in.Description); d != "" && d != l.Description {
		l.Description = d
		textChanged = true
	}
	if c := strings.TrimSpace(in.ConcertCity); c != "" && c != l.ConcertCity {
		l.ConcertCity = c
		textChanged = true
	}
	if !in.ConcertDate.IsZero() {
		l.ConcertDate = in.ConcertDate
	}
	if in.PriceCents > 0 {
		l.PriceCents = in.PriceCents
	}
	l.VIP = in.VIP
	l.Loge = in.Loge
	l.Suite = in.Suite
	// Edited text can turn a clean listing into spam; re-score it.
	if textChanged {
		s.applyBotScore(ctx, l)
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *listingService) Remove(ctx context.Context, id uint64, sellerUID string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.SellerUID != sellerUID {
		return ErrForbidden
	}
	l.Status = model.ListingStatusRemoved
	return s.repo.Update(ctx, l)
}

func (s *listingService) SetImageURL(ctx context.Context, id uint64, sellerUID, imageURL string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.SellerUID != sellerUID {
		return ErrForbidden
	}
	l.ImageURL = &imageURL
	return s.repo.Update(ctx, l)
}
