package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/stagetrade/stagetrade-backend/internal/config"
	"github.com/stagetrade/stagetrade-backend/internal/db"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
)

const seedSellerUID = "seed-seller"

type seedListing struct {
	title string
	city  string
	days  int
	cents int64
	vip   bool
	loge  bool
	suite bool
}

var seedListings = []seedListing{
	{title: "Arena floor ticket, front block", city: "Berlin", days: 14, cents: 12900},
	{title: "VIP package with early entry", city: "Paris", days: 21, cents: 34900, vip: true},
	{title: "Loge seats, pair available", city: "London", days: 30, cents: 25900, loge: true},
	{title: "Suite access, full hospitality", city: "New York", days: 45, cents: 79900, suite: true},
	{title: "Standing ticket, resale at face value", city: "Tokyo", days: 10, cents: 9900},
	{title: "Tour hoodie, unworn, size M", city: "Berlin", days: 14, cents: 6500},
	{title: "VIP upgrade voucher", city: "Sydney", days: 60, cents: 19900, vip: true},
	{title: "Balcony seats, restricted view", city: "Madrid", days: 25, cents: 7900},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	listingRepo := repository.NewListingRepository(gdb)
	profileRepo := repository.NewProfileRepository(gdb)

	admin := &model.Profile{UID: "seed-admin", DisplayName: "Ops Admin", Role: model.RoleAdmin}
	if err := profileRepo.Upsert(ctx, admin); err != nil {
		return fmt.Errorf("upsert admin profile: %w", err)
	}

	now := time.Now().UTC()
	inserted, skipped := 0, 0

	for _, s := range seedListings {
		existing, err := listingRepo.ListBySeller(ctx, seedSellerUID)
		if err != nil {
			return fmt.Errorf("list existing: %w", err)
		}
		if hasTitle(existing, s.title) {
			skipped++
			continue
		}

		l := &model.Listing{
			SellerUID:   seedSellerUID,
			Title:       s.title,
			Description: fmt.Sprintf("%s. Verified resale, transfer handled in-app.", s.title),
			PriceCents:  s.cents,
			ConcertCity: s.city,
			ConcertDate: now.AddDate(0, 0, s.days),
			VIP:         s.vip,
			Loge:        s.loge,
			Suite:       s.suite,
			Status:      model.ListingStatusActive,
		}
		if err := listingRepo.Create(ctx, l); err != nil {
			return fmt.Errorf("insert %q: %w", s.title, err)
		}
		inserted++
	}

	log.Printf("seed done: inserted=%d skipped=%d", inserted, skipped)
	return nil
}

func hasTitle(listings []model.Listing, title string) bool {
	for _, l := range listings {
		if l.Title == title {
			return true
		}
	}
	return false
}
