package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
)

type memListingRepo struct {
	fakeListingRepo
	nextID  uint64
	created []*model.Listing
}

func (m *memListingRepo) Create(ctx context.Context, l *model.Listing) error {
	m.nextID++
	l.ID = m.nextID
	m.created = append(m.created, l)
	return nil
}

type stubScorer struct {
	score int
	err   error
}

func (s *stubScorer) Score(ctx context.Context, title, description, city string) (int, error) {
	return s.score, s.err
}

func validInput() CreateListingInput {
	return CreateListingInput{
		Title:       "Floor ticket",
		Description: "Row A, transfer in-app",
		PriceCents:  12900,
		ConcertCity: "Berlin",
		ConcertDate: time.Date(2026, 7, 4, 20, 0, 0, 0, time.UTC),
	}
}

func TestCreateListingActiveWithoutScorer(t *testing.T) {
	repo := &memListingRepo{}
	svc := NewListingService(repo, nil, nil)
	l, err := svc.Create(context.Background(), "seller", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Status != model.ListingStatusActive {
		t.Fatalf("status=%s want active", l.Status)
	}
	if l.ProcessingUntil != nil {
		t.Fatal("no review hold expected")
	}
}

func TestCreateListingHeldOnHighScore(t *testing.T) {
	repo := &memListingRepo{}
	svc := NewListingService(repo, &stubScorer{score: 85}, nil)
	l, err := svc.Create(context.Background(), "seller", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Status != model.ListingStatusProcessing {
		t.Fatalf("status=%s want processing", l.Status)
	}
	if l.ProcessingUntil == nil || !l.ProcessingUntil.After(time.Now()) {
		t.Fatalf("processing_until = %v, want a future hold", l.ProcessingUntil)
	}
	if l.BotScore == nil || *l.BotScore != 85 {
		t.Fatalf("bot score = %v", l.BotScore)
	}
}

func TestCreateListingFailsOpenOnScorerError(t *testing.T) {
	repo := &memListingRepo{}
	svc := NewListingService(repo, &stubScorer{err: errors.New("quota")}, nil)
	l, err := svc.Create(context.Background(), "seller", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Status != model.ListingStatusActive {
		t.Fatalf("status=%s, scorer failure must not block publishing", l.Status)
	}
	if l.BotScore != nil {
		t.Fatalf("bot score = %v, want unset", *l.BotScore)
	}
}

func TestCreateListingValidation(t *testing.T) {
	svc := NewListingService(&memListingRepo{}, nil, nil)
	tests := []struct {
		name   string
		mutate func(*CreateListingInput)
	}{
		{"empty title", func(in *CreateListingInput) { in.Title = "  " }},
		{"empty description", func(in *CreateListingInput) { in.Description = "" }},
		{"missing city", func(in *CreateListingInput) { in.ConcertCity = "" }},
		{"zero date", func(in *CreateListingInput) { in.ConcertDate = time.Time{} }},
		{"zero price", func(in *CreateListingInput) { in.PriceCents = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := svc.Create(context.Background(), "seller", in); err == nil {
				t.Fatal("want validation error")
			}
		})
	}
}
