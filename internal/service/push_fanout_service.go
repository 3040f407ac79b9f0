package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/geo"
	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/push"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
)

const (
	// Undelivered notifications older than this are never picked up again.
	pendingPushMaxAge = 30 * 24 * time.Hour
	pendingPushLimit  = 50
	// Listings created or updated within this window are alert candidates.
	listingAlertWindow = 6 * time.Hour
)

// TokenSender delivers to one FCM device token.
type TokenSender interface {
	Send(ctx context.Context, token string, p push.Payload) push.Outcome
}

// SubscriptionSender delivers to one web push subscription.
type SubscriptionSender interface {
	Send(ctx context.Context, sub model.PushSubscription, p push.Payload) push.Outcome
}

type FanoutCounters struct {
	Sent   int `json:"sent"`
	Errors int `json:"errors"`
}

type FanoutSummary struct {
	OK            bool           `json:"ok"`
	Skipped       bool           `json:"skipped,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Push          FanoutCounters `json:"push"`
	ListingAlerts FanoutCounters `json:"listingAlerts"`
}

// PushFanoutService is the scheduled batch job: it drains pending
// notifications to every registered endpoint of each recipient, then matches
// recent listings against saved alert preferences. Per-endpoint failures are
// counted, never returned; an unexpected repository error aborts the run and
// the untouched rows are retried on the next tick.
type PushFanoutService struct {
	notifRepo   repository.NotificationRepository
	pushRepo    repository.PushRepository
	alertRepo   repository.AlertRepository
	listingRepo repository.ListingRepository
	tokens      TokenSender
	web         SubscriptionSender
	now         func() time.Time
}

func NewPushFanoutService(
	notifRepo repository.NotificationRepository,
	pushRepo repository.PushRepository,
	alertRepo repository.AlertRepository,
	listingRepo repository.ListingRepository,
	tokens TokenSender,
	web SubscriptionSender,
) *PushFanoutService {
	return &PushFanoutService{
		notifRepo:   notifRepo,
		pushRepo:    pushRepo,
		alertRepo:   alertRepo,
		listingRepo: listingRepo,
		tokens:      tokens,
		web:         web,
		now:         time.Now,
	}
}

// userEndpoints memoizes one user's endpoints and preferences for the
// duration of a single run.
type userEndpoints struct {
	tokens []model.PushToken
	subs   []model.PushSubscription
	prefs  model.PreferenceMap
}

func (s *PushFanoutService) Run(ctx context.Context) (*FanoutSummary, error) {
	if s.tokens == nil && s.web == nil {
		return &FanoutSummary{OK: true, Skipped: true, Reason: "no push channels configured"}, nil
	}

	sum := &FanoutSummary{OK: true}
	users := map[string]*userEndpoints{}
	now := s.now()

	if err := s.runDirectPhase(ctx, sum, users, now); err != nil {
		return nil, err
	}
	if err := s.runAlertPhase(ctx, sum, users, now); err != nil {
		return nil, err
	}

	log.Printf("[fanout] push sent=%d errors=%d listingAlerts sent=%d errors=%d",
		sum.Push.Sent, sum.Push.Errors, sum.ListingAlerts.Sent, sum.ListingAlerts.Errors)
	return sum, nil
}

func (s *PushFanoutService) runDirectPhase(ctx context.Context, sum *FanoutSummary, users map[string]*userEndpoints, now time.Time) error {
	pending, err := s.notifRepo.ListPendingPush(ctx, now.Add(-pendingPushMaxAge), pendingPushLimit)
	if err != nil {
		return err
	}
	for _, n := range pending {
		u, err := s.userFor(ctx, users, n.UserUID)
		if err != nil {
			return err
		}
		if u.prefs.Enabled(n.Type) {
			sent, errs := s.deliver(ctx, u, directPayload(n))
			sum.Push.Sent += sent
			sum.Push.Errors += errs
		}
		// Marked unconditionally once attempted: failed sends are not
		// re-queued, only counted.
		if err := s.notifRepo.MarkPushSent(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

type alertKey struct {
	listingID uint64
	userUID   string
}

func (s *PushFanoutService) runAlertPhase(ctx context.Context, sum *FanoutSummary, users map[string]*userEndpoints, now time.Time) error {
	listings, err := s.listingRepo.ListAlertEligible(ctx, now.Add(-listingAlertWindow), now)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return nil
	}
	prefs, err := s.alertRepo.ListEnabledPreferences(ctx)
	if err != nil {
		return err
	}
	pairs, err := s.alertRepo.ListSentPairs(ctx)
	if err != nil {
		return err
	}
	alreadySent := make(map[alertKey]struct{}, len(pairs))
	for _, p := range pairs {
		alreadySent[alertKey{p.ListingID, p.UserUID}] = struct{}{}
	}

	for _, l := range listings {
		continent := geo.ContinentForCity(l.ConcertCity)
		tag := l.TypeTag()
		for _, pref := range prefs {
			key := alertKey{l.ID, pref.UserUID}
			if _, dup := alreadySent[key]; dup {
				continue
			}
			if !alertMatches(pref, l, continent, tag) {
				continue
			}
			u, err := s.userFor(ctx, users, pref.UserUID)
			if err != nil {
				return err
			}
			sent, errs := s.deliver(ctx, u, alertPayload(l))
			sum.ListingAlerts.Sent += sent
			sum.ListingAlerts.Errors += errs
			if err := s.alertRepo.CreateSent(ctx, l.ID, pref.UserUID); err != nil {
				return err
			}
			alreadySent[key] = struct{}{}
		}
	}
	return nil
}

// alertMatches tests the four wildcard-or-exact filters; a nil filter field
// matches anything.
func alertMatches(pref model.ListingAlertPreference, l model.Listing, continent string, tag model.ListingType) bool {
	if pref.Continent != nil && *pref.Continent != continent {
		return false
	}
	if pref.City != nil && !strings.EqualFold(*pref.City, l.ConcertCity) {
		return false
	}
	if pref.ListingType != nil && *pref.ListingType != string(tag) {
		return false
	}
	if pref.ConcertDate != nil && !sameDay(*pref.ConcertDate, l.ConcertDate) {
		return false
	}
	return true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// userFor resolves (and memoizes for this run) a user's device tokens, web
// push subscriptions, and preference map.
func (s *PushFanoutService) userFor(ctx context.Context, users map[string]*userEndpoints, uid string) (*userEndpoints, error) {
	if u, ok := users[uid]; ok {
		return u, nil
	}
	tokens, err := s.pushRepo.TokensByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	subs, err := s.pushRepo.SubscriptionsByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	prefs, err := s.pushRepo.GetPreferences(ctx, uid)
	if err != nil {
		return nil, err
	}
	u := &userEndpoints{tokens: tokens, subs: subs, prefs: prefs}
	users[uid] = u
	return u, nil
}

// deliver attempts every endpoint of one user on both channels. Endpoints
// the channel reports as gone are deleted and dropped from the memo so later
// notifications in the same run skip them.
func (s *PushFanoutService) deliver(ctx context.Context, u *userEndpoints, p push.Payload) (sent, errs int) {
	if s.tokens != nil {
		var dead map[string]bool
		for _, t := range u.tokens {
			switch s.tokens.Send(ctx, t.Token, p) {
			case push.OutcomeSent:
				sent++
			case push.OutcomeInvalidEndpoint:
				errs++
				if err := s.pushRepo.DeleteToken(ctx, t.Token); err != nil {
					log.Printf("[fanout] delete token failed: %v", err)
				}
				if dead == nil {
					dead = map[string]bool{}
				}
				dead[t.Token] = true
			default:
				errs++
			}
		}
		if dead != nil {
			kept := u.tokens[:0]
			for _, t := range u.tokens {
				if !dead[t.Token] {
					kept = append(kept, t)
				}
			}
			u.tokens = kept
		}
	}
	if s.web != nil {
		var dead map[string]bool
		for _, sub := range u.subs {
			switch s.web.Send(ctx, sub, p) {
			case push.OutcomeSent:
				sent++
			case push.OutcomeInvalidEndpoint:
				errs++
				if err := s.pushRepo.DeleteSubscription(ctx, sub.Endpoint); err != nil {
					log.Printf("[fanout] delete subscription failed: %v", err)
				}
				if dead == nil {
					dead = map[string]bool{}
				}
				dead[sub.Endpoint] = true
			default:
				errs++
			}
		}
		if dead != nil {
			kept := u.subs[:0]
			for _, sub := range u.subs {
				if !dead[sub.Endpoint] {
					kept = append(kept, sub)
				}
			}
			u.subs = kept
		}
	}
	return sent, errs
}

func directPayload(n model.Notification) push.Payload {
	data := map[string]string{"type": string(n.Type)}
	if n.ListingID != nil {
		data["listingId"] = strconv.FormatUint(*n.ListingID, 10)
	}
	if n.ConnectionID != nil {
		data["connectionId"] = strconv.FormatUint(*n.ConnectionID, 10)
	}
	if n.PurchaseID != nil {
		data["purchaseId"] = strconv.FormatUint(*n.PurchaseID, 10)
	}
	return push.Payload{Title: n.Title, Body: n.Body, Data: data}
}

func alertPayload(l model.Listing) push.Payload {
	return push.Payload{
		Title: "New listing: " + l.Title,
		Body:  fmt.Sprintf("%s, %s (%s)", l.ConcertCity, l.ConcertDate.Format("Jan 2, 2006"), l.TypeTag()),
		Data: map[string]string{
			"type":      string(model.NotificationListingAlert),
			"listingId": strconv.FormatUint(l.ID, 10),
		},
	}
}
