package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stagetrade/stagetrade-backend/internal/model"
	"github.com/stagetrade/stagetrade-backend/internal/push"
	"gorm.io/gorm"
)

type fakeNotifRepo struct {
	pending  []model.Notification
	listErr  error
	markErr  error
	markedID []uint64
}

func (f *fakeNotifRepo) Create(ctx context.Context, n *model.Notification) error { return nil }
func (f *fakeNotifRepo) ListByUser(ctx context.Context, uid string, unread bool, limit int) ([]model.Notification, error) {
	return nil, nil
}
func (f *fakeNotifRepo) MarkAllRead(ctx context.Context, uid string) error    { return nil }
func (f *fakeNotifRepo) CountUnread(ctx context.Context, uid string) (int64, error) { return 0, nil }
func (f *fakeNotifRepo) ListPendingPush(ctx context.Context, after time.Time, limit int) ([]model.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Notification{}
	for _, n := range f.pending {
		if !n.PushSent && !n.CreatedAt.Before(after) {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
func (f *fakeNotifRepo) MarkPushSent(ctx context.Context, id uint64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedID = append(f.markedID, id)
	for i := range f.pending {
		if f.pending[i].ID == id {
			f.pending[i].PushSent = true
		}
	}
	return nil
}
func (f *fakeNotifRepo) SetDB(db *gorm.DB) {}

type fakePushRepo struct {
	tokens       map[string][]model.PushToken
	subs         map[string][]model.PushSubscription
	prefs        map[string]model.PreferenceMap
	deletedToks  []string
	deletedSubs  []string
	lookupsByUID map[string]int
}

func newFakePushRepo() *fakePushRepo {
	return &fakePushRepo{
		tokens:       map[string][]model.PushToken{},
		subs:         map[string][]model.PushSubscription{},
		prefs:        map[string]model.PreferenceMap{},
		lookupsByUID: map[string]int{},
	}
}

func (f *fakePushRepo) SaveToken(ctx context.Context, uid, token string) error { return nil }
func (f *fakePushRepo) DeleteToken(ctx context.Context, token string) error {
	f.deletedToks = append(f.deletedToks, token)
	return nil
}
func (f *fakePushRepo) TokensByUser(ctx context.Context, uid string) ([]model.PushToken, error) {
	f.lookupsByUID[uid]++
	return append([]model.PushToken(nil), f.tokens[uid]...), nil
}
func (f *fakePushRepo) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return nil
}
func (f *fakePushRepo) DeleteSubscription(ctx context.Context, endpoint string) error {
	f.deletedSubs = append(f.deletedSubs, endpoint)
	return nil
}
func (f *fakePushRepo) SubscriptionsByUser(ctx context.Context, uid string) ([]model.PushSubscription, error) {
	return append([]model.PushSubscription(nil), f.subs[uid]...), nil
}
func (f *fakePushRepo) GetPreferences(ctx context.Context, uid string) (model.PreferenceMap, error) {
	if p, ok := f.prefs[uid]; ok {
		return p, nil
	}
	return model.PreferenceMap{}, nil
}
func (f *fakePushRepo) SavePreferences(ctx context.Context, uid string, p model.PreferenceMap) error {
	return nil
}
func (f *fakePushRepo) SetDB(db *gorm.DB) {}

type fakeAlertRepo struct {
	prefs []model.ListingAlertPreference
	sent  []model.ListingAlertSent
}

func (f *fakeAlertRepo) GetPreference(ctx context.Context, uid string) (*model.ListingAlertPreference, error) {
	return nil, nil
}
func (f *fakeAlertRepo) UpsertPreference(ctx context.Context, pref *model.ListingAlertPreference) error {
	return nil
}
func (f *fakeAlertRepo) ListEnabledPreferences(ctx context.Context) ([]model.ListingAlertPreference, error) {
	return f.prefs, nil
}
func (f *fakeAlertRepo) ListSentPairs(ctx context.Context) ([]model.ListingAlertSent, error) {
	return f.sent, nil
}
func (f *fakeAlertRepo) CreateSent(ctx context.Context, listingID uint64, uid string) error {
	for _, s := range f.sent {
		if s.ListingID == listingID && s.UserUID == uid {
			return nil
		}
	}
	f.sent = append(f.sent, model.ListingAlertSent{ListingID: listingID, UserUID: uid})
	return nil
}
func (f *fakeAlertRepo) SetDB(db *gorm.DB) {}

type fakeListingRepo struct {
	eligible []model.Listing
}

func (f *fakeListingRepo) Create(ctx context.Context, l *model.Listing) error        { return nil }
func (f *fakeListingRepo) FindByID(ctx context.Context, id uint64) (*model.Listing, error) {
	return nil, nil
}
func (f *fakeListingRepo) Update(ctx context.Context, l *model.Listing) error { return nil }
func (f *fakeListingRepo) List(ctx context.Context, limit, offset int, city string) ([]model.Listing, int64, error) {
	return nil, 0, nil
}
func (f *fakeListingRepo) ListBySeller(ctx context.Context, uid string) ([]model.Listing, error) {
	return nil, nil
}
func (f *fakeListingRepo) ListAlertEligible(ctx context.Context, since, now time.Time) ([]model.Listing, error) {
	return f.eligible, nil
}
func (f *fakeListingRepo) SetDB(db *gorm.DB) {}

type fakeTokenSender struct {
	outcomes map[string]push.Outcome
	sends    []string
}

func (f *fakeTokenSender) Send(ctx context.Context, token string, p push.Payload) push.Outcome {
	f.sends = append(f.sends, token)
	if o, ok := f.outcomes[token]; ok {
		return o
	}
	return push.OutcomeSent
}

type fakeSubSender struct {
	outcomes map[string]push.Outcome
	sends    []string
}

func (f *fakeSubSender) Send(ctx context.Context, sub model.PushSubscription, p push.Payload) push.Outcome {
	f.sends = append(f.sends, sub.Endpoint)
	if o, ok := f.outcomes[sub.Endpoint]; ok {
		return o
	}
	return push.OutcomeSent
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newFanout(nr *fakeNotifRepo, pr *fakePushRepo, ar *fakeAlertRepo, lr *fakeListingRepo, t *fakeTokenSender, w *fakeSubSender) *PushFanoutService {
	var tokens TokenSender
	if t != nil {
		tokens = t
	}
	var web SubscriptionSender
	if w != nil {
		web = w
	}
	s := NewPushFanoutService(nr, pr, ar, lr, tokens, web)
	s.now = fixedNow
	return s
}

func TestRunSkippedWithoutChannels(t *testing.T) {
	s := newFanout(&fakeNotifRepo{}, newFakePushRepo(), &fakeAlertRepo{}, &fakeListingRepo{}, nil, nil)
	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !sum.Skipped || !sum.OK {
		t.Fatalf("want skipped summary, got %+v", sum)
	}
}

func TestDirectPhaseDeliversAndMarks(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{pending: []model.Notification{
		{ID: 1, UserUID: "u1", Type: model.NotificationConnectionEnded, Title: "hi", CreatedAt: now.Add(-time.Hour)},
		{ID: 2, UserUID: "u1", Type: model.NotificationPurchaseShipped, Title: "shipped", CreatedAt: now.Add(-2 * time.Hour)},
	}}
	pr := newFakePushRepo()
	pr.tokens["u1"] = []model.PushToken{{Token: "tok1"}}
	pr.subs["u1"] = []model.PushSubscription{{Endpoint: "ep1"}}
	ts := &fakeTokenSender{}
	ws := &fakeSubSender{}
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, ts, ws)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Push.Sent != 4 || sum.Push.Errors != 0 {
		t.Fatalf("push counters = %+v", sum.Push)
	}
	if len(nr.markedID) != 2 {
		t.Fatalf("marked %v, want both", nr.markedID)
	}
	if pr.lookupsByUID["u1"] != 1 {
		t.Fatalf("token lookups for u1 = %d, want memoized single lookup", pr.lookupsByUID["u1"])
	}
}

func TestDirectPhaseRespectsOptOutButStillMarks(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{pending: []model.Notification{
		{ID: 1, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-time.Hour)},
	}}
	pr := newFakePushRepo()
	pr.tokens["u1"] = []model.PushToken{{Token: "tok1"}}
	pr.prefs["u1"] = model.PreferenceMap{model.NotificationConnectionMessage: false}
	ts := &fakeTokenSender{}
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, ts, nil)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(ts.sends) != 0 {
		t.Fatalf("sent %v despite opt-out", ts.sends)
	}
	if sum.Push.Sent != 0 {
		t.Fatalf("push sent = %d, want 0", sum.Push.Sent)
	}
	if len(nr.markedID) != 1 {
		t.Fatalf("opted-out row must still be marked, got %v", nr.markedID)
	}
}

func TestDirectPhaseBatchLimit(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{}
	for i := 1; i <= 60; i++ {
		nr.pending = append(nr.pending, model.Notification{
			ID: uint64(i), UserUID: "u1", Type: model.NotificationConnectionMessage,
			CreatedAt: now.Add(-time.Minute),
		})
	}
	pr := newFakePushRepo()
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, &fakeTokenSender{}, nil)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(nr.markedID) != 50 {
		t.Fatalf("marked %d rows in one run, want 50", len(nr.markedID))
	}
}

func TestDirectPhaseSkipsStaleRows(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{pending: []model.Notification{
		{ID: 1, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-31 * 24 * time.Hour)},
		{ID: 2, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-time.Hour)},
	}}
	pr := newFakePushRepo()
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, &fakeTokenSender{}, nil)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(nr.markedID) != 1 || nr.markedID[0] != 2 {
		t.Fatalf("marked %v, want only the fresh row", nr.markedID)
	}
}

func TestInvalidTokenDeletedAndDroppedFromRun(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{pending: []model.Notification{
		{ID: 1, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-time.Hour)},
		{ID: 2, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-2 * time.Hour)},
	}}
	pr := newFakePushRepo()
	pr.tokens["u1"] = []model.PushToken{{Token: "dead"}, {Token: "live"}}
	ts := &fakeTokenSender{outcomes: map[string]push.Outcome{"dead": push.OutcomeInvalidEndpoint}}
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, ts, nil)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pr.deletedToks) != 1 || pr.deletedToks[0] != "dead" {
		t.Fatalf("deleted tokens = %v", pr.deletedToks)
	}
	// First notification hits both tokens, second only the surviving one.
	if len(ts.sends) != 3 {
		t.Fatalf("sends = %v, dead token retried within run", ts.sends)
	}
	if sum.Push.Sent != 2 || sum.Push.Errors != 1 {
		t.Fatalf("counters = %+v", sum.Push)
	}
}

func TestGoneSubscriptionDeleted(t *testing.T) {
	now := fixedNow()
	nr := &fakeNotifRepo{pending: []model.Notification{
		{ID: 1, UserUID: "u1", Type: model.NotificationConnectionMessage, CreatedAt: now.Add(-time.Hour)},
	}}
	pr := newFakePushRepo()
	pr.subs["u1"] = []model.PushSubscription{{Endpoint: "gone"}, {Endpoint: "ok"}}
	ws := &fakeSubSender{outcomes: map[string]push.Outcome{"gone": push.OutcomeInvalidEndpoint}}
	s := newFanout(nr, pr, &fakeAlertRepo{}, &fakeListingRepo{}, nil, ws)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pr.deletedSubs) != 1 || pr.deletedSubs[0] != "gone" {
		t.Fatalf("deleted subs = %v", pr.deletedSubs)
	}
	if sum.Push.Sent != 1 || sum.Push.Errors != 1 {
		t.Fatalf("counters = %+v", sum.Push)
	}
}

func TestRunAbortsOnStoreError(t *testing.T) {
	nr := &fakeNotifRepo{listErr: errors.New("db down")}
	s := newFanout(nr, newFakePushRepo(), &fakeAlertRepo{}, &fakeListingRepo{}, &fakeTokenSender{}, nil)
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("want error when pending lookup fails")
	}
}

func strPtr(s string) *string { return &s }

func TestAlertPhaseMatchingAndDedupe(t *testing.T) {
	now := fixedNow()
	listing := model.Listing{
		ID: 7, Title: "Floor ticket", ConcertCity: "Paris",
		ConcertDate: time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC),
		Status:      model.ListingStatusActive, CreatedAt: now.Add(-time.Hour),
	}
	lr := &fakeListingRepo{eligible: []model.Listing{listing}}
	ar := &fakeAlertRepo{prefs: []model.ListingAlertPreference{
		{UserUID: "wildcard", Enabled: true},
		{UserUID: "europe-std", Continent: strPtr("Europe"), ListingType: strPtr("standard"), Enabled: true},
		{UserUID: "asia-only", Continent: strPtr("Asia"), Enabled: true},
		{UserUID: "vip-only", ListingType: strPtr("vip"), Enabled: true},
		{UserUID: "already", Enabled: true},
	}}
	ar.sent = []model.ListingAlertSent{{ListingID: 7, UserUID: "already"}}

	pr := newFakePushRepo()
	for _, uid := range []string{"wildcard", "europe-std", "asia-only", "vip-only", "already"} {
		pr.tokens[uid] = []model.PushToken{{Token: "tok-" + uid}}
	}
	ts := &fakeTokenSender{}
	s := newFanout(&fakeNotifRepo{}, pr, ar, lr, ts, nil)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.ListingAlerts.Sent != 2 {
		t.Fatalf("alert sent = %d, want wildcard and europe-std only (sends: %v)", sum.ListingAlerts.Sent, ts.sends)
	}
	if len(ar.sent) != 3 {
		t.Fatalf("sent log = %v, want two new pairs", ar.sent)
	}

	// Second run against the same state delivers nothing new.
	ts2 := &fakeTokenSender{}
	s2 := newFanout(&fakeNotifRepo{}, pr, ar, lr, ts2, nil)
	sum2, err := s2.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum2.ListingAlerts.Sent != 0 {
		t.Fatalf("second run sent %d alerts, want 0", sum2.ListingAlerts.Sent)
	}
}

func TestAlertMatches(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	listing := model.Listing{
		ConcertCity: "Paris",
		ConcertDate: time.Date(2026, 6, 1, 21, 30, 0, 0, time.UTC),
		VIP:         false,
	}
	tests := []struct {
		name string
		pref model.ListingAlertPreference
		want bool
	}{
		{"all nil matches", model.ListingAlertPreference{}, true},
		{"continent match", model.ListingAlertPreference{Continent: strPtr("Europe")}, true},
		{"continent mismatch", model.ListingAlertPreference{Continent: strPtr("Asia")}, false},
		{"city case insensitive", model.ListingAlertPreference{City: strPtr("paris")}, true},
		{"city mismatch", model.ListingAlertPreference{City: strPtr("Lyon")}, false},
		{"type match", model.ListingAlertPreference{ListingType: strPtr("standard")}, true},
		{"type mismatch", model.ListingAlertPreference{ListingType: strPtr("vip")}, false},
		{"same calendar day", model.ListingAlertPreference{ConcertDate: &date}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alertMatches(tt.pref, listing, "Europe", listing.TypeTag())
			if got != tt.want {
				t.Fatalf("got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestAlertDateMatchIgnoresTimeOfDay(t *testing.T) {
	lateDay := time.Date(2026, 6, 1, 23, 59, 0, 0, time.UTC)
	pref := model.ListingAlertPreference{ConcertDate: &lateDay}
	l := model.Listing{ConcertCity: "Paris", ConcertDate: time.Date(2026, 6, 1, 0, 1, 0, 0, time.UTC)}
	if !alertMatches(pref, l, "Europe", l.TypeTag()) {
		t.Fatal("same UTC day must match regardless of clock time")
	}
	nextDay := time.Date(2026, 6, 2, 0, 1, 0, 0, time.UTC)
	l.ConcertDate = nextDay
	if alertMatches(pref, l, "Europe", l.TypeTag()) {
		t.Fatal("different UTC day must not match")
	}
}

func TestAlertPayloadData(t *testing.T) {
	l := model.Listing{ID: 42, Title: "Pit ticket", ConcertCity: "Berlin",
		ConcertDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), VIP: true}
	p := alertPayload(l)
	if p.Data["listingId"] != "42" {
		t.Fatalf("listingId = %q", p.Data["listingId"])
	}
	if p.Data["type"] != string(model.NotificationListingAlert) {
		t.Fatalf("type = %q", p.Data["type"])
	}
	want := fmt.Sprintf("Berlin, %s (vip)", l.ConcertDate.Format("Jan 2, 2006"))
	if p.Body != want {
		t.Fatalf("body = %q want %q", p.Body, want)
	}
}
