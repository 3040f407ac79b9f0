package push

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stagetrade/stagetrade-backend/internal/model"
)

var ErrWebPushNotConfigured = errors.New("VAPID keys are not set")

// WebPushChannel sends browser pushes over the Web Push protocol with VAPID
// authentication.
type WebPushChannel struct {
	publicKey  string
	privateKey string
	subscriber string
}

func NewWebPushChannel() (*WebPushChannel, error) {
	publicKey := os.Getenv("VAPID_PUBLIC_KEY")
	privateKey := os.Getenv("VAPID_PRIVATE_KEY")
	if publicKey == "" || privateKey == "" {
		return nil, ErrWebPushNotConfigured
	}
	subscriber := os.Getenv("VAPID_SUBSCRIBER")
	if subscriber == "" {
		subscriber = "admin@stagetrade.app"
	}
	return &WebPushChannel{publicKey: publicKey, privateKey: privateKey, subscriber: subscriber}, nil
}

func (c *WebPushChannel) PublicKey() string {
	return c.publicKey
}

func (c *WebPushChannel) Send(ctx context.Context, sub model.PushSubscription, p Payload) Outcome {
	payload, err := json.Marshal(p)
	if err != nil {
		return OutcomeError
	}
	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}
	resp, err := webpush.SendNotificationWithContext(ctx, payload, s, &webpush.Options{
		Subscriber:      c.subscriber,
		VAPIDPublicKey:  c.publicKey,
		VAPIDPrivateKey: c.privateKey,
		TTL:             60,
	})
	if err != nil {
		log.Printf("[push] webpush send failed: %v", err)
		return OutcomeError
	}
	defer resp.Body.Close()
	// 404/410 means the browser dropped the subscription.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return OutcomeInvalidEndpoint
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return OutcomeSent
	}
	log.Printf("[push] webpush unexpected status %d for %s", resp.StatusCode, sub.Endpoint)
	return OutcomeError
}
