package push

import (
	"context"
	"errors"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var ErrFCMNotConfigured = errors.New("FIREBASE_PROJECT_ID is not set")

// FCMChannel sends device pushes through Firebase Cloud Messaging.
type FCMChannel struct {
	client *messaging.Client
}

func NewFCMChannel(ctx context.Context) (*FCMChannel, error) {
	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	if projectID == "" {
		return nil, ErrFCMNotConfigured
	}
	var opts []option.ClientOption
	if credFile := os.Getenv("FIREBASE_CREDENTIALS_FILE"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMChannel{client: client}, nil
}

func (c *FCMChannel) Send(ctx context.Context, token string, p Payload) Outcome {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data: p.Data,
	}
	_, err := c.client.Send(ctx, msg)
	if err == nil {
		return OutcomeSent
	}
	if messaging.IsUnregistered(err) {
		return OutcomeInvalidEndpoint
	}
	log.Printf("[push] fcm send failed: %v", err)
	return OutcomeError
}
