package push

import (
	"context"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Per-send deadline. A timed-out send is a transient failure.
const sendTimeout = 10 * time.Second

// FCM sends push notifications through Firebase Cloud Messaging
type FCM struct {
	client *messaging.Client
}

// NewFCM creates the FCM sender. Missing or bad credentials disable push
// delivery instead of blocking server startup; a nil client is safe to use.
func NewFCM(credentialsFile string) (*FCM, error) {
	if credentialsFile == "" {
		log.Println("⚠️ Firebase credentials not provided, push notifications disabled")
		return &FCM{}, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("⚠️ Failed to initialize Firebase app: %v (push notifications disabled)", err)
		return &FCM{}, nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to get messaging client: %v (push notifications disabled)", err)
		return &FCM{}, nil
	}

	log.Println("✅ Firebase FCM initialized")
	return &FCM{client: client}, nil
}

// Send delivers one push message to one device token
func (f *FCM) Send(ctx context.Context, token, title, body string, data map[string]string) DeliveryResult {
	if f == nil || f.client == nil {
		return DeliveryResult{Token: token}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := f.client.Send(ctx, msg); err != nil {
		return DeliveryResult{
			Token:            token,
			PermanentFailure: isPermanent(err),
			Err:              err,
		}
	}
	return DeliveryResult{Token: token, Success: true}
}

// SendAll delivers the same message to many tokens, returning one result per
// token in the input order.
func (f *FCM) SendAll(ctx context.Context, tokens []string, title, body string, data map[string]string) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(tokens))
	for _, token := range tokens {
		results = append(results, f.Send(ctx, token, title, body, data))
	}
	return results
}

// isPermanent classifies gateway errors. Only the unregistered-token and
// sender-mismatch classes mean the endpoint is dead for good.
func isPermanent(err error) bool {
	return messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err)
}
