// Package push abstracts the durable push-notification gateway. The concrete
// implementation is Firebase Cloud Messaging; callers only see delivery
// results and the permanent/transient failure distinction that drives token
// pruning.
package push

import "context"

// DeliveryResult reports the outcome of a single push attempt. A permanent
// failure means the endpoint will never succeed again and its token should be
// deactivated; anything else (network error, gateway unreachable, timeout) is
// transient and must leave the token alone.
type DeliveryResult struct {
	Token            string
	Success          bool
	PermanentFailure bool
	Err              error
}

// Sender delivers push notifications to device tokens
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) DeliveryResult
	SendAll(ctx context.Context, tokens []string, title, body string, data map[string]string) []DeliveryResult
}
