package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/pkg/push"
)

// Presence is the addressing table for open real-time connections
type Presence interface {
	SendToUser(userID uuid.UUID, event string, payload interface{}) bool
	BroadcastToRole(role model.Role, event string, payload interface{})
}

// NotificationStore persists in-app notification rows
type NotificationStore interface {
	Create(n *model.Notification) error
}

// PushTokenStore reads and prunes durable push endpoints
type PushTokenStore interface {
	ActiveTokensForUser(userID uuid.UUID) ([]model.PushToken, error)
	DeactivateAll(tokens []string) (int64, error)
}

// UserFinder looks up notification recipients
type UserFinder interface {
	FindByID(id uuid.UUID) (*model.User, error)
}

// Notifier dispatches events to users over both channels: the persisted
// in-app notification (pushed in real time when the user is connected) and
// every registered push endpoint. Delivery is best-effort throughout; the
// persisted row is the only success criterion, and no failure here ever
// propagates to the business operation that triggered the dispatch.
type Notifier struct {
	users         UserFinder
	notifications NotificationStore
	tokens        PushTokenStore
	presence      Presence
	sender        push.Sender
}

func NewNotifier(
	users UserFinder,
	notifications NotificationStore,
	tokens PushTokenStore,
	presence Presence,
	sender push.Sender,
) *Notifier {
	return &Notifier{
		users:         users,
		notifications: notifications,
		tokens:        tokens,
		presence:      presence,
		sender:        sender,
	}
}

// Dispatch persists a notification for a user and attempts real-time and push
// delivery. Returns nil (logged, never raised) when the recipient is unknown
// or the row cannot be persisted; otherwise returns the persisted row no
// matter how delivery went.
func (n *Notifier) Dispatch(ctx context.Context, userID uuid.UUID, typ, message string, metadata map[string]interface{}) *model.Notification {
	if _, err := n.users.FindByID(userID); err != nil {
		log.Printf("notification dropped: unknown recipient %s: %v", userID, err)
		return nil
	}

	notification := &model.Notification{
		UserID:   userID,
		Type:     typ,
		Message:  message,
		Metadata: datatypes.JSONMap(metadata),
		IsRead:   false,
	}
	if err := n.notifications.Create(notification); err != nil {
		log.Printf("notification persist failed for %s: %v", userID, err)
		return nil
	}

	// Real-time: fire-and-forget; a dead connection is the hub's problem
	n.presence.SendToUser(userID, model.WSEventNotification, notification)

	// Durable: every active endpoint, pruning the ones the gateway reports dead
	data := stringifyMetadata(metadata)
	data["type"] = typ
	data["notification_id"] = notification.ID.String()
	n.PushToUser(ctx, userID, titleFor(typ), message, data)

	return notification
}

// PushToUser attempts push delivery to every active endpoint of a user,
// deactivating tokens the gateway reports permanently dead. Transient
// failures (gateway unreachable, timeout) leave tokens untouched.
func (n *Notifier) PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	tokens, err := n.tokens.ActiveTokensForUser(userID)
	if err != nil {
		log.Printf("push skipped for %s: token lookup failed: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	var dead []string
	for _, result := range n.sender.SendAll(ctx, values, title, body, data) {
		if result.Success {
			continue
		}
		if result.PermanentFailure {
			dead = append(dead, result.Token)
		} else if result.Err != nil {
			log.Printf("push transient failure for %s: %v", userID, result.Err)
		}
	}
	if len(dead) > 0 {
		count, err := n.tokens.DeactivateAll(dead)
		if err != nil {
			log.Printf("failed to deactivate %d dead push tokens: %v", len(dead), err)
		} else {
			log.Printf("deactivated %d dead push tokens for %s", count, userID)
		}
	}
}

// ==================== Named event wrappers ====================

// NotifyNewVisitor tells a resident their invited guest record was created
func (n *Notifier) NotifyNewVisitor(ctx context.Context, residentID uuid.UUID, guestName, flatNumber string) *model.Notification {
	return n.Dispatch(ctx, residentID, model.NotificationNewVisitor,
		fmt.Sprintf("New visitor %s has arrived at Flat %s", guestName, flatNumber),
		map[string]interface{}{"guestName": guestName, "flatNumber": flatNumber})
}

// NotifyVisitApproved tells a security user a visit was approved/checked in
func (n *Notifier) NotifyVisitApproved(ctx context.Context, securityID uuid.UUID, guestName, flatNumber string) *model.Notification {
	return n.Dispatch(ctx, securityID, model.NotificationVisitApproved,
		fmt.Sprintf("Visit approved for %s at Flat %s", guestName, flatNumber),
		map[string]interface{}{"guestName": guestName, "flatNumber": flatNumber})
}

// NotifyVisitRejected tells a security user a visit was rejected
func (n *Notifier) NotifyVisitRejected(ctx context.Context, securityID uuid.UUID, guestName, flatNumber, reason string) *model.Notification {
	return n.Dispatch(ctx, securityID, model.NotificationVisitRejected,
		fmt.Sprintf("Visit rejected for %s at Flat %s: %s", guestName, flatNumber, reason),
		map[string]interface{}{"guestName": guestName, "flatNumber": flatNumber, "reason": reason})
}

// NotifyNewUser tells an admin a resident registration awaits approval
func (n *Notifier) NotifyNewUser(ctx context.Context, adminID uuid.UUID, userName, phone string) *model.Notification {
	return n.Dispatch(ctx, adminID, model.NotificationNewUser,
		fmt.Sprintf("New user registration: %s (%s)", userName, phone),
		map[string]interface{}{"userName": userName, "phone": phone})
}

// NotifyUserApproved tells a resident their account was approved
func (n *Notifier) NotifyUserApproved(ctx context.Context, userID uuid.UUID, userName string) *model.Notification {
	return n.Dispatch(ctx, userID, model.NotificationUserApproved,
		fmt.Sprintf("Your account has been approved. Welcome %s!", userName),
		map[string]interface{}{"userName": userName})
}

// NotifyManualVisitor tells a resident a walk-in guest awaits their approval
func (n *Notifier) NotifyManualVisitor(ctx context.Context, residentID uuid.UUID, guestName, flatNumber string) *model.Notification {
	return n.Dispatch(ctx, residentID, model.NotificationNewVisitor,
		fmt.Sprintf("New visitor %s has arrived at Flat %s", guestName, flatNumber),
		map[string]interface{}{"guestName": guestName, "flatNumber": flatNumber})
}

func titleFor(typ string) string {
	switch typ {
	case model.NotificationNewVisitor:
		return "New Visitor Request"
	case model.NotificationVisitApproved:
		return "Visitor Approved"
	case model.NotificationVisitRejected:
		return "Visitor Rejected"
	case model.NotificationNewUser:
		return "New Registration"
	case model.NotificationUserApproved:
		return "Account Approved"
	default:
		return "New Notification"
	}
}

func stringifyMetadata(metadata map[string]interface{}) map[string]string {
	data := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		data[k] = fmt.Sprint(v)
	}
	return data
}
