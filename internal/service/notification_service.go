package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatepass/backend/internal/model"
)

// FCM rejects obviously truncated registration tokens before they ever reach
// the gateway
const minPushTokenLength = 16

// NotificationReader lists and marks a user's own notifications
type NotificationReader interface {
	ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error)
	MarkRead(userID uuid.UUID, ids []uuid.UUID) error
}

// PushTokenRegistry is the register/unregister surface of the token store
type PushTokenRegistry interface {
	Register(userID uuid.UUID, token, deviceType string) error
	Unregister(token string) error
}

// PushDispatcher sends a direct push, used by the admin test endpoint
type PushDispatcher interface {
	PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// NotificationService backs the notifications and push-token endpoints
type NotificationService struct {
	notifications NotificationReader
	registry      PushTokenRegistry
	users         UserFinder
	dispatcher    PushDispatcher
}

func NewNotificationService(
	notifications NotificationReader,
	registry PushTokenRegistry,
	users UserFinder,
	dispatcher PushDispatcher,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		registry:      registry,
		users:         users,
		dispatcher:    dispatcher,
	}
}

// List returns the user's newest notifications
func (s *NotificationService) List(userID uuid.UUID, limit int) ([]model.Notification, error) {
	return s.notifications.ListForUser(userID, limit)
}

// MarkRead marks the given notifications read. Scoped to the owner: IDs
// belonging to other users are silently skipped.
func (s *NotificationService) MarkRead(userID uuid.UUID, ids []uuid.UUID) error {
	return s.notifications.MarkRead(userID, ids)
}

// RegisterPushToken binds a device token to the user, stealing it from any
// previous owner
func (s *NotificationService) RegisterPushToken(userID uuid.UUID, req model.RegisterPushTokenRequest) error {
	if len(req.Token) < minPushTokenLength {
		return ErrPushTokenTooShort
	}
	if _, err := s.users.FindByID(userID); err != nil {
		return ErrUserNotFound
	}
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "web"
	}
	return s.registry.Register(userID, req.Token, deviceType)
}

// UnregisterPushToken deactivates a token. Unknown tokens succeed: the device
// is gone either way.
func (s *NotificationService) UnregisterPushToken(token string) error {
	return s.registry.Unregister(token)
}

// SendTestPush lets an admin verify a user's push path end to end
func (s *NotificationService) SendTestPush(ctx context.Context, req model.TestPushRequest) error {
	if _, err := s.users.FindByID(req.UserID); err != nil {
		return ErrUserNotFound
	}
	s.dispatcher.PushToUser(ctx, req.UserID, req.Title, req.Body, map[string]string{"type": model.NotificationTest})
	return nil
}
