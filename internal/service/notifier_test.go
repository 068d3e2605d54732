package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/pkg/push"
)

// ==================== Fakes ====================

type fakeUserFinder struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserFinder) FindByID(id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeNotificationStore struct {
	created   []*model.Notification
	createErr error
}

func (f *fakeNotificationStore) Create(n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = uuid.New()
	f.created = append(f.created, n)
	return nil
}

type fakeTokenStore struct {
	tokens      map[uuid.UUID][]model.PushToken
	lookupErr   error
	deactivated [][]string
}

func (f *fakeTokenStore) ActiveTokensForUser(userID uuid.UUID) ([]model.PushToken, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.tokens[userID], nil
}

func (f *fakeTokenStore) DeactivateAll(tokens []string) (int64, error) {
	f.deactivated = append(f.deactivated, tokens)
	return int64(len(tokens)), nil
}

// fakeSender scripts a delivery result per token; unscripted tokens succeed
type fakeSender struct {
	results map[string]push.DeliveryResult
	sent    []string
}

func (f *fakeSender) Send(ctx context.Context, token, title, body string, data map[string]string) push.DeliveryResult {
	f.sent = append(f.sent, token)
	if r, ok := f.results[token]; ok {
		return r
	}
	return push.DeliveryResult{Token: token, Success: true}
}

func (f *fakeSender) SendAll(ctx context.Context, tokens []string, title, body string, data map[string]string) []push.DeliveryResult {
	out := make([]push.DeliveryResult, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, f.Send(ctx, t, title, body, data))
	}
	return out
}

type notifierFixture struct {
	notifier      *Notifier
	users         *fakeUserFinder
	notifications *fakeNotificationStore
	tokens        *fakeTokenStore
	presence      *fakePresence
	sender        *fakeSender

	resident *model.User
}

func newNotifierFixture(t *testing.T) *notifierFixture {
	t.Helper()

	resident := &model.User{ID: uuid.New(), Name: "Resident", Role: model.RoleResident, IsApproved: true}

	users := &fakeUserFinder{users: map[uuid.UUID]*model.User{resident.ID: resident}}
	notifications := &fakeNotificationStore{}
	tokens := &fakeTokenStore{tokens: map[uuid.UUID][]model.PushToken{}}
	presence := &fakePresence{online: map[uuid.UUID]bool{}}
	sender := &fakeSender{results: map[string]push.DeliveryResult{}}

	return &notifierFixture{
		notifier:      NewNotifier(users, notifications, tokens, presence, sender),
		users:         users,
		notifications: notifications,
		tokens:        tokens,
		presence:      presence,
		sender:        sender,
		resident:      resident,
	}
}

func (fx *notifierFixture) giveTokens(userID uuid.UUID, values ...string) {
	for _, v := range values {
		fx.tokens.tokens[userID] = append(fx.tokens.tokens[userID], model.PushToken{
			ID:       uuid.New(),
			UserID:   userID,
			Token:    v,
			IsActive: true,
		})
	}
}

// ==================== Dispatch ====================

func TestDispatch_PersistsAndDelivers(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.giveTokens(fx.resident.ID, "token-a", "token-b")

	n := fx.notifier.Dispatch(context.Background(), fx.resident.ID,
		model.NotificationNewVisitor, "New visitor Alice has arrived at Flat 101",
		map[string]interface{}{"guestName": "Alice"})

	require.NotNil(t, n)
	assert.Equal(t, fx.resident.ID, n.UserID)
	assert.False(t, n.IsRead)
	require.Len(t, fx.notifications.created, 1)

	// Real-time attempt went to the one recipient
	require.Len(t, fx.presence.sent, 1)
	assert.Equal(t, model.WSEventNotification, fx.presence.sent[0].event)
	assert.Equal(t, fx.resident.ID, fx.presence.sent[0].userID)

	// Both endpoints were attempted, none pruned
	assert.ElementsMatch(t, []string{"token-a", "token-b"}, fx.sender.sent)
	assert.Empty(t, fx.tokens.deactivated)
}

func TestDispatch_PersistsWithNoDeliveryChannels(t *testing.T) {
	fx := newNotifierFixture(t)

	// No push tokens, no open connection: the row still lands
	n := fx.notifier.Dispatch(context.Background(), fx.resident.ID,
		model.NotificationNewVisitor, "msg", nil)

	require.NotNil(t, n)
	require.Len(t, fx.notifications.created, 1)
	assert.Empty(t, fx.sender.sent)
}

func TestDispatch_UnknownRecipient(t *testing.T) {
	fx := newNotifierFixture(t)

	n := fx.notifier.Dispatch(context.Background(), uuid.New(),
		model.NotificationNewVisitor, "msg", nil)

	assert.Nil(t, n)
	assert.Empty(t, fx.notifications.created)
	assert.Empty(t, fx.presence.sent)
	assert.Empty(t, fx.sender.sent)
}

func TestDispatch_PersistFailureSwallowed(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.notifications.createErr = errors.New("connection refused")

	n := fx.notifier.Dispatch(context.Background(), fx.resident.ID,
		model.NotificationNewVisitor, "msg", nil)

	assert.Nil(t, n)
	assert.Empty(t, fx.presence.sent)
	assert.Empty(t, fx.sender.sent)
}

func TestDispatch_ReturnsRowDespiteDeliveryFailure(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.giveTokens(fx.resident.ID, "token-a")
	fx.sender.results["token-a"] = push.DeliveryResult{
		Token: "token-a", Err: errors.New("gateway unreachable"),
	}

	n := fx.notifier.Dispatch(context.Background(), fx.resident.ID,
		model.NotificationNewVisitor, "msg", nil)

	require.NotNil(t, n)
	require.Len(t, fx.notifications.created, 1)
}

// ==================== PushToUser ====================

func TestPushToUser_PrunesOnlyPermanentlyDeadTokens(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.giveTokens(fx.resident.ID, "alive", "dead", "flaky")
	fx.sender.results["dead"] = push.DeliveryResult{
		Token: "dead", PermanentFailure: true, Err: errors.New("unregistered"),
	}
	fx.sender.results["flaky"] = push.DeliveryResult{
		Token: "flaky", Err: errors.New("timeout"),
	}

	fx.notifier.PushToUser(context.Background(), fx.resident.ID, "Title", "Body", nil)

	require.Len(t, fx.tokens.deactivated, 1)
	assert.Equal(t, []string{"dead"}, fx.tokens.deactivated[0])
}

func TestPushToUser_TransientFailuresNeverPrune(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.giveTokens(fx.resident.ID, "flaky")
	fx.sender.results["flaky"] = push.DeliveryResult{
		Token: "flaky", Err: errors.New("deadline exceeded"),
	}

	fx.notifier.PushToUser(context.Background(), fx.resident.ID, "Title", "Body", nil)

	assert.Empty(t, fx.tokens.deactivated)
}

func TestPushToUser_NoTokensIsNoOp(t *testing.T) {
	fx := newNotifierFixture(t)

	fx.notifier.PushToUser(context.Background(), fx.resident.ID, "Title", "Body", nil)

	assert.Empty(t, fx.sender.sent)
	assert.Empty(t, fx.tokens.deactivated)
}

func TestPushToUser_TokenLookupFailureIsSilent(t *testing.T) {
	fx := newNotifierFixture(t)
	fx.tokens.lookupErr = errors.New("connection refused")

	fx.notifier.PushToUser(context.Background(), fx.resident.ID, "Title", "Body", nil)

	assert.Empty(t, fx.sender.sent)
}

// ==================== Named wrappers ====================

func TestNotifyNewVisitor_TypeAndMessage(t *testing.T) {
	fx := newNotifierFixture(t)

	n := fx.notifier.NotifyNewVisitor(context.Background(), fx.resident.ID, "Alice", "101")

	require.NotNil(t, n)
	assert.Equal(t, model.NotificationNewVisitor, n.Type)
	assert.Equal(t, "New visitor Alice has arrived at Flat 101", n.Message)
	assert.Equal(t, "Alice", n.Metadata["guestName"])
}

func TestNotifyUserApproved_TypeAndMessage(t *testing.T) {
	fx := newNotifierFixture(t)

	n := fx.notifier.NotifyUserApproved(context.Background(), fx.resident.ID, "Resident")

	require.NotNil(t, n)
	assert.Equal(t, model.NotificationUserApproved, n.Type)
	assert.Equal(t, "Your account has been approved. Welcome Resident!", n.Message)
}
