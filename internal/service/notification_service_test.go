package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepass/backend/internal/model"
)

// ==================== Fakes ====================

type fakeReader struct {
	byUser map[uuid.UUID][]model.Notification
	marked map[uuid.UUID][]uuid.UUID
}

func (f *fakeReader) ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	list := f.byUser[userID]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeReader) MarkRead(userID uuid.UUID, ids []uuid.UUID) error {
	if f.marked == nil {
		f.marked = make(map[uuid.UUID][]uuid.UUID)
	}
	f.marked[userID] = append(f.marked[userID], ids...)
	return nil
}

type registryCall struct {
	userID     uuid.UUID
	token      string
	deviceType string
}

type fakeRegistry struct {
	registered   []registryCall
	unregistered []string
}

func (f *fakeRegistry) Register(userID uuid.UUID, token, deviceType string) error {
	f.registered = append(f.registered, registryCall{userID: userID, token: token, deviceType: deviceType})
	return nil
}

func (f *fakeRegistry) Unregister(token string) error {
	f.unregistered = append(f.unregistered, token)
	return nil
}

// fakeTokenTable mirrors the row-level effect of the repository's Register
// transaction: deactivate the token under any other user, upsert it for the
// registering user, then drop that user's stale inactive rows.
type tokenRow struct {
	userID   uuid.UUID
	token    string
	isActive bool
}

type fakeTokenTable struct {
	mu   sync.Mutex
	rows []*tokenRow
}

func (f *fakeTokenTable) Register(userID uuid.UUID, token, deviceType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows {
		if r.token == token && r.userID != userID {
			r.isActive = false
		}
	}

	upserted := false
	for _, r := range f.rows {
		if r.token == token {
			r.userID = userID
			r.isActive = true
			upserted = true
		}
	}
	if !upserted {
		f.rows = append(f.rows, &tokenRow{userID: userID, token: token, isActive: true})
	}

	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.userID == userID && !r.isActive {
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return nil
}

func (f *fakeTokenTable) Unregister(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.token == token {
			r.isActive = false
		}
	}
	return nil
}

func (f *fakeTokenTable) activeOwners(token string) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owners []uuid.UUID
	for _, r := range f.rows {
		if r.token == token && r.isActive {
			owners = append(owners, r.userID)
		}
	}
	return owners
}

type pushCall struct {
	userID uuid.UUID
	title  string
	data   map[string]string
}

type fakeDispatcher struct {
	calls []pushCall
}

func (f *fakeDispatcher) PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	f.calls = append(f.calls, pushCall{userID: userID, title: title, data: data})
}

type notificationFixture struct {
	service    *NotificationService
	reader     *fakeReader
	registry   *fakeRegistry
	dispatcher *fakeDispatcher

	user *model.User
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()

	user := &model.User{ID: uuid.New(), Name: "Resident", Role: model.RoleResident, IsApproved: true}
	reader := &fakeReader{byUser: map[uuid.UUID][]model.Notification{}}
	registry := &fakeRegistry{}
	dispatcher := &fakeDispatcher{}
	finder := &fakeUserFinder{users: map[uuid.UUID]*model.User{user.ID: user}}

	return &notificationFixture{
		service:    NewNotificationService(reader, registry, finder, dispatcher),
		reader:     reader,
		registry:   registry,
		dispatcher: dispatcher,
		user:       user,
	}
}

// ==================== Tests ====================

func TestList_RespectsLimit(t *testing.T) {
	fx := newNotificationFixture(t)
	for i := 0; i < 5; i++ {
		fx.reader.byUser[fx.user.ID] = append(fx.reader.byUser[fx.user.ID], model.Notification{ID: uuid.New(), UserID: fx.user.ID})
	}

	list, err := fx.service.List(fx.user.ID, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestMarkRead_ScopedToOwner(t *testing.T) {
	fx := newNotificationFixture(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	require.NoError(t, fx.service.MarkRead(fx.user.ID, ids))
	assert.Equal(t, ids, fx.reader.marked[fx.user.ID])
}

func TestRegisterPushToken_Succeeds(t *testing.T) {
	fx := newNotificationFixture(t)
	token := strings.Repeat("x", 32)

	err := fx.service.RegisterPushToken(fx.user.ID, model.RegisterPushTokenRequest{
		Token: token, DeviceType: "android",
	})
	require.NoError(t, err)
	require.Len(t, fx.registry.registered, 1)
	assert.Equal(t, token, fx.registry.registered[0].token)
	assert.Equal(t, "android", fx.registry.registered[0].deviceType)
}

func TestRegisterPushToken_DefaultsDeviceTypeToWeb(t *testing.T) {
	fx := newNotificationFixture(t)

	err := fx.service.RegisterPushToken(fx.user.ID, model.RegisterPushTokenRequest{
		Token: strings.Repeat("x", 32),
	})
	require.NoError(t, err)
	require.Len(t, fx.registry.registered, 1)
	assert.Equal(t, "web", fx.registry.registered[0].deviceType)
}

func TestRegisterPushToken_TooShort(t *testing.T) {
	fx := newNotificationFixture(t)

	err := fx.service.RegisterPushToken(fx.user.ID, model.RegisterPushTokenRequest{Token: "short"})
	assert.ErrorIs(t, err, ErrPushTokenTooShort)
	assert.Empty(t, fx.registry.registered)
}

func TestRegisterPushToken_UnknownUser(t *testing.T) {
	fx := newNotificationFixture(t)

	err := fx.service.RegisterPushToken(uuid.New(), model.RegisterPushTokenRequest{
		Token: strings.Repeat("x", 32),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUnregisterPushToken_UnknownTokenSucceeds(t *testing.T) {
	fx := newNotificationFixture(t)

	require.NoError(t, fx.service.UnregisterPushToken("never-registered-token"))
	assert.Equal(t, []string{"never-registered-token"}, fx.registry.unregistered)
}

func newTokenTableService(t *testing.T) (*NotificationService, *fakeTokenTable, *model.User, *model.User) {
	t.Helper()
	userA := &model.User{ID: uuid.New(), Name: "First Owner", Role: model.RoleResident, IsApproved: true}
	userB := &model.User{ID: uuid.New(), Name: "Second Owner", Role: model.RoleResident, IsApproved: true}
	finder := &fakeUserFinder{users: map[uuid.UUID]*model.User{userA.ID: userA, userB.ID: userB}}
	table := &fakeTokenTable{}
	svc := NewNotificationService(&fakeReader{}, table, finder, &fakeDispatcher{})
	return svc, table, userA, userB
}

func TestRegisterPushToken_ReassignmentLeavesOneActiveOwner(t *testing.T) {
	svc, table, userA, userB := newTokenTableService(t)
	token := "shared-device-token-0001"

	require.NoError(t, svc.RegisterPushToken(userA.ID, model.RegisterPushTokenRequest{Token: token, DeviceType: "android"}))
	require.NoError(t, svc.RegisterPushToken(userB.ID, model.RegisterPushTokenRequest{Token: token, DeviceType: "android"}))

	owners := table.activeOwners(token)
	require.Len(t, owners, 1)
	assert.Equal(t, userB.ID, owners[0])

	// Handing the device back converges the same way
	require.NoError(t, svc.RegisterPushToken(userA.ID, model.RegisterPushTokenRequest{Token: token, DeviceType: "android"}))
	owners = table.activeOwners(token)
	require.Len(t, owners, 1)
	assert.Equal(t, userA.ID, owners[0])
}

func TestRegisterPushToken_ConcurrentReassignmentConverges(t *testing.T) {
	svc, table, userA, userB := newTokenTableService(t)
	token := "shared-device-token-0002"

	var wg sync.WaitGroup
	for _, owner := range []uuid.UUID{userA.ID, userB.ID} {
		owner := owner
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				assert.NoError(t, svc.RegisterPushToken(owner, model.RegisterPushTokenRequest{Token: token, DeviceType: "ios"}))
			}
		}()
	}
	wg.Wait()

	owners := table.activeOwners(token)
	require.Len(t, owners, 1)
	assert.Contains(t, []uuid.UUID{userA.ID, userB.ID}, owners[0])
}

func TestSendTestPush_TaggedAsTest(t *testing.T) {
	fx := newNotificationFixture(t)

	err := fx.service.SendTestPush(context.Background(), model.TestPushRequest{
		UserID: fx.user.ID, Title: "Hello", Body: "Test body",
	})
	require.NoError(t, err)
	require.Len(t, fx.dispatcher.calls, 1)
	assert.Equal(t, model.NotificationTest, fx.dispatcher.calls[0].data["type"])
}

func TestSendTestPush_UnknownUser(t *testing.T) {
	fx := newNotificationFixture(t)

	err := fx.service.SendTestPush(context.Background(), model.TestPushRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, fx.dispatcher.calls)
}
