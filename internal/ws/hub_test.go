package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepass/backend/internal/model"
)

func newTestClient(hub *Hub, userID uuid.UUID, role model.Role) *Client {
	client := NewClient(hub, nil)
	client.UserID = userID
	client.Role = role
	return client
}

func drain(t *testing.T, client *Client) model.WSEvent {
	t.Helper()
	select {
	case data := <-client.send:
		var event model.WSEvent
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected a queued message")
		return model.WSEvent{}
	}
}

func TestSendToUser_Delivered(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, uuid.New(), model.RoleResident)
	hub.Register(client)

	ok := hub.SendToUser(client.UserID, model.WSEventNotification, map[string]string{"hello": "world"})
	assert.True(t, ok)

	event := drain(t, client)
	assert.Equal(t, model.WSEventNotification, event.Type)
}

func TestSendToUser_NotConnected(t *testing.T) {
	hub := NewHub()

	ok := hub.SendToUser(uuid.New(), model.WSEventNotification, nil)
	assert.False(t, ok)
}

func TestRegister_ReplacesPriorConnection(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID, model.RoleResident)
	second := newTestClient(hub, userID, model.RoleResident)
	hub.Register(first)
	hub.Register(second)

	assert.Equal(t, 1, hub.OnlineCount())

	// Deliveries land on the new connection only
	ok := hub.SendToUser(userID, model.WSEventNotification, nil)
	assert.True(t, ok)
	drain(t, second)

	// The old connection's channel was closed
	_, open := <-first.send
	assert.False(t, open)
}

func TestUnregister_StaleConnectionIsNoOp(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID, model.RoleResident)
	second := newTestClient(hub, userID, model.RoleResident)
	hub.Register(first)
	hub.Register(second)

	// The replaced connection's read pump shuts down late; its unregister
	// must not evict the live connection.
	hub.Unregister(first)

	assert.True(t, hub.IsUserOnline(userID))
	ok := hub.SendToUser(userID, model.WSEventNotification, nil)
	assert.True(t, ok)
}

func TestBroadcastToRole_OnlyThatRole(t *testing.T) {
	hub := NewHub()
	guard1 := newTestClient(hub, uuid.New(), model.RoleSecurity)
	guard2 := newTestClient(hub, uuid.New(), model.RoleSecurity)
	resident := newTestClient(hub, uuid.New(), model.RoleResident)
	hub.Register(guard1)
	hub.Register(guard2)
	hub.Register(resident)

	hub.BroadcastToRole(model.RoleSecurity, model.WSEventRefreshVisitorLog, nil)

	drain(t, guard1)
	drain(t, guard2)
	select {
	case <-resident.send:
		t.Fatal("resident must not receive a security broadcast")
	default:
	}
}

func TestBroadcastToRole_EmptyRoleIsNoOp(t *testing.T) {
	hub := NewHub()
	resident := newTestClient(hub, uuid.New(), model.RoleResident)
	hub.Register(resident)

	// No admins connected; nothing should happen
	hub.BroadcastToRole(model.RoleAdmin, model.WSEventRefreshPendingUsers, nil)

	select {
	case <-resident.send:
		t.Fatal("unexpected delivery")
	default:
	}
}

func TestTrySend_FullBufferDropsClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, uuid.New(), model.RoleResident)
	hub.Register(client)

	for i := 0; i < cap(client.send)+1; i++ {
		client.trySend([]byte("x"))
	}

	// The channel was closed when the buffer overflowed; further sends must
	// not panic.
	client.trySend([]byte("y"))
}
