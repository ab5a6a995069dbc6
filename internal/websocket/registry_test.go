package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAttachIdentity(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	sender := &fakeSender{}
	connID := hub.Registry.Register(sender)
	require.True(t, hub.Registry.IsRegistered(connID))

	_, bound := hub.Registry.UserOf(connID)
	assert.False(t, bound, "fresh connection has no identity")

	require.NoError(t, hub.Registry.AttachIdentity(connID, "alice"))
	userID, bound := hub.Registry.UserOf(connID)
	require.True(t, bound)
	assert.Equal(t, "alice", userID)
}

func TestAttachIdentityUnknownConnection(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	err := hub.Registry.AttachIdentity("no-such-conn", "alice")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestDeregisterCleansRoomsAndPresence(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	connID, _ := connect(t, hub, "alice")
	require.NoError(t, hub.Rooms.Join(connID, GroupRoom("g1")))
	require.NoError(t, hub.Rooms.Join(connID, ChannelRoom("g1", "general")))
	require.False(t, hub.Presence.IsOffline("alice"))

	hub.Registry.Deregister(connID)

	assert.False(t, hub.Registry.IsRegistered(connID))
	assert.Empty(t, hub.Rooms.SubscribersOf(GroupRoom("g1")))
	assert.Empty(t, hub.Rooms.SubscribersOf(ChannelRoom("g1", "general")))
	assert.True(t, hub.Presence.IsOffline("alice"))
}

func TestDeregisterIsIdempotent(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	connID, _ := connect(t, hub, "alice")
	hub.Registry.Deregister(connID)
	hub.Registry.Deregister(connID) // second call is a no-op

	rec := hub.Presence.Get("alice")
	assert.Equal(t, 0, rec.Connections, "duplicate deregister must not go negative")
	assert.Equal(t, StatusOffline, rec.Status)
}

func TestConnectionsOfCoversEveryTab(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	one, _ := connect(t, hub, "alice")
	two, _ := connect(t, hub, "alice")
	other, _ := connect(t, hub, "bob")

	conns := hub.Registry.ConnectionsOf("alice")
	assert.Len(t, conns, 2)
	assert.Contains(t, conns, one)
	assert.Contains(t, conns, two)
	assert.NotContains(t, conns, other)
}

func TestSweepRemovesSilentConnections(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	staleConn, staleSender := connect(t, hub, "alice")
	liveConn, _ := connect(t, hub, "bob")
	require.NoError(t, hub.Rooms.Join(staleConn, GroupRoom("g1")))

	// age the stale connection past the idle cutoff
	hub.Registry.mu.Lock()
	hub.Registry.conns[staleConn].LastSeen = time.Now().Add(-2 * time.Minute)
	hub.Registry.mu.Unlock()

	swept := hub.Registry.Sweep(time.Minute)

	assert.Equal(t, 1, swept)
	assert.False(t, hub.Registry.IsRegistered(staleConn))
	assert.True(t, hub.Registry.IsRegistered(liveConn))
	assert.True(t, staleSender.closed)
	assert.Empty(t, hub.Rooms.SubscribersOf(GroupRoom("g1")))
	assert.True(t, hub.Presence.IsOffline("alice"))
}

func TestTouchKeepsConnectionAlive(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	connID, _ := connect(t, hub, "alice")
	hub.Registry.mu.Lock()
	hub.Registry.conns[connID].LastSeen = time.Now().Add(-2 * time.Minute)
	hub.Registry.mu.Unlock()

	hub.Registry.Touch(connID)

	assert.Equal(t, 0, hub.Registry.Sweep(time.Minute))
	assert.True(t, hub.Registry.IsRegistered(connID))
}
