package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saff9/campus-connect/internal/entity"
)

// fakeSender records delivered frames in memory.
type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (s *fakeSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("transport gone")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.frames = append(s.frames, cp)
	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) events(t *testing.T) []Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0, len(s.frames))
	for _, frame := range s.frames {
		var ev Event
		require.NoError(t, json.Unmarshal(frame, &ev))
		out = append(out, ev)
	}
	return out
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// staticDirectory serves group membership from a fixed map.
type staticDirectory struct {
	groups map[string][]string
	err    error
}

func (d *staticDirectory) GroupsOf(_ context.Context, userID string) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.groups[userID], nil
}

func newTestHub(groups map[string][]string) *Hub {
	return NewHub(&staticDirectory{groups: groups})
}

func connect(t *testing.T, hub *Hub, userID string) (string, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	connID := hub.Registry.Register(sender)
	require.NoError(t, hub.Registry.AttachIdentity(connID, userID))
	return connID, sender
}

func TestMessageCreatedReachesAllChannelSubscribersIncludingSender(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	aliceConn, aliceSender := connect(t, hub, "alice")
	bobConn, bobSender := connect(t, hub, "bob")
	_, otherSender := connect(t, hub, "carol") // never joins the room

	require.NoError(t, hub.Rooms.Join(aliceConn, room))
	require.NoError(t, hub.Rooms.Join(bobConn, room))

	hub.Broadcaster.MessageCreated(&entity.Message{
		GroupID:  "g1",
		Channel:  "general",
		SenderID: "alice",
		Type:     entity.MessageText,
		Content:  "hello",
	})

	require.Equal(t, 1, aliceSender.count(), "sender's own connection receives the message")
	require.Equal(t, 1, bobSender.count())
	assert.Equal(t, 0, otherSender.count())

	ev := bobSender.events(t)[0]
	assert.Equal(t, OutNewMessage, ev.Type)
	assert.Equal(t, "g1#general", ev.Room)
}

func TestTypingExcludesEveryConnectionOfTheTypist(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	tabOne, tabOneSender := connect(t, hub, "alice")
	tabTwo, tabTwoSender := connect(t, hub, "alice")
	bobConn, bobSender := connect(t, hub, "bob")

	for _, id := range []string{tabOne, tabTwo, bobConn} {
		require.NoError(t, hub.Rooms.Join(id, room))
	}

	hub.Broadcaster.TypingChanged("alice", "g1", "general", true)

	assert.Equal(t, 0, tabOneSender.count())
	assert.Equal(t, 0, tabTwoSender.count())
	require.Equal(t, 1, bobSender.count())
	assert.Equal(t, OutUserTyping, bobSender.events(t)[0].Type)
}

func TestPresenceChangedDeduplicatesSharedGroups(t *testing.T) {
	hub := newTestHub(map[string][]string{
		"alice": {"g1", "g2"},
	})
	defer hub.Close()

	// bob shares both groups with alice
	bobConn, bobSender := connect(t, hub, "bob")
	require.NoError(t, hub.Rooms.Join(bobConn, GroupRoom("g1")))
	require.NoError(t, hub.Rooms.Join(bobConn, GroupRoom("g2")))

	hub.Broadcaster.PresenceChanged("alice", StatusAway)

	require.Equal(t, 1, bobSender.count(), "one copy per connection, not per shared group")
	ev := bobSender.events(t)[0]
	assert.Equal(t, OutStatusChanged, ev.Type)
}

func TestPresenceChangedSkipsFanoutWhenDirectoryFails(t *testing.T) {
	dir := &staticDirectory{err: errors.New("db down")}
	hub := NewHub(dir)
	defer hub.Close()

	bobConn, bobSender := connect(t, hub, "bob")
	require.NoError(t, hub.Rooms.Join(bobConn, GroupRoom("g1")))

	hub.Broadcaster.PresenceChanged("alice", StatusOnline)

	assert.Equal(t, 0, bobSender.count())
}

func TestMessageErrorOnlyReachesOriginatingConnection(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	aliceConn, aliceSender := connect(t, hub, "alice")
	bobConn, bobSender := connect(t, hub, "bob")
	require.NoError(t, hub.Rooms.Join(aliceConn, room))
	require.NoError(t, hub.Rooms.Join(bobConn, room))

	hub.Broadcaster.MessageError(aliceConn, "g1", "general", "failed to send message")

	require.Equal(t, 1, aliceSender.count())
	assert.Equal(t, OutMessageError, aliceSender.events(t)[0].Type)
	assert.Equal(t, 0, bobSender.count(), "persistence failures stay private to the sender")
}

func TestDeadSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	deadConn, _ := connect(t, hub, "alice")
	hub.Registry.mu.Lock()
	hub.Registry.conns[deadConn].Sender.(*fakeSender).fail = true
	hub.Registry.mu.Unlock()
	bobConn, bobSender := connect(t, hub, "bob")

	require.NoError(t, hub.Rooms.Join(deadConn, room))
	require.NoError(t, hub.Rooms.Join(bobConn, room))

	hub.Broadcaster.MessageCreated(&entity.Message{GroupID: "g1", Channel: "general", Content: "hi"})

	require.Equal(t, 1, bobSender.count())
}

func TestRoomDeliveryKeepsRaiseOrder(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	bobConn, bobSender := connect(t, hub, "bob")
	require.NoError(t, hub.Rooms.Join(bobConn, room))

	const n = 50
	for i := 0; i < n; i++ {
		hub.Broadcaster.MessageCreated(&entity.Message{
			GroupID: "g1",
			Channel: "general",
			Content: fmt.Sprintf("msg-%03d", i),
		})
	}

	events := bobSender.events(t)
	require.Len(t, events, n)
	for i, ev := range events {
		payload, ok := ev.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("msg-%03d", i), payload["content"])
	}
}

func TestDeliveredCounterTracksCopies(t *testing.T) {
	hub := newTestHub(nil)
	defer hub.Close()

	room := ChannelRoom("g1", "general")
	for _, u := range []string{"alice", "bob", "carol"} {
		connID, _ := connect(t, hub, u)
		require.NoError(t, hub.Rooms.Join(connID, room))
	}

	hub.Broadcaster.MessageCreated(&entity.Message{GroupID: "g1", Channel: "general", Content: "hi"})

	assert.Equal(t, int64(3), hub.Broadcaster.Delivered())
}
