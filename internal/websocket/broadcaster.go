package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GroupDirectory answers which groups a user belongs to. The one place the
// broadcast layer reads persisted membership: global presence fan-out.
type GroupDirectory interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

// Broadcaster decides who receives an event and attempts delivery. It is
// stateless per event; the dispatch mutex serializes fan-outs so that two
// events raised on the same room reach every common subscriber in raise
// order. Delivery to one dead connection never blocks the rest: errors are
// logged and the loop moves on, leaving cleanup to the registry.
type Broadcaster struct {
	registry *Registry
	rooms    *Rooms
	groups   GroupDirectory

	mu        sync.Mutex
	delivered atomic.Int64
}

func NewBroadcaster(registry *Registry, rooms *Rooms, groups GroupDirectory) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		rooms:    rooms,
		groups:   groups,
	}
}

// MessageCreated fans a durably stored message out to every subscriber of
// its channel room, the sender's own connections included: a sender's
// second open tab sees its own message too. Callers must only invoke this
// after the persistence gateway has confirmed the write.
func (b *Broadcaster) MessageCreated(env *entity.Message) {
	room := ChannelRoom(env.GroupID, env.Channel)
	ev := NewEvent(OutNewMessage, room.String(), env)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliverLocked(b.rooms.SubscribersOf(room), ev, nil)
}

// TypingChanged announces a typing indicator to the channel room, excluding
// every connection of the typist: no typing echo to self, across tabs.
// Transient and fire-and-forget; a lost delivery is re-announced by the
// next keystroke.
func (b *Broadcaster) TypingChanged(userID, groupID, channel string, typing bool) {
	room := ChannelRoom(groupID, channel)
	ev := NewEvent(OutUserTyping, room.String(), TypingPayload{UserID: userID, Typing: typing})
	exclude := b.registry.ConnectionsOf(userID)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliverLocked(b.rooms.SubscribersOf(room), ev, exclude)
}

// PresenceChanged broadcasts a status transition to every group room the
// user belongs to, deduplicated so each connection gets exactly one copy
// even when it shares several groups with the user.
func (b *Broadcaster) PresenceChanged(userID string, status Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	groupIDs, err := b.groups.GroupsOf(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("ws: group lookup failed, presence not broadcast")
		return
	}

	seen := make(map[string]struct{})
	var targets []string
	for _, gid := range groupIDs {
		for _, connID := range b.rooms.SubscribersOf(GroupRoom(gid)) {
			if _, dup := seen[connID]; dup {
				continue
			}
			seen[connID] = struct{}{}
			targets = append(targets, connID)
		}
	}

	ev := NewEvent(OutStatusChanged, "", StatusPayload{UserID: userID, Status: string(status)})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliverLocked(targets, ev, nil)
}

// MessageError reports a persistence failure to the originating connection
// only. Nobody else ever learns the message existed.
func (b *Broadcaster) MessageError(connID, groupID, channel, reason string) {
	ev := NewEvent(OutMessageError, "", MessageErrorPayload{GroupID: groupID, Channel: channel, Error: reason})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliverLocked([]string{connID}, ev, nil)
}

// Delivered reports the total number of event copies handed to transports.
func (b *Broadcaster) Delivered() int64 {
	return b.delivered.Load()
}

func (b *Broadcaster) deliverLocked(connIDs []string, ev Event, exclude map[string]struct{}) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("ws: failed to marshal event")
		return
	}

	for _, connID := range connIDs {
		if _, skip := exclude[connID]; skip {
			continue
		}
		sender, ok := b.registry.SenderOf(connID)
		if !ok {
			continue
		}
		if err := sender.Send(data); err != nil {
			// stale transport; the registry sweep is the cleanup path
			log.Warn().Err(err).Str("connID", connID).Str("type", ev.Type).Msg("ws: delivery failed, skipping")
			continue
		}
		b.delivered.Add(1)
	}
}
