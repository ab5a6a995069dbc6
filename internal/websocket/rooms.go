package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Rooms maps room keys to subscriber sets. Pure in-memory routing state:
// rebuilt from client join requests after a restart, never persisted.
// Rooms are created lazily on first join and dropped when the last
// subscriber leaves.
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[RoomKey]map[string]struct{} // key -> set of connection ids
	byConn map[string]map[RoomKey]struct{} // connection id -> joined keys

	// registered guards against a disconnect overtaking a late join;
	// wired by the Registry at construction.
	registered func(connID string) bool
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[RoomKey]map[string]struct{}),
		byConn: make(map[string]map[RoomKey]struct{}),
	}
}

// Join subscribes a connection to a room. Idempotent: joining twice leaves
// the subscriber set unchanged. Returns ErrUnknownConnection for an id that
// is not currently registered.
func (rm *Rooms) Join(connID string, key RoomKey) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	// Checked under rm.mu so a concurrent Deregister cannot slip its
	// LeaveAll between the check and the insert: the registry deletes the
	// connection before calling LeaveAll, so a passing check means any
	// pending LeaveAll still has to wait for this lock.
	if rm.registered != nil && !rm.registered(connID) {
		return ErrUnknownConnection
	}

	if rm.rooms[key] == nil {
		rm.rooms[key] = make(map[string]struct{})
	}
	rm.rooms[key][connID] = struct{}{}

	if rm.byConn[connID] == nil {
		rm.byConn[connID] = make(map[RoomKey]struct{})
	}
	rm.byConn[connID][key] = struct{}{}

	log.Debug().Str("connID", connID).Str("room", key.String()).Int("roomSize", len(rm.rooms[key])).Msg("ws: joined room")
	return nil
}

// Leave unsubscribes a connection from a room. No-op if not a member.
func (rm *Rooms) Leave(connID string, key RoomKey) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(connID, key)
}

// LeaveAll removes a connection from every room it joined. Called by the
// Registry on deregister.
func (rm *Rooms) LeaveAll(connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for key := range rm.byConn[connID] {
		rm.leaveLocked(connID, key)
	}
}

func (rm *Rooms) leaveLocked(connID string, key RoomKey) {
	if subs, ok := rm.rooms[key]; ok {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(rm.rooms, key)
		}
	}
	if keys, ok := rm.byConn[connID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(rm.byConn, connID)
		}
	}
}

// SubscribersOf returns the connection ids subscribed to a room. An unknown
// room yields an empty set, not an error.
func (rm *Rooms) SubscribersOf(key RoomKey) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	subs := rm.rooms[key]
	out := make([]string, 0, len(subs))
	for id := range subs {
		out = append(out, id)
	}
	return out
}

// RoomsOf returns the keys a connection is subscribed to.
func (rm *Rooms) RoomsOf(connID string) []RoomKey {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	keys := rm.byConn[connID]
	out := make([]RoomKey, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	return out
}

// Len reports the number of live rooms.
func (rm *Rooms) Len() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
