package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sender is the transport side of a connection as the registry sees it.
// *Client implements it over a gorilla conn; tests implement it in memory.
type Sender interface {
	Send(data []byte) error
	Close() error
}

// Connection is one live transport session. Owned exclusively by the
// Registry; everything else refers to it by id.
type Connection struct {
	ID          string
	UserID      string // empty until AttachIdentity
	Sender      Sender
	ConnectedAt time.Time
	LastSeen    time.Time
}

// Registry owns connection lifecycle: registration, identity attachment,
// and teardown. Deregistering removes the connection from every room and
// updates the user's presence count.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	byUser map[string]map[string]struct{} // userID -> set of connection ids

	rooms    *Rooms
	presence *Presence
}

func NewRegistry(rooms *Rooms, presence *Presence) *Registry {
	r := &Registry{
		conns:    make(map[string]*Connection),
		byUser:   make(map[string]map[string]struct{}),
		rooms:    rooms,
		presence: presence,
	}
	rooms.registered = r.IsRegistered
	return r
}

// Register admits a fresh transport session and returns its opaque id.
// The connection starts with no identity and no rooms.
func (r *Registry) Register(s Sender) string {
	now := time.Now()
	conn := &Connection{
		ID:          uuid.New().String(),
		Sender:      s,
		ConnectedAt: now,
		LastSeen:    now,
	}

	r.mu.Lock()
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	log.Info().Str("connID", conn.ID).Msg("ws: connection registered")
	return conn.ID
}

// AttachIdentity binds a verified user to a connection and bumps the
// user's open-connection count. Verification is the caller's business;
// by the time this is called the user id is trusted.
func (r *Registry) AttachIdentity(connID, userID string) error {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownConnection
	}
	conn.UserID = userID
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[string]struct{})
	}
	r.byUser[userID][connID] = struct{}{}
	r.mu.Unlock()

	r.presence.ConnectionOpened(userID)

	log.Info().Str("connID", connID).Str("userID", userID).Msg("ws: identity attached")
	return nil
}

// Deregister tears a connection down: leaves every room, drops the user
// index entry, and decrements presence. Idempotent: a disconnect can race
// with the cleanup sweep, so an unknown id is a no-op.
func (r *Registry) Deregister(connID string) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, connID)
	if conn.UserID != "" {
		if set, ok := r.byUser[conn.UserID]; ok {
			delete(set, connID)
			if len(set) == 0 {
				delete(r.byUser, conn.UserID)
			}
		}
	}
	r.mu.Unlock()

	r.rooms.LeaveAll(connID)
	if conn.UserID != "" {
		r.presence.ConnectionClosed(conn.UserID)
	}

	log.Info().Str("connID", connID).Str("userID", conn.UserID).Msg("ws: connection deregistered")
}

// IsRegistered reports whether the id refers to a live connection.
func (r *Registry) IsRegistered(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[connID]
	return ok
}

// UserOf returns the user bound to a connection, if any.
func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	if !ok || conn.UserID == "" {
		return "", false
	}
	return conn.UserID, true
}

// ConnectionsOf returns the ids of every open connection for a user. Used
// for typing self-exclusion: a typist's second tab must not see its own
// typing indicator either.
func (r *Registry) ConnectionsOf(userID string) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	out := make(map[string]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}

// SenderOf returns the transport for a connection id.
func (r *Registry) SenderOf(connID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return conn.Sender, true
}

// Touch records liveness for the heartbeat sweep.
func (r *Registry) Touch(connID string) {
	r.mu.Lock()
	if conn, ok := r.conns[connID]; ok {
		conn.LastSeen = time.Now()
	}
	r.mu.Unlock()
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot returns a copy of the current connections for the stats API.
func (r *Registry) Snapshot() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		out = append(out, *conn)
	}
	return out
}

// Sweep force-deregisters every connection silent for longer than maxIdle.
// This is the only timeout in the core: it bounds how long a dead transport
// can linger in room subscriber sets.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := time.Now()

	r.mu.RLock()
	var stale []*Connection
	for _, conn := range r.conns {
		if now.Sub(conn.LastSeen) > maxIdle {
			stale = append(stale, conn)
		}
	}
	r.mu.RUnlock()

	for _, conn := range stale {
		log.Info().Str("connID", conn.ID).Str("userID", conn.UserID).Msg("ws: sweeping silent connection")
		_ = conn.Sender.Close()
		r.Deregister(conn.ID)
	}
	return len(stale)
}
