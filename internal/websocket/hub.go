package websocket

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Hub bundles the four realtime components, constructed once per process
// and passed by handle to everything that needs them. No module-level
// mutable state anywhere in this package.
type Hub struct {
	Registry    *Registry
	Rooms       *Rooms
	Presence    *Presence
	Broadcaster *Broadcaster
}

type HubStats struct {
	Connections int       `json:"connections"`
	Rooms       int       `json:"rooms"`
	OnlineUsers int       `json:"online_users"`
	Delivered   int64     `json:"events_delivered"`
	CollectedAt time.Time `json:"collected_at"`
}

func NewHub(groups GroupDirectory) *Hub {
	rooms := NewRooms()
	presence := NewPresence()
	registry := NewRegistry(rooms, presence)
	broadcaster := NewBroadcaster(registry, rooms, groups)
	presence.SetListener(func(userID string, status Status) {
		broadcaster.PresenceChanged(userID, status)
	})

	return &Hub{
		Registry:    registry,
		Rooms:       rooms,
		Presence:    presence,
		Broadcaster: broadcaster,
	}
}

func (h *Hub) Stats() HubStats {
	return HubStats{
		Connections: h.Registry.Len(),
		Rooms:       h.Rooms.Len(),
		OnlineUsers: len(h.Presence.OnlineUsers()),
		Delivered:   h.Broadcaster.Delivered(),
		CollectedAt: time.Now(),
	}
}

// Close shuts the hub down: every live transport is closed and
// deregistered, then presence dispatch stops.
func (h *Hub) Close() {
	log.Info().Msg("ws: shutting down hub")

	conns := h.Registry.Snapshot()
	for _, conn := range conns {
		_ = conn.Sender.Close()
		h.Registry.Deregister(conn.ID)
	}
	h.Presence.Close()

	log.Info().Int("connections", len(conns)).Msg("ws: hub shutdown completed")
}
