package hub_handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/websocket"
)

type HubHandler struct {
	hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{hub: hub}
}

func (h *HubHandler) Health(w http.ResponseWriter, r *http.Request) *errors.AppError {
	handlers.CreateResponse(w, http.StatusOK, "OK", "service is healthy", map[string]string{"status": "up"})
	return nil
}

func (h *HubHandler) Stats(w http.ResponseWriter, r *http.Request) *errors.AppError {
	handlers.CreateResponse(w, http.StatusOK, "OK", "", h.hub.Stats())
	return nil
}

type roomStats struct {
	Room        string `json:"room"`
	Subscribers int    `json:"subscribers"`
}

// RoomStats reports live subscriber counts. Without a channel query it
// covers the group room, with one it covers that channel room.
func (h *HubHandler) RoomStats(w http.ResponseWriter, r *http.Request) *errors.AppError {
	groupID := chi.URLParam(r, "groupId")

	key := websocket.GroupRoom(groupID)
	if channel := r.URL.Query().Get("channel"); channel != "" {
		key = websocket.ChannelRoom(groupID, channel)
	}

	stats := roomStats{
		Room:        key.String(),
		Subscribers: len(h.hub.Rooms.SubscribersOf(key)),
	}
	handlers.CreateResponse(w, http.StatusOK, "OK", "", stats)
	return nil
}

func (h *HubHandler) UserStatus(w http.ResponseWriter, r *http.Request) *errors.AppError {
	userID := chi.URLParam(r, "userId")
	record := h.hub.Presence.Get(userID)
	handlers.CreateResponse(w, http.StatusOK, "OK", "", record)
	return nil
}
