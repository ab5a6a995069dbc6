package websocket

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/entity"
)

// Generic error frame for per-request failures that are not message
// persistence failures (those use message_error).
const OutError = "error"

// AuthenticatorFunc verifies the handshake credentials and returns the
// user id. Identity verification itself lives outside the broadcast layer.
type AuthenticatorFunc func(r *http.Request) (userID string, err error)

// SendMessageInput is the ws-side shape of a send_message request.
type SendMessageInput struct {
	GroupID     string
	Channel     string
	Content     string
	MessageType string
	ReplyTo     string
}

// MessageService persists a message and hands it to the broadcaster. The
// store-then-notify ordering is the service's contract: an error means
// nothing was broadcast.
type MessageService interface {
	Send(ctx context.Context, senderID string, in SendMessageInput) (*entity.Message, error)
}

// Membership authorizes room joins against persisted group membership.
type Membership interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	HasChannel(ctx context.Context, groupID, channel string) (bool, error)
}

// StatusStore persists explicit status changes and last-seen timestamps.
type StatusStore interface {
	SetStatus(ctx context.Context, userID, status string, lastSeen time.Time) error
}

type WSHandler struct {
	Hub        *Hub
	Messages   MessageService
	Membership Membership
	Statuses   StatusStore // optional

	HeartbeatTimeout time.Duration

	authenticator AuthenticatorFunc
	upgrader      websocket.Upgrader
}

func NewWSHandler(hub *Hub, messages MessageService, membership Membership, auth AuthenticatorFunc, allowedOrigins []string) *WSHandler {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	return &WSHandler{
		Hub:              hub,
		Messages:         messages,
		Membership:       membership,
		HeartbeatTimeout: pongWait,
		authenticator:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeWS authenticates the handshake, upgrades, and runs the connection
// until the transport closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authenticator(r)
	if err != nil {
		log.Warn().Err(err).Msg("ws: handshake rejected")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws: upgrade failed")
		return
	}

	client := NewClient(conn)
	connID := h.Hub.Registry.Register(client)
	if err := h.Hub.Registry.AttachIdentity(connID, userID); err != nil {
		// only possible if the sweep fired between the two calls
		_ = client.Close()
		return
	}

	go client.writePump(pingInterval(h.heartbeat()))
	h.readPump(r.Context(), client, connID, userID)
}

// heartbeat returns the effective read timeout, falling back to the
// default when the configured value is unusable.
func (h *WSHandler) heartbeat() time.Duration {
	if h.HeartbeatTimeout <= 0 {
		return pongWait
	}
	return h.HeartbeatTimeout
}

// pingInterval undercuts the read deadline so every healthy connection
// sees a ping before its heartbeat timeout expires, whatever timeout is
// configured.
func pingInterval(timeout time.Duration) time.Duration {
	return timeout * 9 / 10
}

func (h *WSHandler) readPump(ctx context.Context, client *Client, connID, userID string) {
	defer func() {
		h.Hub.Registry.Deregister(connID)
		_ = client.Close()
		if h.Statuses != nil {
			go func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.Statuses.SetStatus(sctx, userID, string(StatusOffline), time.Now()); err != nil {
					log.Warn().Err(err).Str("userID", userID).Msg("ws: failed to persist last seen")
				}
			}()
		}
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(h.heartbeat()))
	client.Conn.SetPongHandler(func(string) error {
		_ = client.Conn.SetReadDeadline(time.Now().Add(h.heartbeat()))
		h.Hub.Registry.Touch(connID)
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connID", connID).Msg("ws: read error")
			}
			return
		}
		h.Hub.Registry.Touch(connID)

		var ev InboundEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Warn().Err(err).Str("connID", connID).Msg("ws: dropping unparsable frame")
			continue
		}
		h.handleEvent(ctx, client, connID, userID, &ev)
	}
}

func (h *WSHandler) handleEvent(ctx context.Context, client *Client, connID, userID string, ev *InboundEvent) {
	switch ev.Type {
	case InJoinRooms:
		for _, groupID := range ev.Groups {
			h.joinGroup(ctx, connID, userID, groupID)
		}

	case InJoinChannel:
		h.joinChannel(ctx, client, connID, userID, ev.GroupID, ev.Channel)

	case InLeaveChannel:
		h.Hub.Rooms.Leave(connID, ChannelRoom(ev.GroupID, ev.Channel))

	case InSendMessage:
		_, err := h.Messages.Send(ctx, userID, SendMessageInput{
			GroupID:     ev.GroupID,
			Channel:     ev.Channel,
			Content:     ev.Content,
			MessageType: ev.MessageType,
			ReplyTo:     ev.ReplyTo,
		})
		if err != nil {
			log.Error().Err(err).Str("connID", connID).Str("group", ev.GroupID).Msg("ws: send_message failed")
			h.Hub.Broadcaster.MessageError(connID, ev.GroupID, ev.Channel, "failed to send message")
		}

	case InTypingStart, InTypingStop:
		h.Hub.Broadcaster.TypingChanged(userID, ev.GroupID, ev.Channel, ev.Type == InTypingStart)

	case InPresenceSet:
		status, err := ParseStatus(ev.Status)
		if err != nil {
			h.sendError(client, fmt.Sprintf("unrecognized status %q", ev.Status))
			return
		}
		_ = h.Hub.Presence.SetStatus(userID, status)
		// SetStatus may keep the current status (an explicit offline with
		// open connections), so persist what is actually in effect.
		effective := h.Hub.Presence.Get(userID).Status
		if h.Statuses != nil {
			go func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := h.Statuses.SetStatus(sctx, userID, string(effective), time.Now()); err != nil {
					log.Warn().Err(err).Str("userID", userID).Msg("ws: failed to persist status")
				}
			}()
		}

	default:
		log.Warn().Str("type", ev.Type).Str("connID", connID).Msg("ws: unknown event type")
	}
}

func (h *WSHandler) joinGroup(ctx context.Context, connID, userID, groupID string) {
	ok, err := h.Membership.IsMember(ctx, groupID, userID)
	if err != nil || !ok {
		log.Warn().Err(err).Str("userID", userID).Str("group", groupID).Msg("ws: group join refused")
		return
	}
	if err := h.Hub.Rooms.Join(connID, GroupRoom(groupID)); err != nil {
		log.Warn().Err(err).Str("connID", connID).Msg("ws: join raced with disconnect")
	}
}

func (h *WSHandler) joinChannel(ctx context.Context, client *Client, connID, userID, groupID, channel string) {
	ok, err := h.Membership.IsMember(ctx, groupID, userID)
	if err != nil || !ok {
		h.sendError(client, "not a member of this group")
		return
	}
	ok, err = h.Membership.HasChannel(ctx, groupID, channel)
	if err != nil || !ok {
		h.sendError(client, "unknown channel")
		return
	}
	if err := h.Hub.Rooms.Join(connID, ChannelRoom(groupID, channel)); err != nil {
		log.Warn().Err(err).Str("connID", connID).Msg("ws: join raced with disconnect")
	}
}

func (h *WSHandler) sendError(client *Client, msg string) {
	data, err := json.Marshal(NewEvent(OutError, "", map[string]string{"message": msg}))
	if err != nil {
		return
	}
	_ = client.Send(data)
}

// StartCleanup periodically sweeps connections that stopped answering
// pings, bounding how long dead subscribers can sit in room sets.
func (h *WSHandler) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Hub.Registry.Sweep(h.heartbeat()); n > 0 {
				log.Info().Int("swept", n).Msg("ws: cleanup pass completed")
			}
		}
	}
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	if len(allowed) == 0 {
		log.Warn().Msg("ws: no allowed origins configured, accepting all")
		return func(r *http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		_, ok := allowed[u.Scheme+"://"+u.Host]
		return ok
	}
}
