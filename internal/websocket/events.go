package websocket

import "time"

// Inbound event types accepted from a client connection.
const (
	InJoinRooms    = "join_rooms"
	InJoinChannel  = "join_channel"
	InLeaveChannel = "leave_channel"
	InSendMessage  = "send_message"
	InTypingStart  = "typing_start"
	InTypingStop   = "typing_stop"
	InPresenceSet  = "presence_set"
)

// Outbound event types delivered to subscribed clients.
const (
	OutNewMessage    = "new_message"
	OutUserTyping    = "user_typing"
	OutStatusChanged = "user_status_changed"
	OutMessageError  = "message_error"
)

// InboundEvent is the envelope every client frame is decoded into. Fields
// are populated depending on Type; unknown types are logged and dropped.
type InboundEvent struct {
	Type        string   `json:"type"`
	Groups      []string `json:"groups,omitempty"`
	GroupID     string   `json:"group_id,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	Content     string   `json:"content,omitempty"`
	MessageType string   `json:"message_type,omitempty"`
	Status      string   `json:"status,omitempty"`
	ReplyTo     string   `json:"reply_to,omitempty"`
}

// Event is the outbound envelope. Data carries the payload for the event
// type: the full message envelope for new_message, user+typing flag for
// user_typing, and so on.
type Event struct {
	Type      string `json:"type"`
	Room      string `json:"room,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func NewEvent(eventType string, room string, data any) Event {
	return Event{
		Type:      eventType,
		Room:      room,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

type TypingPayload struct {
	UserID string `json:"user_id"`
	Typing bool   `json:"typing"`
}

type StatusPayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type MessageErrorPayload struct {
	GroupID string `json:"group_id"`
	Channel string `json:"channel"`
	Error   string `json:"error"`
}
