package types

// OfflineNotification is the payload of notify_offline queue jobs. One job
// covers one stored message and every member who had no live connection
// when it was broadcast.
type OfflineNotification struct {
	MessageID  string   `json:"message_id"`
	GroupID    string   `json:"group_id"`
	GroupName  string   `json:"group_name,omitempty"`
	Channel    string   `json:"channel"`
	SenderID   string   `json:"sender_id"`
	SenderName string   `json:"sender_name,omitempty"`
	Preview    string   `json:"preview"`
	Recipients []string `json:"recipients"`
}
