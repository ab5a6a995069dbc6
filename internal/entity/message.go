package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MessageText         = "text"
	MessageImage        = "image"
	MessageFile         = "file"
	MessageVoice        = "voice"
	MessagePoll         = "poll"
	MessageAnnouncement = "announcement"
	MessageEvent        = "event"
)

// ValidMessageType reports whether t is a recognized message type.
func ValidMessageType(t string) bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageVoice, MessagePoll, MessageAnnouncement, MessageEvent:
		return true
	}
	return false
}

type Attachment struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
	Size     int64  `bson:"size" json:"size"`
	MimeType string `bson:"mime_type" json:"mime_type"`
}

// Message is the persisted chat message envelope. Messages live in mongo;
// the string ids reference postgres rows.
type Message struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	GroupID     string         `bson:"group_id" json:"group_id"`
	Channel     string         `bson:"channel" json:"channel"`
	SenderID    string         `bson:"sender_id" json:"sender_id"`
	Type        string         `bson:"type" json:"type"`
	Content     string         `bson:"content" json:"content"`
	Attachments []Attachment   `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ReplyTo     *bson.ObjectID `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	EditedAt    *time.Time     `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
}
