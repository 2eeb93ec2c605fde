package models

import "time"

// MessageType enumerates the supported message payload kinds.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Valid reports whether the type is one of the supported kinds.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is the canonical, server-persisted form of a conversation message.
type Message struct {
	ID             int64       `db:"id" json:"id"`
	ConversationID string      `db:"conversation_id" json:"conversation_id"`
	FromID         string      `db:"from_id" json:"from_id"`
	ToID           string      `db:"to_id" json:"to_id"`
	Content        string      `db:"content" json:"content"`
	MessageType    MessageType `db:"message_type" json:"message_type"`
	AttachmentURL  string      `db:"attachment_url" json:"attachment_url,omitempty"`
	IsRead         bool        `db:"is_read" json:"is_read"`
	IsDeleted      bool        `db:"is_deleted" json:"is_deleted"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// ConversationSummary is the agent-facing view of one conversation.
type ConversationSummary struct {
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	CustomerID     string    `db:"customer_id" json:"customer_id"`
	LastContent    string    `db:"last_content" json:"last_content"`
	LastSenderID   string    `db:"last_sender_id" json:"last_sender_id"`
	LastMessageAt  time.Time `db:"last_message_at" json:"last_message_at"`
	UnreadCount    int       `db:"unread_count" json:"unread_count"`
}
