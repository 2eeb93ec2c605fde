package models

// Client-to-server websocket event types.
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventTypingStart       = "typing_start"
	EventTypingStop        = "typing_stop"
)

// Server-to-client websocket event types.
const (
	EventNewMessage        = "new_message"
	EventMessageRead       = "message_read"
	EventMessageDeleted    = "message_deleted"
	EventConversationError = "conversation_error"
	EventSendError         = "send_error"
)

// ChatEvent is the wire envelope for every websocket frame, both directions.
// LocalID carries the client's optimistic id on send_message so a later
// send_error can be matched back to the pending entry that caused it.
type ChatEvent struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	ToID           string      `json:"to_id,omitempty"`
	Content        string      `json:"content,omitempty"`
	MessageType    MessageType `json:"message_type,omitempty"`
	AttachmentURL  string      `json:"attachment_url,omitempty"`
	LocalID        string      `json:"local_id,omitempty"`
	Message        *Message    `json:"message,omitempty"`
	MessageID      int64       `json:"message_id,omitempty"`
	UserID         string      `json:"user_id,omitempty"`
	Code           string      `json:"code,omitempty"`
	Error          string      `json:"error,omitempty"`
}
