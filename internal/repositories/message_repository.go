package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"support-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

const messageColumns = `id, conversation_id, from_id, to_id, content, message_type, attachment_url, is_read, is_deleted, created_at`

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, conversationID, fromID, toID, content string, messageType models.MessageType, attachmentURL string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int64) (models.Message, error)
	ListConversationMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error)
	SoftDeleteMessage(ctx context.Context, messageID int64, senderID string) error
	ListConversations(ctx context.Context, agentID string) ([]models.ConversationSummary, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores exactly one message record with server timestamp.
func (r *MessageRepo) CreateMessage(ctx context.Context, conversationID, fromID, toID, content string, messageType models.MessageType, attachmentURL string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (conversation_id, from_id, to_id, content, message_type, attachment_url)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING `+messageColumns,
		conversationID, fromID, toID, content, messageType, attachmentURL).
		StructScan(&msg)
	return msg, err
}

// GetMessage retrieves a single message, soft-deleted included.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListConversationMessages returns undeleted messages ascending by creation
// time, ids breaking timestamp ties so every reader sees the same order.
func (r *MessageRepo) ListConversationMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
        WHERE conversation_id=$1 AND is_deleted = FALSE
        ORDER BY created_at ASC, id ASC
        LIMIT $2 OFFSET $3`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationID, limit, offset)
	return msgs, err
}

// MarkConversationRead flags every unread message addressed to the reader and
// returns how many rows changed.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
         WHERE conversation_id=$1 AND to_id=$2 AND is_read = FALSE AND is_deleted = FALSE`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDeleteMessage flags a message deleted. Only the sender may delete; the
// row is retained.
func (r *MessageRepo) SoftDeleteMessage(ctx context.Context, messageID int64, senderID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_deleted = TRUE WHERE id=$1 AND from_id=$2 AND is_deleted = FALSE`,
		messageID, senderID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListConversations returns the agent's conversations most-recent-first with
// per-conversation unread counts.
func (r *MessageRepo) ListConversations(ctx context.Context, agentID string) ([]models.ConversationSummary, error) {
	query := `SELECT m.conversation_id,
            CASE WHEN m.from_id=$1 THEN m.to_id ELSE m.from_id END AS customer_id,
            m.content AS last_content,
            m.from_id AS last_sender_id,
            m.created_at AS last_message_at,
            u.unread_count
        FROM (
            SELECT DISTINCT ON (conversation_id) conversation_id, from_id, to_id, content, created_at
            FROM messages
            WHERE (from_id=$1 OR to_id=$1) AND is_deleted = FALSE
            ORDER BY conversation_id, created_at DESC, id DESC
        ) m
        JOIN (
            SELECT conversation_id,
                COUNT(*) FILTER (WHERE to_id=$1 AND is_read = FALSE) AS unread_count
            FROM messages
            WHERE is_deleted = FALSE
            GROUP BY conversation_id
        ) u ON u.conversation_id = m.conversation_id
        ORDER BY m.created_at DESC`
	var summaries []models.ConversationSummary
	err := r.db.SelectContext(ctx, &summaries, query, agentID)
	return summaries, err
}
