// Package chat implements message ingestion: validate, resolve the receiver,
// persist, broadcast. Both the websocket gateway and the REST handlers go
// through this one path.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"support-chat-service/internal/chaterrors"
	"support-chat-service/internal/conversation"
	"support-chat-service/internal/models"
	"support-chat-service/internal/observability"
	"support-chat-service/internal/repositories"
	identitypb "support-chat-service/pb/identity"
)

// Broadcaster fans a room event out to live connections. Implemented by
// ws.Hub; the call must not block on slow consumers.
type Broadcaster interface {
	Broadcast(conversationID string, event models.ChatEvent)
}

// SupportResolver assigns a support agent to a first-contact customer.
type SupportResolver interface {
	GetOrCreateSupportConversation(ctx context.Context, customerID string) (string, *identitypb.User, error)
}

// SendInput is one send request. SenderID comes from the authenticated
// connection, never from the client payload.
type SendInput struct {
	SenderID       string
	ConversationID string
	ToID           string
	Content        string
	MessageType    models.MessageType
	AttachmentURL  string
}

// Service orchestrates ingestion and the message mutations that follow it.
type Service struct {
	repo     repositories.MessageRepository
	resolver SupportResolver
	hub      Broadcaster
}

// NewService constructs a Service.
func NewService(repo repositories.MessageRepository, resolver SupportResolver, hub Broadcaster) *Service {
	return &Service{repo: repo, resolver: resolver, hub: hub}
}

// Send validates and persists exactly one message, then broadcasts it to the
// conversation room. The broadcast is issued strictly after the store
// acknowledges; a store failure surfaces as a transient error and is never
// retried here, so a successful call means exactly one write and one
// broadcast.
func (s *Service) Send(ctx context.Context, in SendInput) (models.Message, error) {
	if in.SenderID == "" {
		return models.Message{}, fmt.Errorf("%w: missing sender", chaterrors.ErrValidation)
	}
	if in.ConversationID == "" && in.ToID == "" {
		return models.Message{}, fmt.Errorf("%w: conversation_id or to_id required", chaterrors.ErrValidation)
	}
	if !in.MessageType.Valid() {
		return models.Message{}, fmt.Errorf("%w: unknown message type %q", chaterrors.ErrValidation, in.MessageType)
	}

	conversationID := in.ConversationID
	var receiverID string
	if conversationID != "" {
		counterpart, err := conversation.ResolveCounterpart(conversationID, in.SenderID)
		if err != nil {
			return models.Message{}, err
		}
		if in.ToID != "" && in.ToID != counterpart {
			return models.Message{}, fmt.Errorf("%w: to_id %q, conversation implies %q", chaterrors.ErrConflict, in.ToID, counterpart)
		}
		receiverID = counterpart
	} else {
		// First contact: the customer has no conversation yet, the
		// directory picks the agent and the receiver is overridden.
		derivedID, agent, err := s.resolver.GetOrCreateSupportConversation(ctx, in.SenderID)
		if err != nil {
			return models.Message{}, err
		}
		conversationID = derivedID
		receiverID = agent.GetId()
	}

	switch in.MessageType {
	case models.MessageTypeText:
		if strings.TrimSpace(in.Content) == "" {
			return models.Message{}, fmt.Errorf("%w: empty content", chaterrors.ErrValidation)
		}
	case models.MessageTypeImage, models.MessageTypeFile:
		// An upstream upload failure arrives here as an empty URL and
		// must fail before anything is persisted.
		if strings.TrimSpace(in.AttachmentURL) == "" {
			return models.Message{}, fmt.Errorf("%w: missing attachment url", chaterrors.ErrValidation)
		}
	}

	msg, err := s.repo.CreateMessage(ctx, conversationID, in.SenderID, receiverID, in.Content, in.MessageType, in.AttachmentURL)
	if err != nil {
		return models.Message{}, fmt.Errorf("%w: store message: %v", chaterrors.ErrTransient, err)
	}

	observability.IncMessageSent(string(in.MessageType))
	s.hub.Broadcast(conversationID, models.ChatEvent{
		Type:           models.EventNewMessage,
		ConversationID: conversationID,
		Message:        &msg,
	})
	return msg, nil
}

// MarkRead flags the caller's unread messages in the conversation and lets
// the room know.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	if !conversation.IsMember(conversationID, readerID) {
		return 0, fmt.Errorf("%w: %q in %q", chaterrors.ErrUnauthorized, readerID, conversationID)
	}

	updated, err := s.repo.MarkConversationRead(ctx, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("%w: mark read: %v", chaterrors.ErrTransient, err)
	}
	if updated > 0 {
		s.hub.Broadcast(conversationID, models.ChatEvent{
			Type:           models.EventMessageRead,
			ConversationID: conversationID,
			UserID:         readerID,
		})
	}
	return updated, nil
}

// DeleteMessage soft-deletes one of the caller's own messages. The record is
// retained and excluded from normal reads.
func (s *Service) DeleteMessage(ctx context.Context, conversationID string, messageID int64, requesterID string) error {
	if !conversation.IsMember(conversationID, requesterID) {
		return fmt.Errorf("%w: %q in %q", chaterrors.ErrUnauthorized, requesterID, conversationID)
	}

	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return fmt.Errorf("%w: message %d", chaterrors.ErrNotFound, messageID)
		}
		return fmt.Errorf("%w: load message: %v", chaterrors.ErrTransient, err)
	}
	if msg.ConversationID != conversationID {
		return fmt.Errorf("%w: message %d is not in %q", chaterrors.ErrValidation, messageID, conversationID)
	}
	if msg.FromID != requesterID {
		return fmt.Errorf("%w: only the sender can delete", chaterrors.ErrUnauthorized)
	}

	if err := s.repo.SoftDeleteMessage(ctx, messageID, requesterID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return fmt.Errorf("%w: message %d", chaterrors.ErrNotFound, messageID)
		}
		return fmt.Errorf("%w: delete message: %v", chaterrors.ErrTransient, err)
	}

	s.hub.Broadcast(conversationID, models.ChatEvent{
		Type:           models.EventMessageDeleted,
		ConversationID: conversationID,
		MessageID:      messageID,
	})
	return nil
}
