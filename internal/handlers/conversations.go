package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"support-chat-service/internal/chaterrors"
	"support-chat-service/internal/conversation"
	"support-chat-service/internal/middleware"
	"support-chat-service/internal/models"
	"support-chat-service/internal/repositories"
	identitypb "support-chat-service/pb/identity"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// UserDirectory is the directory slice the handlers need for display-name
// enrichment.
type UserDirectory interface {
	BulkUsers(ctx context.Context, ids []string) ([]*identitypb.User, error)
}

// ConversationStarter bootstraps a customer's support conversation.
type ConversationStarter interface {
	GetOrCreateSupportConversation(ctx context.Context, customerID string) (string, *identitypb.User, error)
}

// MessageService is the mutation slice of the ingestion service the REST
// surface exposes.
type MessageService interface {
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	DeleteMessage(ctx context.Context, conversationID string, messageID int64, requesterID string) error
}

// ConversationHandler manages the conversation REST endpoints.
type ConversationHandler struct {
	repo      repositories.MessageRepository
	service   MessageService
	resolver  ConversationStarter
	directory UserDirectory
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(repo repositories.MessageRepository, service MessageService, resolver ConversationStarter, directory UserDirectory) *ConversationHandler {
	return &ConversationHandler{
		repo:      repo,
		service:   service,
		resolver:  resolver,
		directory: directory,
	}
}

// StartSupportConversation assigns a support agent to the caller and returns
// the derived conversation id. Calling it twice before any staffing change
// yields the same result; nothing is written.
func (h *ConversationHandler) StartSupportConversation(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	conversationID, agent, err := h.resolver.GetOrCreateSupportConversation(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"support_agent": gin.H{
			"id":           agent.GetId(),
			"display_name": agent.GetDisplayName(),
			"avatar_url":   agent.GetAvatarUrl(),
			"role":         agent.GetRole(),
		},
	})
}

// GetConversationMessages returns a page of the conversation ascending by
// creation time, soft-deleted messages excluded.
func (h *ConversationHandler) GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString(middleware.ContextUserID)

	if err := requireMembership(conversationID, userID); err != nil {
		respondError(c, err)
		return
	}

	limit, offset, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	msgs, err := h.repo.ListConversationMessages(c.Request.Context(), conversationID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]string, 0, len(msgs))
	seen := map[string]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.FromID]; !ok {
			seen[m.FromID] = struct{}{}
			senderIDs = append(senderIDs, m.FromID)
		}
	}

	users, err := h.directory.BulkUsers(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load senders"})
		return
	}
	senderNames := map[string]string{}
	for _, u := range users {
		senderNames[u.GetId()] = u.GetDisplayName()
	}

	type messageResponse struct {
		models.Message
		SenderDisplayName string `json:"sender_display_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{Message: m, SenderDisplayName: senderNames[m.FromID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// MarkConversationRead flags every message addressed to the caller as read.
func (h *ConversationHandler) MarkConversationRead(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString(middleware.ContextUserID)

	updated, err := h.service.MarkRead(c.Request.Context(), conversationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DeleteMessage soft-deletes one of the caller's own messages.
func (h *ConversationHandler) DeleteMessage(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := c.GetString(middleware.ContextUserID)

	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), conversationID, messageID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListConversations returns the agent's conversations most-recent-first.
// Support roles only.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	role := c.GetString(middleware.ContextRole)
	if role != conversation.RoleStaff && role != conversation.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "support role required"})
		return
	}

	summaries, err := h.repo.ListConversations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	customerIDs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		customerIDs = append(customerIDs, s.CustomerID)
	}

	users, err := h.directory.BulkUsers(c.Request.Context(), customerIDs)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load customer info"})
		return
	}
	names := map[string]string{}
	for _, u := range users {
		names[u.GetId()] = u.GetDisplayName()
	}

	type conversationResponse struct {
		models.ConversationSummary
		CustomerDisplayName string `json:"customer_display_name,omitempty"`
	}

	resp := make([]conversationResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, conversationResponse{ConversationSummary: s, CustomerDisplayName: names[s.CustomerID]})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": resp})
}

func requireMembership(conversationID, userID string) error {
	parts, err := conversation.Participants(conversationID)
	if err != nil {
		return err
	}
	if parts[0] != userID && parts[1] != userID {
		return chaterrors.ErrUnauthorized
	}
	return nil
}

func parsePage(c *gin.Context) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, chaterrors.ErrValidation
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, chaterrors.ErrValidation
		}
	}
	return limit, offset, nil
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chaterrors.ErrValidation), errors.Is(err, chaterrors.ErrInvalidConversation):
		status = http.StatusBadRequest
	case errors.Is(err, chaterrors.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, chaterrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chaterrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, chaterrors.ErrNoSupportAvailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, chaterrors.ErrTransient):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"code": chaterrors.Code(err), "error": err.Error()})
}
