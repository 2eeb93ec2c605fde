package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"support-chat-service/internal/models"
	identitypb "support-chat-service/pb/identity"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, fromID, toID, content string, messageType models.MessageType, attachmentURL string) (models.Message, error) {
	args := m.Called(ctx, conversationID, fromID, toID, content, messageType, attachmentURL)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversationMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) SoftDeleteMessage(ctx context.Context, messageID int64, senderID string) error {
	args := m.Called(ctx, messageID, senderID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, agentID string) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, agentID)
	var summaries []models.ConversationSummary
	if val := args.Get(0); val != nil {
		summaries = val.([]models.ConversationSummary)
	}
	return summaries, args.Error(1)
}

type SupportDirectoryMock struct {
	mock.Mock
}

func (m *SupportDirectoryMock) FindSupportAgent(ctx context.Context, role string) (*identitypb.User, error) {
	args := m.Called(ctx, role)
	var user *identitypb.User
	if val := args.Get(0); val != nil {
		user = val.(*identitypb.User)
	}
	return user, args.Error(1)
}

type SupportResolverMock struct {
	mock.Mock
}

func (m *SupportResolverMock) GetOrCreateSupportConversation(ctx context.Context, customerID string) (string, *identitypb.User, error) {
	args := m.Called(ctx, customerID)
	var user *identitypb.User
	if val := args.Get(1); val != nil {
		user = val.(*identitypb.User)
	}
	return args.String(0), user, args.Error(2)
}

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) BulkUsers(ctx context.Context, ids []string) ([]*identitypb.User, error) {
	args := m.Called(ctx, ids)
	var users []*identitypb.User
	if val := args.Get(0); val != nil {
		users = val.([]*identitypb.User)
	}
	return users, args.Error(1)
}

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Broadcast(conversationID string, event models.ChatEvent) {
	m.Called(conversationID, event)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageServiceMock) DeleteMessage(ctx context.Context, conversationID string, messageID int64, requesterID string) error {
	args := m.Called(ctx, conversationID, messageID, requesterID)
	return args.Error(0)
}
