package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"support-chat-service/internal/chaterrors"
	"support-chat-service/internal/mocks"
	identitypb "support-chat-service/pb/identity"
)

func TestDeriveConversationIDOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"u1", "u2"},
		{"alice", "bob"},
		{"zed", "a"},
		{"42", "7"},
	}
	for _, pair := range pairs {
		require.Equal(t, DeriveConversationID(pair[0], pair[1]), DeriveConversationID(pair[1], pair[0]))
	}
	require.Equal(t, "u1_u2", DeriveConversationID("u1", "u2"))
	require.Equal(t, "u1_u2", DeriveConversationID("u2", "u1"))
}

func TestResolveCounterpart(t *testing.T) {
	id := DeriveConversationID("u1", "u2")

	other, err := ResolveCounterpart(id, "u1")
	require.NoError(t, err)
	require.Equal(t, "u2", other)

	other, err = ResolveCounterpart(id, "u2")
	require.NoError(t, err)
	require.Equal(t, "u1", other)

	_, err = ResolveCounterpart(id, "u3")
	require.ErrorIs(t, err, chaterrors.ErrInvalidConversation)
}

func TestResolveCounterpartMalformed(t *testing.T) {
	for _, bad := range []string{"", "solo", "a_b_c", "_b", "a_"} {
		_, err := ResolveCounterpart(bad, "a")
		assert.ErrorIs(t, err, chaterrors.ErrInvalidConversation, "id %q", bad)
	}
}

func TestIsMember(t *testing.T) {
	id := DeriveConversationID("u1", "u2")
	assert.True(t, IsMember(id, "u1"))
	assert.True(t, IsMember(id, "u2"))
	assert.False(t, IsMember(id, "u3"))
	assert.False(t, IsMember("malformed", "u1"))
}

func TestGetOrCreateSupportConversationPrefersStaff(t *testing.T) {
	directory := new(mocks.SupportDirectoryMock)
	resolver := NewResolver(directory)

	agent := &identitypb.User{Id: "agent1", Role: "staff"}
	directory.On("FindSupportAgent", mock.Anything, RoleStaff).Return(agent, nil).Once()

	conversationID, got, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.NoError(t, err)
	require.Equal(t, DeriveConversationID("cust1", "agent1"), conversationID)
	require.Equal(t, "agent1", got.GetId())
	directory.AssertExpectations(t)
}

func TestGetOrCreateSupportConversationFallsBackToAdmin(t *testing.T) {
	directory := new(mocks.SupportDirectoryMock)
	resolver := NewResolver(directory)

	admin := &identitypb.User{Id: "admin1", Role: "admin"}
	directory.On("FindSupportAgent", mock.Anything, RoleStaff).Return(nil, nil).Once()
	directory.On("FindSupportAgent", mock.Anything, RoleAdmin).Return(admin, nil).Once()

	conversationID, got, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.NoError(t, err)
	require.Equal(t, DeriveConversationID("cust1", "admin1"), conversationID)
	require.Equal(t, "admin1", got.GetId())
	directory.AssertExpectations(t)
}

func TestGetOrCreateSupportConversationNoAgent(t *testing.T) {
	directory := new(mocks.SupportDirectoryMock)
	resolver := NewResolver(directory)

	directory.On("FindSupportAgent", mock.Anything, RoleStaff).Return(nil, nil).Once()
	directory.On("FindSupportAgent", mock.Anything, RoleAdmin).Return(nil, nil).Once()

	_, _, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.ErrorIs(t, err, chaterrors.ErrNoSupportAvailable)
	directory.AssertExpectations(t)
}

func TestGetOrCreateSupportConversationDirectoryDown(t *testing.T) {
	directory := new(mocks.SupportDirectoryMock)
	resolver := NewResolver(directory)

	directory.On("FindSupportAgent", mock.Anything, RoleStaff).Return(nil, assert.AnError).Once()

	_, _, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.ErrorIs(t, err, chaterrors.ErrTransient)
	directory.AssertExpectations(t)
}

func TestGetOrCreateSupportConversationIdempotent(t *testing.T) {
	directory := new(mocks.SupportDirectoryMock)
	resolver := NewResolver(directory)

	agent := &identitypb.User{Id: "agent1", Role: "staff"}
	directory.On("FindSupportAgent", mock.Anything, RoleStaff).Return(agent, nil).Twice()

	first, _, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.NoError(t, err)
	second, _, err := resolver.GetOrCreateSupportConversation(context.Background(), "cust1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	directory.AssertExpectations(t)
}
