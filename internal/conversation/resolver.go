// Package conversation derives and validates conversation identities.
//
// A conversation has no row of its own: its id is computed from its two
// participants, sorted lexicographically and joined with a single separator,
// so that both sides always address the same thread.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"support-chat-service/internal/chaterrors"
	identitypb "support-chat-service/pb/identity"
)

// Separator joins the two participant ids. One scheme, used everywhere.
const Separator = "_"

// Support roles tried in order when assigning an agent to a customer.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// DeriveConversationID builds the canonical id for a two-party conversation.
// Order-independent: DeriveConversationID(a, b) == DeriveConversationID(b, a).
func DeriveConversationID(idA, idB string) string {
	if idA > idB {
		idA, idB = idB, idA
	}
	return idA + Separator + idB
}

// Participants splits a conversation id into its two member ids. Fails with
// ErrInvalidConversation unless the id has exactly two non-empty segments.
func Participants(conversationID string) ([2]string, error) {
	parts := strings.Split(conversationID, Separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return [2]string{}, fmt.Errorf("%w: %q", chaterrors.ErrInvalidConversation, conversationID)
	}
	return [2]string{parts[0], parts[1]}, nil
}

// ResolveCounterpart returns the other participant of the conversation.
// Fails with ErrInvalidConversation if the id is malformed or knownID is not
// a participant.
func ResolveCounterpart(conversationID, knownID string) (string, error) {
	parts, err := Participants(conversationID)
	if err != nil {
		return "", err
	}
	switch knownID {
	case parts[0]:
		return parts[1], nil
	case parts[1]:
		return parts[0], nil
	}
	return "", fmt.Errorf("%w: %q is not a participant of %q", chaterrors.ErrInvalidConversation, knownID, conversationID)
}

// IsMember reports whether userID is one of the conversation's participants.
func IsMember(conversationID, userID string) bool {
	_, err := ResolveCounterpart(conversationID, userID)
	return err == nil
}

// SupportDirectory is the directory capability the resolver depends on.
type SupportDirectory interface {
	FindSupportAgent(ctx context.Context, role string) (*identitypb.User, error)
}

// Resolver assigns support agents and computes conversation ids for
// first-contact customers. It holds no state and writes none.
type Resolver struct {
	directory SupportDirectory
}

// NewResolver constructs a Resolver.
func NewResolver(directory SupportDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// GetOrCreateSupportConversation picks an available support agent for the
// customer, preferring staff and falling back to admin, and derives the
// conversation id. Idempotent while staffing is unchanged: the same agent
// yields the same id.
func (r *Resolver) GetOrCreateSupportConversation(ctx context.Context, customerID string) (string, *identitypb.User, error) {
	if customerID == "" {
		return "", nil, fmt.Errorf("%w: empty customer id", chaterrors.ErrValidation)
	}

	for _, role := range []string{RoleStaff, RoleAdmin} {
		agent, err := r.directory.FindSupportAgent(ctx, role)
		if err != nil {
			return "", nil, fmt.Errorf("%w: directory lookup: %v", chaterrors.ErrTransient, err)
		}
		if agent != nil {
			return DeriveConversationID(customerID, agent.GetId()), agent, nil
		}
	}
	return "", nil, chaterrors.ErrNoSupportAvailable
}
