package grpc

import (
	"context"
	"errors"

	identitypb "support-chat-service/pb/identity"
)

// Identity is the verified identity attached to a connection or request.
type Identity struct {
	UserID string
	Role   string
}

// IsSupport reports whether the identity may act as a support agent.
func (i Identity) IsSupport() bool {
	return i.Role == "staff" || i.Role == "admin"
}

// AuthClient wraps the auth-service gRPC client.
type AuthClient struct {
	client identitypb.AuthClient
}

// NewAuthClient constructs the wrapper.
func NewAuthClient(client identitypb.AuthClient) *AuthClient {
	return &AuthClient{client: client}
}

// ValidateToken verifies the token and returns the authenticated identity.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (Identity, error) {
	resp, err := a.client.ValidateToken(ctx, &identitypb.ValidateTokenRequest{Token: token})
	if err != nil {
		return Identity{}, err
	}
	if !resp.GetValid() || resp.GetUserId() == "" {
		return Identity{}, errors.New("invalid token")
	}
	return Identity{UserID: resp.GetUserId(), Role: resp.GetRole()}, nil
}
