package grpc

import (
	"context"
	"errors"

	identitypb "support-chat-service/pb/identity"
)

// DirectoryClient wraps the identity-directory gRPC client.
type DirectoryClient struct {
	client identitypb.DirectoryClient
}

// NewDirectoryClient constructs the wrapper.
func NewDirectoryClient(client identitypb.DirectoryClient) *DirectoryClient {
	return &DirectoryClient{client: client}
}

// FindByID retrieves user details.
func (d *DirectoryClient) FindByID(ctx context.Context, userID string) (*identitypb.User, error) {
	resp, err := d.client.FindById(ctx, &identitypb.FindByIdRequest{UserId: userID})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.GetId() == "" {
		return nil, errors.New("user not found")
	}
	return resp, nil
}

// FindSupportAgent asks the directory for an available agent with the role.
// A nil user with nil error means no agent with that role is reachable.
func (d *DirectoryClient) FindSupportAgent(ctx context.Context, role string) (*identitypb.User, error) {
	resp, err := d.client.FindSupportAgent(ctx, &identitypb.FindSupportAgentRequest{Role: role})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.GetId() == "" {
		return nil, nil
	}
	return resp, nil
}

// BulkUsers fetches multiple users in one call.
func (d *DirectoryClient) BulkUsers(ctx context.Context, ids []string) ([]*identitypb.User, error) {
	if len(ids) == 0 {
		return []*identitypb.User{}, nil
	}

	resp, err := d.client.BulkUsers(ctx, &identitypb.BulkUsersRequest{Ids: ids})
	if err != nil {
		return nil, err
	}
	return resp.GetUsers(), nil
}
