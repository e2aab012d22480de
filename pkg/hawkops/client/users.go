package client

import (
	"context"

	v1 "github.com/hawkops/hawkops/api/v1"
)

type UserService struct {
	client *Client
}

func (c *Client) Users() *UserService {
	return &UserService{client: c}
}

func (s *UserService) List(ctx context.Context, orgID string) ([]v1.User, error) {
	endpoint := "api/v1/users"
	if orgID != "" {
		org, err := escapeID("org-id", orgID)
		if err != nil {
			return nil, err
		}
		endpoint = "api/v1/orgs/" + org + "/users"
	}
	return Get[[]v1.User](ctx, s.client, endpoint)
}

func (s *UserService) Get(ctx context.Context, userID string) (*v1.User, error) {
	id, err := escapeID("user-id", userID)
	if err != nil {
		return nil, err
	}
	user, err := Get[v1.User](ctx, s.client, "api/v1/users/"+id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
