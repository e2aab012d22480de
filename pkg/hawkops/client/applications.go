package client

import (
	"context"

	v1 "github.com/hawkops/hawkops/api/v1"
)

type ApplicationService struct {
	client *Client
}

func (c *Client) Applications() *ApplicationService {
	return &ApplicationService{client: c}
}

// List returns the applications visible to the caller, or only those of
// orgID when it is set.
func (s *ApplicationService) List(ctx context.Context, orgID string) ([]v1.Application, error) {
	endpoint := "api/v1/applications"
	if orgID != "" {
		org, err := escapeID("org-id", orgID)
		if err != nil {
			return nil, err
		}
		endpoint = "api/v1/orgs/" + org + "/applications"
	}
	return Get[[]v1.Application](ctx, s.client, endpoint)
}
