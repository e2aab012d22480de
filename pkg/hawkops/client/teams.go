package client

import (
	"context"

	v1 "github.com/hawkops/hawkops/api/v1"
	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

type TeamService struct {
	client *Client
}

func (c *Client) Teams() *TeamService {
	return &TeamService{client: c}
}

func (s *TeamService) List(ctx context.Context, orgID string) ([]v1.Team, error) {
	endpoint := "api/v1/teams"
	if orgID != "" {
		var err error
		if endpoint, err = orgTeamsEndpoint(orgID); err != nil {
			return nil, err
		}
	}
	return Get[[]v1.Team](ctx, s.client, endpoint)
}

func (s *TeamService) Get(ctx context.Context, teamID string) (*v1.Team, error) {
	id, err := escapeID("team-id", teamID)
	if err != nil {
		return nil, err
	}
	team, err := Get[v1.Team](ctx, s.client, "api/v1/teams/"+id)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Create adds a team named name to orgID and returns the team as stored by
// the platform.
func (s *TeamService) Create(ctx context.Context, orgID, name string) (*v1.Team, error) {
	endpoint, err := orgTeamsEndpoint(orgID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apierr.MissingField("name")
	}
	req := v1.CreateTeamRequest{Name: name, OrganizationID: orgID}
	team, err := Post[v1.Team](ctx, s.client, endpoint, req)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func orgTeamsEndpoint(orgID string) (string, error) {
	org, err := escapeID("org-id", orgID)
	if err != nil {
		return "", err
	}
	return "api/v1/orgs/" + org + "/teams", nil
}
