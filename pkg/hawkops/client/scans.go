package client

import (
	"context"
	"fmt"

	v1 "github.com/hawkops/hawkops/api/v1"
	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

const DefaultScanLimit = 10

type ScanService struct {
	client *Client
}

func (c *Client) Scans() *ScanService {
	return &ScanService{client: c}
}

func (s *ScanService) List(ctx context.Context, appID string, limit int) ([]v1.Scan, error) {
	app, err := escapeID("app-id", appID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, apierr.InvalidInput("limit must be positive, got %d", limit)
	}
	endpoint := fmt.Sprintf("api/v1/applications/%s/scans?limit=%d", app, limit)
	return Get[[]v1.Scan](ctx, s.client, endpoint)
}

func (s *ScanService) Get(ctx context.Context, scanID string) (*v1.Scan, error) {
	endpoint, err := scanEndpoint(scanID)
	if err != nil {
		return nil, err
	}
	scan, err := Get[v1.Scan](ctx, s.client, endpoint)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (s *ScanService) Delete(ctx context.Context, scanID string) error {
	endpoint, err := scanEndpoint(scanID)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, endpoint)
}

func scanEndpoint(scanID string) (string, error) {
	id, err := escapeID("scan-id", scanID)
	if err != nil {
		return "", err
	}
	return "api/v1/scans/" + id, nil
}
