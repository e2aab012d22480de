package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

const (
	loginPath   = "api/v1/auth/login"
	refreshPath = "api/v1/auth/refresh"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// AuthResponse is returned by the login and refresh endpoints.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    *int64 `json:"expires_in,omitempty"`
}

// Manager produces a usable bearer token for every outbound request. It keeps
// no background state: all work happens inside GetValidToken and friends.
type Manager struct {
	store     *Store
	baseURL   *url.URL
	http      *http.Client
	log       *zap.Logger
	now       func() time.Time
	userAgent string
}

type ManagerOption func(*Manager)

func WithHTTPClient(c *http.Client) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.http = c
		}
	}
}

func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithUserAgent(ua string) ManagerOption {
	return func(m *Manager) {
		m.userAgent = ua
	}
}

func NewManager(store *Store, baseURL string, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, apierr.Config("credential store is required")
	}
	if baseURL == "" {
		return nil, apierr.Config("base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apierr.Config("invalid base URL: %v", err).Wrap(err)
	}
	m := &Manager{
		store:     store,
		baseURL:   parsed,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       zap.NewNop(),
		now:       time.Now,
		userAgent: "hawkops",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Store() *Store {
	return m.store
}

// State classifies the stored access token without touching the network.
func (m *Manager) State() TokenState {
	return Classify(m.store.Snapshot().AccessToken, m.now())
}

// GetValidToken returns the stored access token when it is still valid and
// otherwise refreshes or re-authenticates. A failed refresh falls back to a
// full login with the API key.
func (m *Manager) GetValidToken(ctx context.Context) (string, error) {
	cred := m.store.Snapshot()
	state := Classify(cred.AccessToken, m.now())
	switch state {
	case TokenValid:
		return cred.AccessToken, nil
	case TokenExpired:
		if cred.AutoRefresh && cred.RefreshToken != "" {
			token, err := m.RefreshToken(ctx)
			if err == nil {
				return token, nil
			}
			m.log.Debug("token refresh failed, falling back to login", zap.Error(err))
		}
	}
	m.log.Debug("authenticating with API key", zap.Stringer("tokenState", state))
	return m.Authenticate(ctx)
}

// Authenticate exchanges the stored API key for a new token pair.
func (m *Manager) Authenticate(ctx context.Context) (string, error) {
	cred := m.store.Snapshot()
	if cred.APIKey == "" {
		return "", apierr.Auth("missing API key")
	}
	resp, err := m.exchange(ctx, "login", loginPath, "X-ApiKey", cred.APIKey)
	if err != nil {
		return "", err
	}
	m.commit(resp, false)
	m.log.Debug("authenticated", zap.Bool("refreshToken", resp.RefreshToken != ""))
	return resp.Token, nil
}

// RefreshToken exchanges the stored refresh token for a new access token.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	cred := m.store.Snapshot()
	if cred.RefreshToken == "" {
		return "", apierr.Auth("no refresh token")
	}
	resp, err := m.exchange(ctx, "refresh", refreshPath, "Authorization", "Bearer "+cred.RefreshToken)
	if err != nil {
		return "", err
	}
	m.commit(resp, true)
	m.log.Debug("token refreshed")
	return resp.Token, nil
}

// AuthHeader returns the Authorization header value for the current token.
func (m *Manager) AuthHeader(ctx context.Context) (string, error) {
	token, err := m.GetValidToken(ctx)
	if err != nil {
		return "", err
	}
	value := "Bearer " + token
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", apierr.Auth("token contains characters that are not valid in a header")
	}
	return value, nil
}

// Logout drops the cached tokens. The API key is kept.
func (m *Manager) Logout() error {
	return m.store.Update(func(c *Credential) {
		c.AccessToken = ""
		c.RefreshToken = ""
	})
}

// SetAPIKey replaces the API key. Tokens issued for the previous key are dropped.
func (m *Manager) SetAPIKey(key string) error {
	return m.store.Update(func(c *Credential) {
		if c.APIKey != key {
			c.AccessToken = ""
			c.RefreshToken = ""
		}
		c.APIKey = key
	})
}

// commit stores a successful exchange. A persistence failure does not fail the
// call: the token is still good for the running command.
func (m *Manager) commit(resp *AuthResponse, keepRefresh bool) {
	err := m.store.Update(func(c *Credential) {
		c.AccessToken = resp.Token
		if resp.RefreshToken != "" || !keepRefresh {
			c.RefreshToken = resp.RefreshToken
		}
	})
	if err != nil {
		m.log.Warn("failed to persist credentials", zap.Error(err))
	}
}

func (m *Manager) exchange(ctx context.Context, op, endpoint, header, value string) (*AuthResponse, error) {
	target := m.baseURL.JoinPath(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, apierr.Auth("failed to build %s request: %v", op, err).Wrap(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(header, value)
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, apierr.Auth("%s request failed: %v", op, err).Wrap(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierr.Auth("%s failed with status %d: %s", op, resp.StatusCode, apierr.ResponseMessage(resp.Body, maxErrorBody)).WithStatus(resp.StatusCode)
	}
	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apierr.Auth("invalid %s response: %v", op, err).Wrap(err)
	}
	if out.Token == "" {
		return nil, apierr.Auth("%s response did not include a token", op)
	}
	return &out, nil
}
