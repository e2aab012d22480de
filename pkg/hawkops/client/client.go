package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/oauth2"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

const (
	DefaultTimeout = 30 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// HeaderSource yields the Authorization header value for the next request.
// *auth.Manager satisfies it.
type HeaderSource interface {
	AuthHeader(ctx context.Context) (string, error)
}

type Client struct {
	baseURL   *url.URL
	auth      HeaderSource
	http      *http.Client
	userAgent string
	log       *zap.Logger
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "hawkops",
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == nil {
		return nil, apierr.Config("server is required")
	}
	if c.auth == nil {
		return nil, apierr.Config("no credentials configured")
	}
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		if server == "" {
			return apierr.Config("server is required")
		}
		parsed, err := url.Parse(server)
		if err != nil {
			return apierr.Config("invalid server: %v", err).Wrap(err)
		}
		c.baseURL = parsed
		return nil
	}
}

func WithAuth(source HeaderSource) Option {
	return func(c *Client) error {
		c.auth = source
		return nil
	}
}

// WithTokenSource authenticates every request with tokens from ts. Used for
// an explicitly supplied bearer token that bypasses the API key login.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) error {
		if ts == nil {
			return apierr.Config("token source is required")
		}
		c.auth = tokenSourceHeader{ts: ts}
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return apierr.InvalidInput("timeout must not be negative")
		}
		if timeout > 0 {
			c.http.Timeout = timeout
		}
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.http = hc
		}
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithTLSConfig should be applied after WithTimeout so the timeout carries
// over to the new HTTP client.
func WithTLSConfig(caFile string, insecureSkipTLSVerify bool) Option {
	return func(c *Client) error {
		hc, err := NewHTTPClient(c.http.Timeout, caFile, insecureSkipTLSVerify)
		if err != nil {
			return err
		}
		c.http = hc
		return nil
	}
}

// NewHTTPClient builds the HTTP client shared by the auth manager and the
// request pipeline. A zero timeout selects DefaultTimeout.
func NewHTTPClient(timeout time.Duration, caFile string, insecureSkipTLSVerify bool) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if caFile == "" && !insecureSkipTLSVerify {
		return hc, nil
	}
	tlsConfig, err := loadTLSConfig(caFile, insecureSkipTLSVerify)
	if err != nil {
		return nil, err
	}
	hc.Transport = &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment}
	return hc, nil
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecure} // #nosec G402 -- opt-in via flag
	if caFile == "" {
		return tlsConfig, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, apierr.Config("failed to read CA file: %v", err).Wrap(err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, apierr.Config("failed to parse CA file")
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

type tokenSourceHeader struct {
	ts oauth2.TokenSource
}

func (t tokenSourceHeader) AuthHeader(context.Context) (string, error) {
	tok, err := t.ts.Token()
	if err != nil {
		return "", apierr.Auth("failed to obtain token: %v", err).Wrap(err)
	}
	if !tok.Valid() {
		return "", apierr.Auth("token is empty or expired")
	}
	value := tok.Type() + " " + tok.AccessToken
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", apierr.Auth("token contains characters that are not valid in a header")
	}
	return value, nil
}

// Get issues a GET request and decodes a 200/201 JSON response into T.
func Get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return roundTrip[T](ctx, c, http.MethodGet, endpoint, nil)
}

// Post sends body as JSON and decodes a 200/201 response into T.
func Post[T, B any](ctx context.Context, c *Client, endpoint string, body B) (T, error) {
	return roundTrip[T](ctx, c, http.MethodPost, endpoint, body)
}

func Put[T, B any](ctx context.Context, c *Client, endpoint string, body B) (T, error) {
	return roundTrip[T](ctx, c, http.MethodPut, endpoint, body)
}

// Delete treats both 200 and 204 as success and ignores any response body.
func (c *Client) Delete(ctx context.Context, endpoint string) error {
	resp, err := c.do(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		return statusError(resp)
	}
}

func roundTrip[T any](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	var out T
	resp, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return out, err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return out, apierr.API("Failed to parse response: %v", err).Wrap(err).WithStatus(resp.StatusCode)
		}
		return out, nil
	default:
		return out, statusError(resp)
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	header, err := c.auth.AuthHeader(ctx)
	if err != nil {
		return nil, err
	}

	fullURL, err := c.resolve(endpoint)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		bytesBody, err := json.Marshal(body)
		if err != nil {
			return nil, apierr.InvalidInput("failed to marshal request: %v", err).Wrap(err)
		}
		payload = bytes.NewReader(bytesBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), payload)
	if err != nil {
		return nil, apierr.API("Request failed: %v", err).Wrap(err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", header)
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.log.With(zap.String("method", method), zap.String("url", fullURL.Redacted()), zap.String("requestID", requestID))
	log.Debug("sending request")
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return nil, apierr.API("Request failed: %v", err).Wrap(err)
	}
	log.Debug("received response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(started)))
	return resp, nil
}

// resolve appends endpoint to the base URL. The escaped forms of both are
// joined as is, so an escaped id stays a single path segment and is never
// cleaned.
func (c *Client) resolve(endpoint string) (*url.URL, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, apierr.InvalidInput("invalid endpoint %q: %v", endpoint, err).Wrap(err)
	}
	rawPath := strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.TrimLeft(parsed.EscapedPath(), "/")
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, apierr.InvalidInput("invalid endpoint %q: %v", endpoint, err).Wrap(err)
	}
	full := *c.baseURL
	full.Path, full.RawPath = decoded, rawPath
	if parsed.RawQuery != "" {
		full.RawQuery = parsed.RawQuery
	}
	return &full, nil
}

// escapeID checks id and escapes it as one path segment.
func escapeID(field, id string) (string, error) {
	switch id {
	case "":
		return "", apierr.MissingField(field)
	case ".", "..":
		return "", apierr.InvalidInput("invalid %s: %q", field, id)
	}
	return url.PathEscape(id), nil
}

// statusError maps a non-success response. 401 and 403 are reported as
// authentication failures no matter which resource was requested.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apierr.Auth("Authentication failed").WithStatus(resp.StatusCode)
	case http.StatusForbidden:
		return apierr.Auth("Access denied").WithStatus(resp.StatusCode)
	}
	return apierr.API("Request failed with status %s: %s", statusLine(resp.StatusCode), apierr.ResponseMessage(resp.Body, maxErrorBody)).WithStatus(resp.StatusCode)
}

func statusLine(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}


func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
