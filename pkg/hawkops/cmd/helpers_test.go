package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/hawkops/hawkops/pkg/hawkops/auth"
	"github.com/hawkops/hawkops/pkg/hawkops/config"
)

func configPathForTest(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"HAWK_API_KEY", "HAWK_BASE_URL", "HAWK_ORG_ID", "HAWK_LOG_LEVEL", "HAWK_AUTO_REFRESH",
		"HAWKOPS_OUTPUT", "HAWKOPS_TOKEN", "HAWKOPS_TOKEN_STORAGE", "HAWKOPS_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return filepath.Join(t.TempDir(), "config.yaml")
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, email string, d time.Duration) string {
	return signedToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": email,
		"exp":   time.Now().Add(d).Unix(),
	})
}

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Query   string
	Auth    string
	Body    string
}

// platform fakes the StackHawk API: the auth endpoints plus a route table of
// canned resource responses.
type platform struct {
	t *testing.T

	mu         sync.Mutex
	loginCalls int
	loginToken string
	loginCode  int
	requests   []recordedRequest
	routes     map[string]route
}

type route struct {
	status int
	body   any
}

func newPlatform(t *testing.T) (*platform, *httptest.Server) {
	t.Helper()
	p := &platform{
		t:          t,
		loginToken: tokenFor(t, "dev@example.com", time.Hour),
		loginCode:  http.StatusOK,
		routes:     map[string]route{},
	}
	server := httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(server.Close)
	return p, server
}

func (p *platform) handle(method, path string, status int, body any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[method+" "+path] = route{status: status, body: body}
}

func (p *platform) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.URL.Path == "/api/v1/auth/login" {
		p.loginCalls++
		if p.loginCode != http.StatusOK {
			w.WriteHeader(p.loginCode)
			return
		}
		_ = json.NewEncoder(w).Encode(auth.AuthResponse{Token: p.loginToken, RefreshToken: "refresh-1"})
		return
	}

	body, _ := io.ReadAll(r.Body)
	p.requests = append(p.requests, recordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		RawPath: r.URL.EscapedPath(),
		Query:   r.URL.RawQuery,
		Auth:    r.Header.Get("Authorization"),
		Body:    string(body),
	})
	rt, ok := p.routes[r.Method+" "+r.URL.Path]
	if !ok {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	if s, ok := rt.body.(string); ok {
		w.WriteHeader(rt.status)
		_, _ = w.Write([]byte(s))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	if rt.body != nil {
		_ = json.NewEncoder(w).Encode(rt.body)
	}
}

func (p *platform) lastRequest() recordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(p.t, p.requests)
	return p.requests[len(p.requests)-1]
}

func (p *platform) logins() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginCalls
}

// writeConfig saves a config pointing at serverURL with the given API key.
func writeConfig(t *testing.T, path, serverURL, apiKey string, mutate ...func(*config.HawkOpsConfig)) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = serverURL
	cfg.API.APIKey = apiKey
	for _, m := range mutate {
		m(&cfg)
	}
	require.NoError(t, config.Save(path, &cfg))
}

func runCommand(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := NewRootCommand(Config{ConfigPath: path, OutputWriter: buf, LogWriter: io.Discard})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func (p *platform) rejectLogin(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginCode = status
}

func (p *platform) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
