package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TokenState classifies a stored access token at a point in time.
type TokenState int

const (
	TokenMissing TokenState = iota
	TokenExpired
	TokenValid
)

func (s TokenState) String() string {
	switch s {
	case TokenMissing:
		return "missing"
	case TokenExpired:
		return "expired"
	case TokenValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Claims is the subset of the bearer token payload the CLI reads.
type Claims struct {
	ExpiresAt         *int64 `json:"exp"`
	Subject           string `json:"sub,omitempty"`
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

var (
	errMalformedToken = errors.New("token must have three dot-separated segments")
	errMissingExpiry  = errors.New("token has no exp claim")
)

// DecodeClaims decodes the payload segment of token without verifying the
// signature. Missing base64 padding is tolerated.
func DecodeClaims(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errMalformedToken
	}
	seg := parts[1]
	if l := len(seg) % 4; l > 0 {
		seg += strings.Repeat("=", 4-l)
	}
	payload, err := base64.URLEncoding.DecodeString(seg)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Expiry returns the exp claim as a time.
func (c *Claims) Expiry() (time.Time, error) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, errMissingExpiry
	}
	return time.Unix(*c.ExpiresAt, 0), nil
}

// IsExpired reports whether token is expired now. Any token that cannot be
// decoded, or carries no exp claim, counts as expired.
func IsExpired(token string) bool {
	return IsExpiredAt(token, time.Now())
}

func IsExpiredAt(token string, now time.Time) bool {
	claims, err := DecodeClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return *claims.ExpiresAt <= now.Unix()
}

// Classify returns exactly one state for token.
func Classify(token string, now time.Time) TokenState {
	if token == "" {
		return TokenMissing
	}
	if IsExpiredAt(token, now) {
		return TokenExpired
	}
	return TokenValid
}

func (s TokenState) describe(expiry time.Time) string {
	if expiry.IsZero() {
		return s.String()
	}
	return fmt.Sprintf("%s (expires %s)", s, expiry.UTC().Format(time.RFC3339))
}

// Describe renders the state of token for humans.
func Describe(token string, now time.Time) string {
	state := Classify(token, now)
	var expiry time.Time
	if claims, err := DecodeClaims(token); err == nil {
		expiry, _ = claims.Expiry()
	}
	return state.describe(expiry)
}
