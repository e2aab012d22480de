package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
	"github.com/hawkops/hawkops/pkg/hawkops/auth"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage platform authentication",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
		newAuthTokenCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Exchange the API key for a new token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			mgr, err := rt.Manager()
			if err != nil {
				return err
			}
			token, err := mgr.Authenticate(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Authenticated. Token %s\n", auth.Describe(token, time.Now()))
			return nil
		},
	}
}

type authStatus struct {
	BaseURL      string `json:"baseURL" yaml:"baseURL"`
	APIKey       bool   `json:"apiKeyConfigured" yaml:"apiKeyConfigured"`
	TokenStorage string `json:"tokenStorage" yaml:"tokenStorage"`
	TokenSource  string `json:"tokenSource" yaml:"tokenSource"`
	State        string `json:"state" yaml:"state"`
	ExpiresAt    string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Identity     string `json:"identity,omitempty" yaml:"identity,omitempty"`
	RefreshToken bool   `json:"refreshToken" yaml:"refreshToken"`
	AutoRefresh  bool   `json:"autoRefresh" yaml:"autoRefresh"`
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the stored credentials",
		Long:  "Reports whether an API key is configured and whether the cached token is valid. No request is sent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			printer, err := rt.Printer()
			if err != nil {
				return err
			}
			mgr, err := rt.Manager()
			if err != nil {
				return err
			}
			cred := mgr.Store().Snapshot()
			status := authStatus{
				BaseURL:      rt.cfg.API.BaseURL,
				APIKey:       cred.APIKey != "",
				TokenStorage: rt.TokenStorage(),
				TokenSource:  "store",
				RefreshToken: cred.RefreshToken != "",
				AutoRefresh:  cred.AutoRefresh,
			}
			token := cred.AccessToken
			if rt.tokenOverride != "" {
				token = rt.tokenOverride
				status.TokenSource = "override"
			}
			now := time.Now()
			status.State = auth.Classify(token, now).String()
			if claims, err := auth.DecodeClaims(token); err == nil {
				if exp, err := claims.Expiry(); err == nil {
					status.ExpiresAt = exp.UTC().Format(time.RFC3339)
				}
			}
			status.Identity = identityFromToken(token)

			return printer.Write(rt.Writer(), status, func(w io.Writer) {
				writeAuthStatus(w, status)
			})
		},
	}
}

func writeAuthStatus(w io.Writer, s authStatus) {
	apiKey := "not configured"
	if s.APIKey {
		apiKey = "configured"
	}
	_, _ = fmt.Fprintf(w, "Server:        %s\n", s.BaseURL)
	_, _ = fmt.Fprintf(w, "API key:       %s\n", apiKey)
	_, _ = fmt.Fprintf(w, "Token storage: %s\n", s.TokenStorage)
	state := s.State
	if s.ExpiresAt != "" {
		state = fmt.Sprintf("%s (expires %s)", s.State, s.ExpiresAt)
	}
	_, _ = fmt.Fprintf(w, "Token:         %s\n", state)
	if s.Identity != "" {
		_, _ = fmt.Fprintf(w, "Identity:      %s\n", s.Identity)
	}
	if s.TokenSource == "override" {
		_, _ = fmt.Fprintln(w, "Using the token supplied with --token")
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove cached tokens",
		Long:  "Removes the cached access and refresh tokens. The API key is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			mgr, err := rt.Manager()
			if err != nil {
				return err
			}
			if err := mgr.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	var showClaims bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token",
		Long:  "Prints a valid access token, refreshing or logging in first when the cached one has expired.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			token := rt.tokenOverride
			if token == "" {
				mgr, err := rt.Manager()
				if err != nil {
					return err
				}
				token, err = mgr.GetValidToken(cmd.Context())
				if err != nil {
					return err
				}
			}
			if !showClaims {
				_, _ = fmt.Fprintln(rt.Writer(), token)
				return nil
			}
			claims, err := parseClaims(token)
			if err != nil {
				return err
			}
			printer, err := rt.Printer()
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), claims, nil)
		},
	}
	cmd.Flags().BoolVar(&showClaims, "claims", false, "Print the decoded token claims instead of the token")
	return cmd
}

// parseClaims decodes token claims without verifying the signature. The CLI
// never holds the platform signing key.
func parseClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, apierr.InvalidInput("token is not a JWT: %v", err).Wrap(err)
	}
	return claims, nil
}

func identityFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims, err := parseClaims(token)
	if err != nil {
		return ""
	}
	for _, key := range []string{"email", "preferred_username", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
