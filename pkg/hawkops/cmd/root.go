package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
	"github.com/hawkops/hawkops/pkg/hawkops/auth"
	"github.com/hawkops/hawkops/pkg/hawkops/client"
	"github.com/hawkops/hawkops/pkg/hawkops/config"
	"github.com/hawkops/hawkops/pkg/hawkops/output"
	"github.com/hawkops/hawkops/pkg/system"
	"github.com/hawkops/hawkops/pkg/version"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	// LogWriter receives log output. Defaults to stderr.
	LogWriter io.Writer
}

type runtimeState struct {
	configPath           string
	cfg                  *config.HawkOpsConfig
	outputFormat         string
	baseURLOverride      string
	apiKeyOverride       string
	tokenOverride        string
	tokenStorageOverride string
	logLevel             string
	logLevelSet          bool
	caFile               string
	insecureSkipTLS      bool
	writer               io.Writer
	logWriter            io.Writer
	log                  *zap.Logger

	manager    *auth.Manager
	httpClient *http.Client
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		LogWriter:    os.Stderr,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{configPath: cfg.ConfigPath, writer: cfg.OutputWriter, logWriter: cfg.LogWriter}

	root := &cobra.Command{
		Use:          "hawkops",
		Short:        "Command-line client for the StackHawk platform",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("HAWKOPS_OUTPUT")
			}
			if rt.tokenOverride == "" {
				rt.tokenOverride = os.Getenv("HAWKOPS_TOKEN")
			}
			if rt.tokenStorageOverride == "" {
				rt.tokenStorageOverride = os.Getenv("HAWKOPS_TOKEN_STORAGE")
			}
			rt.logLevelSet = cmd.Flags().Changed("log-level")
			if env := os.Getenv("HAWKOPS_LOG_LEVEL"); env != "" && !rt.logLevelSet {
				rt.logLevel = env
				rt.logLevelSet = true
			}

			// Skip config loading for commands that don't need it
			if isConfigFileCommand(cmd) || cmd.Name() == "version" || cmd.Name() == "completion" {
				return rt.initLogger("")
			}

			loaded, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			if rt.baseURLOverride != "" {
				loaded.API.BaseURL = strings.TrimRight(rt.baseURLOverride, "/")
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			rt.cfg = loaded
			return rt.initLogger(loaded.Settings.LogLevel)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	flags.StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml, go-template=<template>")
	flags.StringVar(&rt.baseURLOverride, "base-url", "", "API base URL override")
	flags.StringVar(&rt.apiKeyOverride, "api-key", "", "API key override (not persisted)")
	flags.StringVar(&rt.tokenOverride, "token", "", "Bearer token override (skips API key login)")
	flags.StringVar(&rt.tokenStorageOverride, "token-storage", "", "Token storage backend: file or keychain")
	flags.StringVarP(&rt.logLevel, "log-level", "l", system.DefaultLogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&rt.caFile, "ca-file", "", "CA bundle used to verify the API server")
	flags.BoolVar(&rt.insecureSkipTLS, "insecure-skip-tls-verify", false, "Skip TLS verification")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewConfigCommand(),
		NewAuthCommand(),
		NewAppsCommand(),
		NewScanCommand(),
		NewTeamCommand(),
		NewUserCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

// isConfigFileCommand reports whether cmd edits the config file directly. Those
// commands must work even when the current file does not validate.
func isConfigFileCommand(cmd *cobra.Command) bool {
	if cmd.Parent() == nil || cmd.Parent().Name() != "config" {
		return false
	}
	switch cmd.Name() {
	case "init", "view", "set":
		return true
	}
	return false
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// initLogger builds the logger. An explicit --log-level or HAWKOPS_LOG_LEVEL
// wins over the config file.
func (rt *runtimeState) initLogger(configured string) error {
	level := rt.logLevel
	if !rt.logLevelSet && configured != "" {
		level = configured
	}
	logger, err := system.NewLogger(level, rt.logWriter)
	if err != nil {
		return err
	}
	rt.log = logger
	return nil
}

func (rt *runtimeState) logger() *zap.Logger {
	if rt.log == nil {
		return zap.NewNop()
	}
	return rt.log
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) Printer() (output.Printer, error) {
	format := rt.outputFormat
	if format == "" && rt.cfg != nil {
		format = rt.cfg.Settings.OutputFormat
	}
	return output.Parse(format)
}

func (rt *runtimeState) TokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return rt.tokenStorageOverride
	}
	if rt.cfg != nil && rt.cfg.Settings.TokenStorage != "" {
		return rt.cfg.Settings.TokenStorage
	}
	return config.TokenStorageFile
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPathValue())
	if err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}

func (rt *runtimeState) timeout() (time.Duration, error) {
	if rt.cfg == nil || rt.cfg.API.Timeout == "" {
		return client.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(rt.cfg.API.Timeout)
	if err != nil || d <= 0 {
		return 0, apierr.Config("invalid api.timeout: %q", rt.cfg.API.Timeout)
	}
	return d, nil
}

func (rt *runtimeState) HTTPClient() (*http.Client, error) {
	if rt.httpClient != nil {
		return rt.httpClient, nil
	}
	timeout, err := rt.timeout()
	if err != nil {
		return nil, err
	}
	hc, err := client.NewHTTPClient(timeout, rt.caFile, rt.insecureSkipTLS)
	if err != nil {
		return nil, err
	}
	rt.httpClient = hc
	return hc, nil
}

func (rt *runtimeState) backend() (auth.Backend, error) {
	fileBackend := &auth.ConfigBackend{Path: rt.configPathValue()}
	if rt.apiKeyOverride != "" {
		key := rt.apiKeyOverride
		fileBackend.Overlay = func(c *auth.Credential) { c.APIKey = key }
	}
	switch storage := rt.TokenStorage(); storage {
	case config.TokenStorageFile:
		return fileBackend, nil
	case config.TokenStorageKeychain:
		return &auth.KeyringBackend{Account: rt.cfg.API.BaseURL, Fallback: fileBackend}, nil
	default:
		return nil, apierr.Config("unsupported token storage: %s", storage)
	}
}

// Manager returns the auth manager for the configured credential store,
// building it on first use.
func (rt *runtimeState) Manager() (*auth.Manager, error) {
	if rt.manager != nil {
		return rt.manager, nil
	}
	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	backend, err := rt.backend()
	if err != nil {
		return nil, err
	}
	store, err := auth.NewStore(backend)
	if err != nil {
		return nil, err
	}
	hc, err := rt.HTTPClient()
	if err != nil {
		return nil, err
	}
	mgr, err := auth.NewManager(store, rt.cfg.API.BaseURL,
		auth.WithHTTPClient(hc),
		auth.WithLogger(rt.logger().Named("auth")),
		auth.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return nil, err
	}
	rt.manager = mgr
	return mgr, nil
}

func buildClient(rt *runtimeState) (*client.Client, error) {
	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	hc, err := rt.HTTPClient()
	if err != nil {
		return nil, err
	}
	options := []client.Option{
		client.WithServer(rt.cfg.API.BaseURL),
		client.WithHTTPClient(hc),
		client.WithUserAgent(version.UserAgent()),
		client.WithLogger(rt.logger().Named("client")),
	}
	if rt.tokenOverride != "" {
		options = append(options, client.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: rt.tokenOverride})))
	} else {
		mgr, err := rt.Manager()
		if err != nil {
			return nil, err
		}
		options = append(options, client.WithAuth(mgr))
	}
	return client.New(options...)
}

// orgID falls back to api.org_id from the config when the flag is empty.
func (rt *runtimeState) orgID(flag string) string {
	if flag != "" {
		return flag
	}
	if rt.cfg != nil {
		return rt.cfg.API.OrgID
	}
	return ""
}
