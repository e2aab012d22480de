package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v2"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

const (
	VersionV1 = "v1"

	DefaultBaseURL = "https://api.stackhawk.com"

	TokenStorageFile     = "file"
	TokenStorageKeychain = "keychain"
)

var (
	validTokenStorage = []string{TokenStorageFile, TokenStorageKeychain}
	validOutputFormat = []string{"table", "json", "yaml"}
	validLogLevels    = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
)

type HawkOpsConfig struct {
	Version  string     `yaml:"version"`
	API      APIConfig  `yaml:"api"`
	Auth     AuthConfig `yaml:"auth"`
	Settings Settings   `yaml:"settings,omitempty"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key,omitempty"`
	OrgID   string `yaml:"org_id,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

type AuthConfig struct {
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
	AutoRefresh  bool   `yaml:"auto_refresh"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	LogLevel     string `yaml:"log-level,omitempty"`
	TokenStorage string `yaml:"token-storage,omitempty"`
}

func DefaultConfig() HawkOpsConfig {
	return HawkOpsConfig{
		Version: VersionV1,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Auth: AuthConfig{
			AutoRefresh: true,
		},
		Settings: Settings{
			OutputFormat: "table",
			LogLevel:     "info",
			TokenStorage: TokenStorageFile,
		},
	}
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Load reads the config file at path, falling back to defaults when the file
// does not exist, and applies HAWK_* environment overrides.
func Load(path string) (*HawkOpsConfig, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config file without environment overrides. Use it when the
// result is going to be written back with Save.
func LoadFile(path string) (*HawkOpsConfig, error) {
	if path == "" {
		return nil, apierr.Config("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, apierr.Config("failed to read config: %v", err).Wrap(err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, apierr.Config("failed to parse config: %v", err).Wrap(err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func Save(path string, cfg *HawkOpsConfig) error {
	if cfg == nil {
		return apierr.Config("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return apierr.Config("failed to create config dir: %v", err).Wrap(err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return apierr.Config("failed to marshal config: %v", err).Wrap(err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return apierr.Config("failed to write config: %v", err).Wrap(err)
	}
	return nil
}

func (c *HawkOpsConfig) applyDefaults() {
	def := DefaultConfig()
	if c.Version == "" {
		c.Version = VersionV1
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = def.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = def.Settings.LogLevel
	}
	if c.Settings.TokenStorage == "" {
		c.Settings.TokenStorage = def.Settings.TokenStorage
	}
}

// ApplyEnv overlays HAWK_API_KEY, HAWK_BASE_URL, HAWK_ORG_ID,
// HAWK_AUTO_REFRESH and HAWK_LOG_LEVEL.
func (c *HawkOpsConfig) ApplyEnv(lookup LookupEnvFunc) error {
	if v, ok := lookup("HAWK_API_KEY"); ok && v != "" {
		c.API.APIKey = v
	}
	if v, ok := lookup("HAWK_BASE_URL"); ok && v != "" {
		c.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup("HAWK_ORG_ID"); ok && v != "" {
		c.API.OrgID = v
	}
	if v, ok := lookup("HAWK_LOG_LEVEL"); ok && v != "" {
		c.Settings.LogLevel = v
	}
	if v, ok := lookup("HAWK_AUTO_REFRESH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apierr.Config("invalid HAWK_AUTO_REFRESH: %s", v)
		}
		c.Auth.AutoRefresh = b
	}
	return nil
}

// Set updates a single dotted key, as used by `hawkops config set`.
func (c *HawkOpsConfig) Set(key, value string) error {
	switch key {
	case "api.base_url":
		c.API.BaseURL = strings.TrimRight(value, "/")
	case "api.api_key":
		c.API.APIKey = value
	case "api.org_id":
		c.API.OrgID = value
	case "api.timeout":
		c.API.Timeout = value
	case "auth.auto_refresh":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apierr.InvalidInput("invalid boolean: %s", value)
		}
		c.Auth.AutoRefresh = b
	case "settings.output-format":
		c.Settings.OutputFormat = value
	case "settings.log-level":
		c.Settings.LogLevel = value
	case "settings.token-storage":
		c.Settings.TokenStorage = value
	default:
		return apierr.InvalidInput("unsupported key: %s", key)
	}
	return c.Validate()
}

func (c *HawkOpsConfig) Validate() error {
	if c.Version == "" {
		return apierr.Config("config version missing")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return apierr.Config("api.base_url must be an absolute http(s) URL: %q", c.API.BaseURL)
	}
	if c.Settings.TokenStorage != "" && !slices.Contains(validTokenStorage, c.Settings.TokenStorage) {
		return apierr.Config("unsupported token storage: %s", c.Settings.TokenStorage)
	}
	if c.Settings.OutputFormat != "" && !slices.Contains(validOutputFormat, c.Settings.OutputFormat) {
		return apierr.Config("unsupported output format: %s", c.Settings.OutputFormat)
	}
	if c.Settings.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(c.Settings.LogLevel)) {
		return apierr.Config("unsupported log level: %s", c.Settings.LogLevel)
	}
	return nil
}
