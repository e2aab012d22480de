package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

func envMap(values map[string]string) LookupEnvFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.API.APIKey = "hawk.key"
	cfg.API.OrgID = "org-1"
	cfg.Auth.AccessToken = "access"
	cfg.Auth.RefreshToken = "refresh"
	cfg.Auth.AutoRefresh = false

	require.NoError(t, Save(path, &cfg))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestSaveIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Auth.AccessToken = "access"

	require.NoError(t, Save(path, &cfg))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Save(path, &cfg))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSaveFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	require.NoError(t, Save(path, &cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveNil(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.Error(t, err)
	assert.True(t, apierr.IsConfig(err))
}

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFileEmptyPath(t *testing.T) {
	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is required")
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, apierr.IsConfig(err))
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadFileKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  api_key: abc\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.API.APIKey)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.True(t, cfg.Auth.AutoRefresh)
	assert.Equal(t, TokenStorageFile, cfg.Settings.TokenStorage)
	assert.Equal(t, VersionV1, cfg.Version)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"HAWK_API_KEY":      "env-key",
		"HAWK_BASE_URL":     "https://hawk.example.com/",
		"HAWK_ORG_ID":       "org-env",
		"HAWK_LOG_LEVEL":    "debug",
		"HAWK_AUTO_REFRESH": "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.API.APIKey)
	assert.Equal(t, "https://hawk.example.com", cfg.API.BaseURL)
	assert.Equal(t, "org-env", cfg.API.OrgID)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.False(t, cfg.Auth.AutoRefresh)
}

func TestApplyEnvInvalidBool(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{"HAWK_AUTO_REFRESH": "sometimes"}))
	require.Error(t, err)
	assert.True(t, apierr.IsConfig(err))
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.API.APIKey = "file-key"
	require.NoError(t, Save(path, &cfg))

	t.Setenv("HAWK_API_KEY", "env-key")
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", loaded.API.APIKey)

	fileOnly, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", fileOnly.API.APIKey)
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Set("api.api_key", "k"))
	require.NoError(t, cfg.Set("api.base_url", "http://localhost:8080/"))
	require.NoError(t, cfg.Set("api.org_id", "o"))
	require.NoError(t, cfg.Set("auth.auto_refresh", "false"))
	require.NoError(t, cfg.Set("settings.output-format", "json"))
	require.NoError(t, cfg.Set("settings.token-storage", "keychain"))

	assert.Equal(t, "k", cfg.API.APIKey)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, "o", cfg.API.OrgID)
	assert.False(t, cfg.Auth.AutoRefresh)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)
	assert.Equal(t, TokenStorageKeychain, cfg.Settings.TokenStorage)
}

func TestSetRejectsUnknownKeyAndBadValues(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Set("api.nope", "x")
	require.Error(t, err)
	assert.True(t, apierr.IsInvalidInput(err))

	err = cfg.Set("auth.auto_refresh", "maybe")
	require.Error(t, err)
	assert.True(t, apierr.IsInvalidInput(err))

	err = cfg.Set("settings.token-storage", "floppy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported token storage")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *HawkOpsConfig)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*HawkOpsConfig) {}},
		{name: "missing version", mutate: func(c *HawkOpsConfig) { c.Version = "" }, wantErr: "version"},
		{name: "relative base url", mutate: func(c *HawkOpsConfig) { c.API.BaseURL = "api.example.com" }, wantErr: "base_url"},
		{name: "ftp base url", mutate: func(c *HawkOpsConfig) { c.API.BaseURL = "ftp://example.com" }, wantErr: "base_url"},
		{name: "bad output", mutate: func(c *HawkOpsConfig) { c.Settings.OutputFormat = "xml" }, wantErr: "output format"},
		{name: "bad log level", mutate: func(c *HawkOpsConfig) { c.Settings.LogLevel = "loud" }, wantErr: "log level"},
		{name: "upper-case log level", mutate: func(c *HawkOpsConfig) { c.Settings.LogLevel = "DEBUG" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("uses HAWKOPS_CONFIG env var when set", func(t *testing.T) {
		t.Setenv("HAWKOPS_CONFIG", "/custom/path/config.yaml")
		assert.Equal(t, "/custom/path/config.yaml", DefaultConfigPath())
	})

	t.Run("uses user config dir when HAWKOPS_CONFIG not set", func(t *testing.T) {
		t.Setenv("HAWKOPS_CONFIG", "")
		result := DefaultConfigPath()
		assert.True(t, strings.HasSuffix(result, filepath.Join("hawkops", "config.yaml")),
			"Expected path to end with hawkops/config.yaml, got: %s", result)
	})
}
