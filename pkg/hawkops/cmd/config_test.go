package cmd

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
	"github.com/hawkops/hawkops/pkg/hawkops/config"
)

func TestConfigShow(t *testing.T) {
	path := configPathForTest(t)
	writeConfig(t, path, "https://api.example.com", "hawk.abcdefghijkl", func(c *config.HawkOpsConfig) {
		c.API.OrgID = "org-9"
	})

	out, err := runCommand(t, path, "config")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Current configuration:",
		"API Key: ****ijkl",
		"Base URL: https://api.example.com",
		"Organization: org-9",
	}, lines(out))
}

func TestConfigShow_NoAPIKey(t *testing.T) {
	path := configPathForTest(t)

	out, err := runCommand(t, path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "API Key: Not set")
	assert.Contains(t, out, "Base URL: "+config.DefaultBaseURL)
	assert.NotContains(t, out, "Organization:")
}

func TestConfigSetAPIKey_ClearsTokens(t *testing.T) {
	path := configPathForTest(t)
	writeConfig(t, path, "https://api.example.com", "old-key", func(c *config.HawkOpsConfig) {
		c.Auth.AccessToken = "access"
		c.Auth.RefreshToken = "refresh"
	})

	out, err := runCommand(t, path, "config", "--api-key", "new-key")
	require.NoError(t, err)
	assert.Equal(t, "API key updated successfully\n", out)

	updated, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new-key", updated.API.APIKey)
	assert.Empty(t, updated.Auth.AccessToken)
	assert.Empty(t, updated.Auth.RefreshToken)
}

func TestConfigSetAPIKey_Empty(t *testing.T) {
	path := configPathForTest(t)

	_, err := runCommand(t, path, "config", "--api-key", " ")
	require.Error(t, err)
	assert.True(t, apierr.IsInvalidInput(err))
}

func TestConfigInit(t *testing.T) {
	path := configPathForTest(t)

	out, err := runCommand(t, path, "config", "init", "--api-key", "key-1", "--org-id", "org-1", "--base-url", "https://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "Initialized config at "+path+"\n", out)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key-1", cfg.API.APIKey)
	assert.Equal(t, "org-1", cfg.API.OrgID)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.True(t, cfg.Auth.AutoRefresh)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = runCommand(t, path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config already exists")

	_, err = runCommand(t, path, "config", "init", "--force", "--api-key", "key-2")
	require.NoError(t, err)
	cfg, err = config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key-2", cfg.API.APIKey)
}

func TestConfigInit_InvalidBaseURL(t *testing.T) {
	path := configPathForTest(t)

	_, err := runCommand(t, path, "config", "init", "--base-url", "api.example.com")
	require.Error(t, err)
	assert.True(t, apierr.IsConfig(err))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfigView_MasksSecrets(t *testing.T) {
	path := configPathForTest(t)
	writeConfig(t, path, "https://api.example.com", "hawk.abcdefghijkl", func(c *config.HawkOpsConfig) {
		c.Auth.AccessToken = "access-token-value"
	})

	out, err := runCommand(t, path, "config", "view")
	require.NoError(t, err)
	assert.Regexp(t, `api_key: ['"]?\*\*\*\*ijkl`, out)
	assert.Regexp(t, `access_token: ['"]?\*\*\*\*alue`, out)
	assert.NotContains(t, out, "refresh_token")
	assert.NotContains(t, out, "hawk.abcdefghijkl")

	out, err = runCommand(t, path, "config", "view", "--show-secrets")
	require.NoError(t, err)
	assert.Contains(t, out, "hawk.abcdefghijkl")

	out, err = runCommand(t, path, "config", "view", "-o", "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
}

func TestConfigSetValue(t *testing.T) {
	path := configPathForTest(t)
	writeConfig(t, path, "https://api.example.com", "key-1", func(c *config.HawkOpsConfig) {
		c.Auth.AccessToken = "access"
	})

	out, err := runCommand(t, path, "config", "set", "settings.output-format", "json")
	require.NoError(t, err)
	assert.Equal(t, "Set settings.output-format\n", out)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)
	assert.Equal(t, "access", cfg.Auth.AccessToken)

	_, err = runCommand(t, path, "config", "set", "api.api_key", "key-2")
	require.NoError(t, err)
	cfg, err = config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key-2", cfg.API.APIKey)
	assert.Empty(t, cfg.Auth.AccessToken)

	_, err = runCommand(t, path, "config", "set", "settings.page-size", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported key: settings.page-size")

	_, err = runCommand(t, path, "config", "set", "settings.token-storage", "vault")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported token storage: vault")
}

func TestConfigSetValue_RepairsInvalidConfig(t *testing.T) {
	path := configPathForTest(t)
	writeConfig(t, path, "not a url", "key")

	_, err := runCommand(t, path, "apps")
	require.Error(t, err)

	_, err = runCommand(t, path, "config", "set", "api.base_url", "https://api.example.com")
	require.NoError(t, err)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
}
