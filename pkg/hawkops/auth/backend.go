package auth

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
	"github.com/hawkops/hawkops/pkg/hawkops/config"
)

// Backend is the durable storage behind a Store.
type Backend interface {
	Load() (Credential, error)
	Save(Credential) error
}

// ConfigBackend keeps the credential in the api/auth sections of the YAML
// config file. Save re-reads the file without environment overrides and only
// patches the credential fields. API key and auto-refresh values that came from
// the environment or Overlay are written only when changed after Load.
type ConfigBackend struct {
	Path string
	// Overlay, when set, is applied on Load so values from flags take effect
	// without being written back.
	Overlay func(c *Credential)

	loadedKey  string
	loadedAuto bool
}

func (b *ConfigBackend) Load() (Credential, error) {
	cfg, err := config.Load(b.Path)
	if err != nil {
		return Credential{}, err
	}
	cred := Credential{
		APIKey:       cfg.API.APIKey,
		AccessToken:  cfg.Auth.AccessToken,
		RefreshToken: cfg.Auth.RefreshToken,
		AutoRefresh:  cfg.Auth.AutoRefresh,
	}
	if b.Overlay != nil {
		b.Overlay(&cred)
	}
	b.loadedKey = cred.APIKey
	b.loadedAuto = cred.AutoRefresh
	return cred, nil
}

func (b *ConfigBackend) Save(cred Credential) error {
	cfg, err := config.LoadFile(b.Path)
	if err != nil {
		return err
	}
	if cred.APIKey != b.loadedKey {
		cfg.API.APIKey = cred.APIKey
		b.loadedKey = cred.APIKey
	}
	if cred.AutoRefresh != b.loadedAuto {
		cfg.Auth.AutoRefresh = cred.AutoRefresh
		b.loadedAuto = cred.AutoRefresh
	}
	cfg.Auth.AccessToken = cred.AccessToken
	cfg.Auth.RefreshToken = cred.RefreshToken
	return config.Save(b.Path, cfg)
}

const defaultKeyringService = "hawkops"

type keyringTokens struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// KeyringBackend stores access and refresh tokens in the OS keychain and
// everything else through Fallback.
type KeyringBackend struct {
	Service  string
	Account  string
	Fallback Backend
}

func (b *KeyringBackend) service() string {
	if b.Service != "" {
		return b.Service
	}
	return defaultKeyringService
}

func (b *KeyringBackend) Load() (Credential, error) {
	var cred Credential
	if b.Fallback != nil {
		var err error
		cred, err = b.Fallback.Load()
		if err != nil {
			return Credential{}, err
		}
	}
	secret, err := keyring.Get(b.service(), b.Account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			cred.AccessToken, cred.RefreshToken = "", ""
			return cred, nil
		}
		return Credential{}, apierr.Config("failed to read keychain: %v", err).Wrap(err)
	}
	var tokens keyringTokens
	if err := json.Unmarshal([]byte(secret), &tokens); err != nil {
		return Credential{}, apierr.Config("failed to parse keychain entry: %v", err).Wrap(err)
	}
	cred.AccessToken = tokens.AccessToken
	cred.RefreshToken = tokens.RefreshToken
	return cred, nil
}

func (b *KeyringBackend) Save(cred Credential) error {
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		if err := keyring.Delete(b.service(), b.Account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return apierr.Config("failed to clear keychain: %v", err).Wrap(err)
		}
	} else {
		secret, err := json.Marshal(keyringTokens{AccessToken: cred.AccessToken, RefreshToken: cred.RefreshToken})
		if err != nil {
			return apierr.Config("failed to encode keychain entry: %v", err).Wrap(err)
		}
		if err := keyring.Set(b.service(), b.Account, string(secret)); err != nil {
			return apierr.Config("failed to write keychain: %v", err).Wrap(err)
		}
	}
	if b.Fallback == nil {
		return nil
	}
	rest := cred
	rest.AccessToken, rest.RefreshToken = "", ""
	return b.Fallback.Save(rest)
}

// MemoryBackend keeps the credential in process memory only.
type MemoryBackend struct {
	mu    sync.Mutex
	Cred  Credential
	Saves int
	Err   error
}

func (b *MemoryBackend) Load() (Credential, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Cred, nil
}

func (b *MemoryBackend) Save(cred Credential) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.Cred = cred
	b.Saves++
	return nil
}
