package auth

import (
	"sync"
)

// Credential is the persisted authentication state. Empty strings mean absent.
type Credential struct {
	APIKey       string
	AccessToken  string
	RefreshToken string
	AutoRefresh  bool
}

// Store guards a single Credential shared by the Manager and the CLI. Readers
// get a copy; writers replace the whole value after it has been persisted.
type Store struct {
	mu      sync.RWMutex
	cred    Credential
	backend Backend
}

// NewStore loads the current credential from backend.
func NewStore(backend Backend) (*Store, error) {
	if backend == nil {
		backend = &MemoryBackend{}
	}
	cred, err := backend.Load()
	if err != nil {
		return nil, err
	}
	return &Store{cred: cred, backend: backend}, nil
}

// Snapshot returns a copy of the current credential.
func (s *Store) Snapshot() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Update applies mutate to a copy of the credential and persists it. The
// in-memory value is replaced only after the copy is built, so readers never
// observe a half-applied change. If persisting fails the new value is still
// kept in memory and the backend error is returned.
func (s *Store) Update(mutate func(c *Credential)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cred
	mutate(&next)
	s.cred = next
	return s.backend.Save(next)
}
