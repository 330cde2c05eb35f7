// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"sync"
	"time"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// MockSource is an in-memory Source for tests: a caller-populated map of
// ref to cleartext bytes.
type MockSource struct {
	mu      sync.Mutex
	secrets map[types.VaultKey][]byte
}

var _ Source = (*MockSource)(nil)

// NewMockSource returns a MockSource seeded with the given key/value
// pairs.
func NewMockSource(seed map[types.VaultKey][]byte) *MockSource {
	secrets := make(map[types.VaultKey][]byte, len(seed))
	for k, v := range seed {
		secrets[k] = append([]byte(nil), v...)
	}
	return &MockSource{secrets: secrets}
}

// Add registers or replaces the value for key.
func (s *MockSource) Add(key types.VaultKey, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[key] = append([]byte(nil), value...)
}

// Keys returns every key currently registered.
func (s *MockSource) Keys() []types.VaultKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]types.VaultKey, 0, len(s.secrets))
	for k := range s.secrets {
		keys = append(keys, k)
	}
	return keys
}

func (*MockSource) Name() string { return "MockSource" }

func (s *MockSource) GetSecrets(_ context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[types.SecretRef]types.Secret, len(refs))
	for _, ref := range refs {
		raw, ok := s.secrets[ref.Key]
		if !ok {
			if ref.Required {
				return nil, vaulterr.DataNotFound("MOCK_SECRET_NOT_FOUND",
					"required secret "+string(ref.Key.Name)+" not found in mock source")
			}
			continue
		}
		result[ref] = types.NewSecret(secretvalue.New(append([]byte(nil), raw...)), types.SecretMetadata{
			CachedAt: time.Now(),
			Key:      ref.Key,
		})
	}
	return result, nil
}
