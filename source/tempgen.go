// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// TempSecretOptions configures ephemeral generation for a single key
// registered with a TempGenSource.
type TempSecretOptions struct {
	// KeyLen is the length in bytes of the raw random key. When
	// Printable is true, the encoded (hex) output has this length and
	// the raw random material is half of it.
	KeyLen int

	// RegenerateOnRefresh, if true, generates a fresh value on every
	// GetSecrets call instead of reusing the value generated at
	// construction.
	RegenerateOnRefresh bool

	// Printable, if true, hex-encodes the random bytes so the result is
	// safe to embed in text contexts. No default is applied: the zero
	// value false yields raw, non-encoded bytes.
	Printable bool
}

// TempGenSource vends ephemeral, randomly generated secret values. It is
// useful for bootstrapping local credentials (e.g. a throwaway database
// password) that no external authority needs to know.
type TempGenSource struct {
	mu        sync.Mutex
	options   map[types.VaultKey]TempSecretOptions
	generated map[types.VaultKey][]byte
	logf      logger.Logf
}

var _ Source = (*TempGenSource)(nil)

// NewTempGenSource returns a TempGenSource with no keys registered yet.
// Use AddSecretGenerator to register one.
func NewTempGenSource(logf logger.Logf) *TempGenSource {
	return &TempGenSource{
		options:   make(map[types.VaultKey]TempSecretOptions),
		generated: make(map[types.VaultKey][]byte),
		logf:      logf,
	}
}

// AddSecretGenerator registers key to be generated according to opts. If
// opts.RegenerateOnRefresh is false, the value is generated immediately so
// it is fixed for the source's lifetime.
func (s *TempGenSource) AddSecretGenerator(key types.VaultKey, opts TempSecretOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options[key] = opts
	if !opts.RegenerateOnRefresh {
		raw, err := generateRandomValue(opts)
		if err != nil {
			return err
		}
		s.generated[key] = raw
	}
	return nil
}

func generateRandomValue(opts TempSecretOptions) ([]byte, error) {
	rawLen := opts.KeyLen
	if opts.Printable {
		rawLen = opts.KeyLen / 2
	}
	raw := make([]byte, rawLen)
	if _, err := rand.Read(raw); err != nil {
		return nil, vaulterr.SecretsSource("generating random secret material", err)
	}
	if opts.Printable {
		encoded := make([]byte, hex.EncodedLen(len(raw)))
		hex.Encode(encoded, raw)
		return encoded, nil
	}
	return raw, nil
}

func (TempGenSource) Name() string { return "TempGenSource" }

func (s *TempGenSource) GetSecrets(_ context.Context, refs []types.SecretRef) (map[types.SecretRef]types.Secret, error) {
	log := logf(s.logf)
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[types.SecretRef]types.Secret, len(refs))
	for _, ref := range refs {
		opts, ok := s.options[ref.Key]
		if !ok {
			if ref.Required {
				return nil, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound,
					fmt.Sprintf("required secret %s has no registered generator", ref.Key))
			}
			log("TempGenSource: %s has no registered generator and is not required, skipping", ref.Key)
			continue
		}

		raw, ok := s.generated[ref.Key]
		if !ok {
			var err error
			raw, err = generateRandomValue(opts)
			if err != nil {
				return nil, err
			}
		}

		result[ref] = types.NewSecret(secretvalue.New(append([]byte(nil), raw...)), types.SecretMetadata{
			CachedAt: time.Now(),
			Key:      ref.Key,
		})
	}
	return result, nil
}
