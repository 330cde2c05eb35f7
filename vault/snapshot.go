// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vault

import (
	"context"

	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// Snapshot is an immutable, point-in-time copy of a subset of a vault's
// secrets: only refs with AllowInSnapshots set are copied in, and only if
// they were present in the store when the snapshot was taken. A Snapshot
// holds no reference back to the Vault or its store; it is safe to retain
// and read from after the Vault that produced it has been discarded.
type Snapshot struct {
	secrets map[types.VaultKey]types.Secret
}

// Snapshot decrypts every registered ref with AllowInSnapshots set and
// copies the results into a new, immutable Snapshot. A ref that is
// registered but not currently present in the store is silently omitted,
// whether or not it is Required; Required only governs Refresh.
func (v *Vault) Snapshot(ctx context.Context) (*Snapshot, error) {
	refs := v.Refs()
	secrets := make(map[types.VaultKey]types.Secret, len(refs))
	for _, ref := range refs {
		if !ref.AllowInSnapshots {
			continue
		}
		secret, ok, err := v.store.Get(ctx, ref.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		secrets[ref.Key] = secret
	}
	return &Snapshot{secrets: secrets}, nil
}

// Get returns the value captured for key, if the snapshot holds one.
func (s *Snapshot) Get(key types.VaultKey) (types.Secret, bool) {
	secret, ok := s.secrets[key]
	return secret, ok
}

// GetByRef is Get against ref.Key.
func (s *Snapshot) GetByRef(ref types.SecretRef) (types.Secret, bool) {
	return s.Get(ref.Key)
}

// GetWithVersion returns the value captured for the given name and
// version in the default namespace.
func (s *Snapshot) GetWithVersion(name types.SecretName, version types.SecretVersion) (types.Secret, bool) {
	return s.Get(types.NewVaultKey(name).WithVersion(version))
}

// Require is Get, but turns "absent" into a DataNotFoundError.
func (s *Snapshot) Require(key types.VaultKey) (types.Secret, error) {
	secret, ok := s.secrets[key]
	if !ok {
		return types.Secret{}, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound, "no value present in snapshot for "+key.String())
	}
	return secret, nil
}

// RequireByRef is Require against ref.Key.
func (s *Snapshot) RequireByRef(ref types.SecretRef) (types.Secret, error) {
	return s.Require(ref.Key)
}

// Len reports how many secrets the snapshot holds.
func (s *Snapshot) Len() int {
	return len(s.secrets)
}
