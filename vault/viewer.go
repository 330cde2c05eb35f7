// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package vault

import (
	"context"

	"github.com/vaultkit/vault/store"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// Viewer is a read-only handle onto a VaultStore. Unlike Vault, it cannot
// register refs or refresh; it only decrypts whatever is already present.
// It outlives the Vault it was obtained from as long as the caller holds a
// reference to it, since it shares the store directly rather than copying
// it.
type Viewer struct {
	store *store.VaultStore
}

// Get decrypts and returns the value stored under key, if present.
func (v *Viewer) Get(ctx context.Context, key types.VaultKey) (types.Secret, bool, error) {
	return v.store.Get(ctx, key)
}

// Require is Get, but turns "absent" into a DataNotFoundError.
func (v *Viewer) Require(ctx context.Context, key types.VaultKey) (types.Secret, error) {
	secret, ok, err := v.store.Get(ctx, key)
	if err != nil {
		return types.Secret{}, err
	}
	if !ok {
		return types.Secret{}, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound, "no value present for "+key.String())
	}
	return secret, nil
}

// Len reports how many entries the underlying store currently holds.
func (v *Viewer) Len() int {
	return v.store.Len()
}
