// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package vault implements Vault, the orchestrator that ties a
// SecretsSource, an encryption strategy, and a VaultStore together:
// refreshing secrets from the source into the store, and serving
// decrypted reads back out to callers.
package vault

import (
	"context"
	"log"
	"sync"

	"github.com/creachadair/msync/throttle"
	"tailscale.com/types/logger"

	"github.com/vaultkit/vault/source"
	"github.com/vaultkit/vault/store"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// Vault owns its source, store, and the set of refs it manages. Refresh
// is at-least-once and not transactional: a failed refresh leaves the
// store with whatever was inserted before the failure.
type Vault struct {
	source source.Source
	store  *store.VaultStore

	mu   sync.RWMutex
	refs []types.SecretRef

	// single collapses concurrent Refresh calls into one in-flight fetch:
	// callers that arrive while a refresh is already running share its
	// result instead of issuing a redundant call against the source.
	single throttle.Set[string, struct{}]

	// Logf receives diagnostic lines about refresh activity, in the
	// style of this stack's other background-task logging. A nil Logf
	// falls back to the standard logger.
	Logf logger.Logf
}

func (v *Vault) logf(format string, args ...any) {
	f := log.Printf
	if v.Logf != nil {
		f = v.Logf
	}
	f(format, args...)
}

// RegisterRefs replaces the vault's registration set with refs. It is
// idempotent: calling it twice with the same set leaves the same state,
// and performs no I/O.
func (v *Vault) RegisterRefs(refs []types.SecretRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refs = append([]types.SecretRef(nil), refs...)
}

// WithSecretRefs is RegisterRefs's fluent form, for chaining off Build.
func (v *Vault) WithSecretRefs(refs []types.SecretRef) *Vault {
	v.RegisterRefs(refs)
	return v
}

// AddRef adds a single ref to the registration set. If a ref with the
// same key is already registered, it is replaced.
func (v *Vault) AddRef(ref types.SecretRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.refs {
		if existing.Key == ref.Key {
			v.refs[i] = ref
			return
		}
	}
	v.refs = append(v.refs, ref)
}

// RemoveRef removes the ref registered under key, if any. It does not
// evict any value already in the store; call Refresh afterward to compact
// it out.
func (v *Vault) RemoveRef(key types.VaultKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.refs {
		if existing.Key == key {
			v.refs = append(v.refs[:i], v.refs[i+1:]...)
			return
		}
	}
}

// Refs returns a snapshot copy of the current registration set.
func (v *Vault) Refs() []types.SecretRef {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]types.SecretRef(nil), v.refs...)
}

// Refresh fetches every registered ref from the source, inserts each
// returned value into the store, then compacts the store down to exactly
// the current registration set. A source error aborts the refresh;
// whatever was inserted before the error remains in the store (refresh is
// at-least-once, not transactional).
func (v *Vault) Refresh(ctx context.Context) error {
	_, err := v.single.Call(ctx, "refresh", func(ctx context.Context) (struct{}, error) {
		refs := v.Refs()
		v.logf("vault: refreshing %d secret(s) from %s", len(refs), v.source.Name())

		secrets, err := v.source.GetSecrets(ctx, refs)
		if err != nil {
			return struct{}{}, err
		}
		for ref, secret := range secrets {
			if err := v.store.Insert(ctx, ref, secret); err != nil {
				return struct{}{}, err
			}
		}
		v.store.Compact(refs)

		v.logf("vault: store now holds %d secret(s)", v.store.Len())
		return struct{}{}, nil
	})
	return err
}

// RefreshOnly fetches only the refs for which predicate returns true,
// inserting each result into the store. It performs no compaction, so it
// is safe to use for a subset refresh (e.g. AutoRefresher's
// auto_refresh-only cycle) without evicting anything.
func (v *Vault) RefreshOnly(ctx context.Context, predicate func(types.SecretRef) bool) error {
	refs := v.Refs()
	var selected []types.SecretRef
	for _, ref := range refs {
		if predicate(ref) {
			selected = append(selected, ref)
		}
	}

	secrets, err := v.source.GetSecrets(ctx, selected)
	if err != nil {
		return err
	}
	for ref, secret := range secrets {
		if err := v.store.Insert(ctx, ref, secret); err != nil {
			return err
		}
	}
	return nil
}

// RefreshOnlyNotPresent fetches only refs that are not yet present in the
// store, inserts them, then compacts.
func (v *Vault) RefreshOnlyNotPresent(ctx context.Context) error {
	refs := v.Refs()
	_, missing := v.store.Exists(refs)
	if len(missing) == 0 {
		v.store.Compact(refs)
		return nil
	}

	secrets, err := v.source.GetSecrets(ctx, missing)
	if err != nil {
		return err
	}
	for ref, secret := range secrets {
		if err := v.store.Insert(ctx, ref, secret); err != nil {
			return err
		}
	}
	v.store.Compact(refs)
	return nil
}

// StoreLen reports how many entries the underlying store currently holds.
func (v *Vault) StoreLen() int {
	return v.store.Len()
}

// Viewer returns a read-only handle sharing this vault's store. The
// handle remains valid independent of the vault's own lifetime as long as
// the caller holds a reference to it.
func (v *Vault) Viewer() *Viewer {
	return &Viewer{store: v.store}
}

// GetSecretByRef decrypts and returns the value stored for ref.Key, if
// present.
func (v *Vault) GetSecretByRef(ctx context.Context, ref types.SecretRef) (types.Secret, bool, error) {
	return v.store.Get(ctx, ref.Key)
}

// RequireSecretByRef is GetSecretByRef, but turns "absent" into a
// DataNotFoundError instead of a boolean false.
func (v *Vault) RequireSecretByRef(ctx context.Context, ref types.SecretRef) (types.Secret, error) {
	secret, ok, err := v.store.Get(ctx, ref.Key)
	if err != nil {
		return types.Secret{}, err
	}
	if !ok {
		return types.Secret{}, vaulterr.DataNotFound(vaulterr.CodeSecretNotFound, "no value present for "+ref.Key.String())
	}
	return secret, nil
}

// GetSecret looks up an unversioned, default-namespace secret by name.
func (v *Vault) GetSecret(ctx context.Context, name types.SecretName) (types.Secret, bool, error) {
	return v.store.Get(ctx, types.NewVaultKey(name))
}

// GetSecretWithVersion looks up a specific version of a default-namespace
// secret by name.
func (v *Vault) GetSecretWithVersion(ctx context.Context, name types.SecretName, version types.SecretVersion) (types.Secret, bool, error) {
	return v.store.Get(ctx, types.NewVaultKey(name).WithVersion(version))
}
