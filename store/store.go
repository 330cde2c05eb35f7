// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package store implements VaultStore, the encrypted, concurrency-safe
// associative container a Vault keeps its secrets in: VaultKey maps to a
// StoreEntry holding ciphertext and metadata. Encryption happens on
// insert, decryption on get; the encryption strategy is pluggable (see
// package encryption).
package store

import (
	"context"
	"sync"
	"time"

	"github.com/vaultkit/vault/acl"
	"github.com/vaultkit/vault/audit"
	"github.com/vaultkit/vault/encryption"
	"github.com/vaultkit/vault/types"
)

// VaultStore is a concurrency-safe map from VaultKey to StoreEntry, with
// concurrent-read / exclusive-write semantics. A single RWMutex guards the
// map. The encryption strategy is always called outside that lock (before
// it is taken on Insert, after it is released on Get), so a strategy that
// calls out to a remote service, such as the encryption package's
// KMSEnvelope, never runs while the lock is held.
type VaultStore struct {
	mu      sync.RWMutex
	entries map[types.VaultKey]types.StoreEntry

	encrypter encryption.Encryption
	audit     *audit.Writer
}

// New returns an empty VaultStore that encrypts every inserted value
// using encrypter.
func New(encrypter encryption.Encryption) *VaultStore {
	return &VaultStore{
		entries:   make(map[types.VaultKey]types.StoreEntry),
		encrypter: encrypter,
	}
}

// WithAuditLog sets w as the destination for encrypt/decrypt failure
// records and returns s for chaining. A nil w (the default) disables
// auditing entirely.
func (s *VaultStore) WithAuditLog(w *audit.Writer) *VaultStore {
	s.audit = w
	return s
}

func (s *VaultStore) recordFailure(op acl.Operation, key types.VaultKey, cause error) {
	if s.audit == nil {
		return
	}
	// Best-effort: a failure to write the audit record must never mask
	// the original encryption/decryption error.
	_ = s.audit.Record(op, key, cause)
}

// Insert encrypts secret under ref.Key and stores it, overwriting any
// prior entry for that key. The stored metadata's CachedAt is set to the
// time of insertion. Insert is atomic with respect to readers:
// concurrent Get calls observe either the old entry or the new one, never
// a partial state. Encryption happens before the write lock is acquired,
// so a slow (e.g. KMS-backed) encrypter does not block readers of
// unrelated keys for longer than the map mutation itself takes.
func (s *VaultStore) Insert(ctx context.Context, ref types.SecretRef, secret types.Secret) error {
	ciphertext, err := s.encrypter.Encrypt(ctx, ref.Key, secret.Value)
	if err != nil {
		s.recordFailure(acl.OperationEncrypt, ref.Key, err)
		return err
	}

	metadata := secret.Metadata
	metadata.CachedAt = time.Now()

	s.mu.Lock()
	s.entries[ref.Key] = types.StoreEntry{Data: ciphertext, Metadata: metadata}
	s.mu.Unlock()
	return nil
}

// Get looks up key and, on a hit, decrypts it and returns a fresh Secret.
// It reports (Secret{}, false, nil) on a miss. A decryption failure (wrong
// AAD, corrupted ciphertext) is reported as a non-nil error regardless of
// the boolean result.
func (s *VaultStore) Get(ctx context.Context, key types.VaultKey) (types.Secret, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return types.Secret{}, false, nil
	}

	value, err := s.encrypter.Decrypt(ctx, key, entry.Data)
	if err != nil {
		s.recordFailure(acl.OperationDecrypt, key, err)
		return types.Secret{}, true, err
	}
	return types.NewSecret(value, entry.Metadata), true, nil
}

// Remove deletes key from the store, if present. Removing an absent key
// is a no-op.
func (s *VaultStore) Remove(key types.VaultKey) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Contains reports whether every ref in refs is present in the store.
func (s *VaultStore) Contains(refs []types.SecretRef) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range refs {
		if _, ok := s.entries[ref.Key]; !ok {
			return false
		}
	}
	return true
}

// Exists partitions refs into those present and those missing from the
// store.
func (s *VaultStore) Exists(refs []types.SecretRef) (present, missing []types.SecretRef) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range refs {
		if _, ok := s.entries[ref.Key]; ok {
			present = append(present, ref)
		} else {
			missing = append(missing, ref)
		}
	}
	return present, missing
}

// Compact drops every stored entry whose key is not among refs. It is
// used after a Vault refresh to evict registrations that were removed
// since the last refresh.
func (s *VaultStore) Compact(refs []types.SecretRef) {
	keep := make(map[types.VaultKey]struct{}, len(refs))
	for _, ref := range refs {
		keep[ref.Key] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if _, ok := keep[key]; !ok {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of entries currently stored.
func (s *VaultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
