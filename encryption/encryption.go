// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package encryption provides the strategies a VaultStore uses to protect
// secret values at rest in memory: no encryption (test parity / explicit
// opt-out), in-memory AEAD under a locally-held DEK, and KMS envelope
// encryption where the DEK itself is wrapped by a remote key management
// service.
package encryption

import (
	"context"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
)

// Encryption is implemented by every encryption strategy a Vault can use.
// Implementations must not hold a VaultStore's lock across a suspending
// external call (see the KMS envelope implementation for the pattern).
type Encryption interface {
	// Encrypt authenticates and encrypts cleartext under key. The
	// returned ciphertext is self-contained; Decrypt needs only it and
	// the same key to recover cleartext.
	Encrypt(ctx context.Context, key types.VaultKey, cleartext *secretvalue.SecretValue) (types.EncryptedSecretValue, error)

	// Decrypt reverses Encrypt. A mismatched key, corrupted ciphertext,
	// or any authentication failure must return a *vaulterr.Error of
	// kind encryption rather than partial data.
	Decrypt(ctx context.Context, key types.VaultKey, ciphertext types.EncryptedSecretValue) (*secretvalue.SecretValue, error)
}
