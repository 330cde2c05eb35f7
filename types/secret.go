// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package types

import "github.com/vaultkit/vault/secretvalue"

// EncryptedSecretValue is an opaque ciphertext byte sequence, including
// any authentication tag and algorithm framing the encryption strategy
// added. It carries no cleartext and is not itself zeroizable.
type EncryptedSecretValue struct {
	Bytes []byte
}

// Secret pairs a decrypted value with its metadata, as returned by a
// SecretsSource and served to callers after decryption.
type Secret struct {
	Value    *secretvalue.SecretValue
	Metadata SecretMetadata
}

// NewSecret constructs a Secret from a value and its metadata.
func NewSecret(value *secretvalue.SecretValue, metadata SecretMetadata) Secret {
	return Secret{Value: value, Metadata: metadata}
}

// Close releases the underlying SecretValue's locked memory. Close is
// nil-safe.
func (s Secret) Close() {
	if s.Value != nil {
		s.Value.Close()
	}
}

// StoreEntry is the at-rest representation kept inside a VaultStore: an
// encrypted value plus its metadata. Its lifetime is bound to the store
// that holds it; it is evicted by compact or remove.
type StoreEntry struct {
	Data     EncryptedSecretValue
	Metadata SecretMetadata
}
