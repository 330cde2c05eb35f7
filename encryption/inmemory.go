// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package encryption

import (
	"context"

	vaead "github.com/vaultkit/vault/aead"
	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// InMemoryAEAD encrypts every value under a single DEK generated once at
// construction and held in memory for the vault's lifetime. The DEK never
// touches disk and is never wrapped; it is eligible for garbage collection
// (and whatever finalizer the Tink keyset holds) once the strategy is
// dropped.
//
// AAD for every operation is key.CanonicalAAD(): the canonical encoding of
// the VaultKey, so that a ciphertext produced for one key can never be
// decrypted successfully under another.
type InMemoryAEAD struct {
	dek *vaead.DEK
}

var _ Encryption = (*InMemoryAEAD)(nil)

// NewInMemoryAEAD generates a fresh DEK and returns a ready-to-use
// in-memory AEAD strategy.
func NewInMemoryAEAD() (*InMemoryAEAD, error) {
	dek, err := vaead.New()
	if err != nil {
		return nil, vaulterr.Encryption(vaulterr.CodeEncryptKey, "generating in-memory DEK", err)
	}
	return &InMemoryAEAD{dek: dek}, nil
}

func (e *InMemoryAEAD) Encrypt(_ context.Context, key types.VaultKey, cleartext *secretvalue.SecretValue) (types.EncryptedSecretValue, error) {
	ct, err := e.dek.Encrypt(cleartext.AsBytes(), key.CanonicalAAD())
	if err != nil {
		return types.EncryptedSecretValue{}, vaulterr.Encryption(vaulterr.CodeEncrypt, "encrypting secret value", err)
	}
	return types.EncryptedSecretValue{Bytes: ct}, nil
}

func (e *InMemoryAEAD) Decrypt(_ context.Context, key types.VaultKey, ciphertext types.EncryptedSecretValue) (*secretvalue.SecretValue, error) {
	pt, err := e.dek.Decrypt(ciphertext.Bytes, key.CanonicalAAD())
	if err != nil {
		return nil, vaulterr.Encryption(vaulterr.CodeDecrypt, "decrypting secret value", err)
	}
	return secretvalue.New(pt), nil
}
