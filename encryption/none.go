// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package encryption

import (
	"context"

	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
)

// NoEncryption is the identity strategy: ciphertext is simply the
// cleartext bytes, wrapped in EncryptedSecretValue. It exists for test
// parity and for callers who explicitly opt out of encryption (e.g. the
// store already sits behind memory that is otherwise protected).
type NoEncryption struct{}

var _ Encryption = NoEncryption{}

func (NoEncryption) Encrypt(_ context.Context, _ types.VaultKey, cleartext *secretvalue.SecretValue) (types.EncryptedSecretValue, error) {
	raw := cleartext.AsBytes()
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return types.EncryptedSecretValue{Bytes: cp}, nil
}

func (NoEncryption) Decrypt(_ context.Context, _ types.VaultKey, ciphertext types.EncryptedSecretValue) (*secretvalue.SecretValue, error) {
	cp := make([]byte, len(ciphertext.Bytes))
	copy(cp, ciphertext.Bytes)
	return secretvalue.New(cp), nil
}
