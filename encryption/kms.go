// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package encryption

import (
	"context"
	"errors"

	"github.com/tink-crypto/tink-go/v2/tink"

	vaead "github.com/vaultkit/vault/aead"
	"github.com/vaultkit/vault/secretvalue"
	"github.com/vaultkit/vault/types"
	"github.com/vaultkit/vault/vaulterr"
)

// KMSEnvelope protects secret values with envelope encryption: a locally
// generated DEK does the actual AEAD work, but the DEK itself is wrapped
// under a customer key held by a remote key management service. Only the
// wrapped form is held in memory between operations; the unwrapped DEK is
// reconstructed per operation and discarded immediately after use.
//
// kek is a Tink AEAD primitive backed by a remote KMS (see NewAWSKEK):
// calling kek.Encrypt or kek.Decrypt performs a network round
// trip. KMSEnvelope never holds a store lock across that round trip — see
// the store package for how insert/get sequence around this.
type KMSEnvelope struct {
	kek     tink.AEAD
	wrapped []byte
}

var _ Encryption = (*KMSEnvelope)(nil)

// NewKMSEnvelope generates a fresh DEK and wraps it under kek. The wrap
// call is a suspension point (it calls out to the remote KMS); failures
// from it are classified the same way as per-operation unwrap failures
// (see classifyKMSError).
func NewKMSEnvelope(ctx context.Context, kek tink.AEAD) (*KMSEnvelope, error) {
	dek, err := vaead.New()
	if err != nil {
		return nil, vaulterr.Encryption(vaulterr.CodeEncryptKey, "generating DEK", err)
	}
	wrapped, err := dek.Wrap(kek)
	if err != nil {
		return nil, classifyKMSError("wrapping DEK", err)
	}
	return &KMSEnvelope{kek: kek, wrapped: wrapped}, nil
}

func (e *KMSEnvelope) Encrypt(ctx context.Context, key types.VaultKey, cleartext *secretvalue.SecretValue) (types.EncryptedSecretValue, error) {
	dek, err := e.unwrap()
	if err != nil {
		return types.EncryptedSecretValue{}, err
	}
	ct, err := dek.Encrypt(cleartext.AsBytes(), key.CanonicalAAD())
	if err != nil {
		return types.EncryptedSecretValue{}, vaulterr.Encryption(vaulterr.CodeEncrypt, "encrypting secret value", err)
	}
	return types.EncryptedSecretValue{Bytes: ct}, nil
}

func (e *KMSEnvelope) Decrypt(ctx context.Context, key types.VaultKey, ciphertext types.EncryptedSecretValue) (*secretvalue.SecretValue, error) {
	dek, err := e.unwrap()
	if err != nil {
		return nil, err
	}
	pt, err := dek.Decrypt(ciphertext.Bytes, key.CanonicalAAD())
	if err != nil {
		return nil, vaulterr.Encryption(vaulterr.CodeDecrypt, "decrypting secret value", err)
	}
	return secretvalue.New(pt), nil
}

// unwrap reconstructs the DEK from its wrapped form. Callers must not hold
// any store lock while this runs: it calls out to the remote KMS.
func (e *KMSEnvelope) unwrap() (*vaead.DEK, error) {
	dek, err := vaead.Unwrap(e.wrapped, e.kek)
	if err != nil {
		return nil, classifyKMSError("unwrapping DEK", err)
	}
	return dek, nil
}

// classifyKMSError maps a failure from a KMS-backed tink.AEAD call to a
// vaulterr kind. An error matching errKMSKeyNotFound becomes a
// DataNotFoundError; every other failure, including a malformed or empty
// KMS response and a wrapped DEK that does not decrypt under the KEK,
// becomes a NetworkError. Tink's KMS integrations report failures as plain
// errors rather than typed gRPC statuses, and no finer classification is
// made here.
func classifyKMSError(action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errKMSKeyNotFound) {
		return vaulterr.DataNotFound(vaulterr.CodeDecryptKey, action+": key not found")
	}
	return vaulterr.Network(action, err)
}

// errKMSKeyNotFound is the not-found marker classifyKMSError checks for.
// Nothing in this package returns it, so in practice every KMS failure is
// classified as a NetworkError.
var errKMSKeyNotFound = errors.New("kms key not found")
